package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/rateconfig"
)

// RateConfigHandler maneja la administración de la tarifa por hora.
type RateConfigHandler struct {
	uc *rateconfig.RateConfigUseCase
}

// NewRateConfigHandler construye el handler.
func NewRateConfigHandler(uc *rateconfig.RateConfigUseCase) *RateConfigHandler {
	return &RateConfigHandler{uc: uc}
}

// Current devuelve la tarifa activa vigente (ruta pública).
func (h *RateConfigHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// List devuelve el historial de tarifas.
func (h *RateConfigHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("query inválido"))
	}
	page.DefaultPage()
	out, err := h.uc.List(page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKCount(out, len(out)))
}

// Get devuelve una tarifa por id.
func (h *RateConfigHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Create da de alta una tarifa activa.
func (h *RateConfigHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRateConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Update modifica una tarifa.
func (h *RateConfigHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRateConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Delete elimina una tarifa (salvo la última activa).
func (h *RateConfigHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKMessage(nil, "tarifa eliminada"))
}
