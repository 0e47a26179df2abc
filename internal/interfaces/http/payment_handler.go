package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/payment"
)

// PaymentHandler maneja compra de horas y órdenes de compra.
type PaymentHandler struct {
	uc *payment.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// CreateOrder abre una orden pendiente en la pasarela.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.CreateOrder(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Verify confirma el pago y acredita las horas.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.Verify(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// History lista los pagos del usuario autenticado.
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKCount(out, len(out)))
}

// PurchaseOrder registra una orden de compra con su documento (multipart).
func (h *PaymentHandler) PurchaseOrder(c *fiber.Ctx) error {
	var in dto.PurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("se requiere el documento de la orden de compra"))
	}
	out, err := h.uc.CreatePurchaseOrder(GetUserID(c), in, uploadFile(fh))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Receipt descarga el comprobante PDF de un pago.
func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	pdf, err := h.uc.Receipt(GetUserID(c), GetUserRole(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="receipt.pdf"`)
	return c.Send(pdf)
}
