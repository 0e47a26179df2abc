package http

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/quotation"
	"github.com/makerforge/quote3d-api/internal/application/upload"
)

// QuotationHandler maneja el ciclo de vida de cotizaciones.
type QuotationHandler struct {
	uc *quotation.QuotationUseCase
}

// NewQuotationHandler construye el handler.
func NewQuotationHandler(uc *quotation.QuotationUseCase) *QuotationHandler {
	return &QuotationHandler{uc: uc}
}

// uploadFile adapta el multipart de fiber al contrato de ingesta.
func uploadFile(fh *multipart.FileHeader) upload.File {
	return upload.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// List devuelve todas las cotizaciones (vista admin).
func (h *QuotationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKCount(out, len(out)))
}

// Get devuelve una cotización por id.
func (h *QuotationHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// MyQuotations devuelve las cotizaciones del usuario autenticado.
func (h *QuotationHandler) MyQuotations(c *fiber.Ctx) error {
	out, err := h.uc.ListByUser(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKCount(out, len(out)))
}

// ListByUser devuelve las cotizaciones de un usuario (vista admin).
func (h *QuotationHandler) ListByUser(c *fiber.Ctx) error {
	out, err := h.uc.ListByUser(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKCount(out, len(out)))
}

// Create registra una solicitud nueva con su archivo 3D (multipart).
func (h *QuotationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("se requiere el archivo del modelo 3D"))
	}
	out, err := h.uc.Request(GetUser(c), in, uploadFile(fh))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Update modifica una cotización del dueño; el archivo es opcional.
func (h *QuotationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	var file *upload.File
	if fh, err := c.FormFile("file"); err == nil {
		f := uploadFile(fh)
		file = &f
	}
	out, err := h.uc.Update(GetUser(c), c.Params("id"), in, file)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// RaiseQuote fija las horas requeridas y pasa a quoted (admin).
func (h *QuotationHandler) RaiseQuote(c *fiber.Ctx) error {
	var in dto.RaiseQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.RaiseQuote(c.Params("id"), in.RequiredHour)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// UpdateHour revisa las horas de una cotización ya cotizada (admin).
func (h *QuotationHandler) UpdateHour(c *fiber.Ctx) error {
	var in dto.RaiseQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.UpdateRequiredHour(c.Params("id"), in.RequiredHour)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Decision registra la decisión del dueño; aprobar debita el saldo.
func (h *QuotationHandler) Decision(c *fiber.Ctx) error {
	var in dto.DecisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.Decision(c.UserContext(), GetUser(c), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// DecisionPO decisión sobre una cotización fondeada por orden de compra
// (sin débito de saldo).
func (h *QuotationHandler) DecisionPO(c *fiber.Ctx) error {
	var in dto.DecisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.DecisionPO(GetUser(c), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Ongoing marca el inicio del trabajo (admin, solo desde approved).
func (h *QuotationHandler) Ongoing(c *fiber.Ctx) error {
	out, err := h.uc.MarkOngoing(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Complete sube el entregable final y cierra el proyecto (admin).
func (h *QuotationHandler) Complete(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("se requiere el archivo entregable"))
	}
	out, err := h.uc.Complete(c.Params("id"), uploadFile(fh))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// PoStatus cambia el sub-estado de la orden de compra.
func (h *QuotationHandler) PoStatus(c *fiber.Ctx) error {
	var in dto.PoStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.UpdatePoStatus(c.Params("id"), in.PoStatus)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Delete elimina la cotización y limpia sus archivos (admin).
func (h *QuotationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKMessage(nil, "cotización eliminada"))
}
