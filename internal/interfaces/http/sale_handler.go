package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
)

// SaleHandler cobro con inventario, movimientos y reverso de ventas (protegido).
type SaleHandler struct {
	facade   *inventory.Facade
	report   *inventory.ReportUseCase
	reversal *inventory.ReversalUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(facade *inventory.Facade, report *inventory.ReportUseCase, reversal *inventory.ReversalUseCase) *SaleHandler {
	return &SaleHandler{facade: facade, report: report, reversal: reversal}
}

// Checkout godoc
// @Summary      Validar y descontar inventario de una venta
// @Description  El pago lo captura la caja antes de llamar. 422 si la venta queda bloqueada,
//
//	500 si el descuento falla después del cobro (requiere intervención manual).
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeductRequest  true  "sale_id y líneas"
// @Success      200   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.CheckoutResponse
// @Failure      500   {object}  dto.CheckoutResponse
// @Router       /api/sales/checkout [post]
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.DeductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.SaleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sale_id requerido"})
	}
	attempt, err := h.facade.Checkout(c.UserContext(), in.SaleID, dto.ToLineItems(in.Items, GetStoreID(c)), nil)

	out := dto.CheckoutResponse{
		SaleID: attempt.SaleID(),
		State:  string(attempt.State()),
		Notice: attempt.Notice(),
	}
	if v := attempt.Validation(); v != nil {
		r := dto.FromValidation(*v)
		out.Validation = &r
	}
	if d := attempt.Deduction(); d != nil {
		r := dto.FromDeduction(*d)
		out.Deduction = &r
	}

	var blocked *inventory.BlockedError
	var failed *inventory.DeductionFailedError
	switch {
	case err == nil:
		return c.JSON(out)
	case errors.As(err, &blocked):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(out)
	case errors.As(err, &failed):
		return c.Status(fiber.StatusInternalServerError).JSON(out)
	default:
		return writeError(c, err)
	}
}

// Movements godoc
// @Summary      Movimientos de inventario de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la venta"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/movements [get]
func (h *SaleHandler) Movements(c *fiber.Ctx) error {
	movs, err := h.report.SaleMovements(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromMovements(movs))
}

// MovementsPDF godoc
// @Summary      Reporte PDF de movimientos de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "id de la venta"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/movements.pdf [get]
func (h *SaleHandler) MovementsPDF(c *fiber.Ctx) error {
	saleID := c.Params("id")
	pdf, err := h.report.SaleMovementsPDF(c.UserContext(), saleID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="movimientos-`+saleID+`.pdf"`)
	return c.Send(pdf)
}

// Reverse godoc
// @Summary      Revertir el descuento de inventario de una venta (admin)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la venta"
// @Success      200  {object}  dto.ReversalResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/reversal [post]
func (h *SaleHandler) Reverse(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	saleID := c.Params("id")
	restocks, err := h.reversal.Reverse(c.UserContext(), saleID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta sin salidas de inventario"})
		}
		return writeError(c, err)
	}
	out := dto.ReversalResponse{SaleID: saleID, Restocked: make([]dto.RestockDTO, 0, len(restocks))}
	for _, r := range restocks {
		out.Restocked = append(out.Restocked, dto.RestockDTO{
			StockID:     r.StockRecordID,
			Item:        r.ItemName,
			Restored:    r.Restored,
			NewQuantity: r.NewQuantity,
		})
	}
	return c.JSON(out)
}
