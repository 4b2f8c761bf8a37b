package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

// InventoryHandler expone el validador y el ejecutor de descuentos (protegido).
type InventoryHandler struct {
	validator *inventory.Validator
	executor  *inventory.Executor
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(validator *inventory.Validator, executor *inventory.Executor) *InventoryHandler {
	return &InventoryHandler{validator: validator, executor: executor}
}

// Validate godoc
// @Summary      Validar disponibilidad de inventario para una venta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateRequest  true  "líneas de la venta"
// @Success      200   {object}  dto.ValidationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/inventory/validate [post]
func (h *InventoryHandler) Validate(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.ValidateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.validator.Validate(c.UserContext(), dto.ToLineItems(in.Items, GetStoreID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromValidation(res))
}

// Deduct godoc
// @Summary      Descontar inventario de una venta cobrada
// @Description  Responde 409 con el resultado si algún insumo no pudo descontarse;
//
//	applied_deductions lista lo que sí se aplicó.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeductRequest  true  "sale_id y líneas"
// @Success      200   {object}  dto.DeductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.DeductionResponse
// @Router       /api/inventory/deduct [post]
func (h *InventoryHandler) Deduct(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.DeductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.executor.Deduct(c.UserContext(), in.SaleID, dto.ToLineItems(in.Items, GetStoreID(c)))
	if err != nil {
		return writeError(c, err)
	}
	if !res.Success {
		return c.Status(fiber.StatusConflict).JSON(dto.FromDeduction(res))
	}
	return c.JSON(dto.FromDeduction(res))
}
