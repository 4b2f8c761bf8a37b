package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
)

// SaleItemRequest línea de venta enviada por la caja. store_id es opcional: si falta se usa la del token.
type SaleItemRequest struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	StoreID     string          `json:"store_id,omitempty"`
}

// ValidateRequest body para POST /api/inventory/validate.
type ValidateRequest struct {
	Items []SaleItemRequest `json:"items"`
}

// DeductRequest body para POST /api/inventory/deduct y POST /api/sales/checkout.
type DeductRequest struct {
	SaleID string            `json:"sale_id"`
	Items  []SaleItemRequest `json:"items"`
}

// ToLineItems convierte las líneas; defaultStore completa las que no traen tienda.
func ToLineItems(items []SaleItemRequest, defaultStore string) []entity.SaleLineItem {
	out := make([]entity.SaleLineItem, 0, len(items))
	for _, it := range items {
		store := it.StoreID
		if store == "" {
			store = defaultStore
		}
		out = append(out, entity.SaleLineItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			StoreID:     store,
		})
	}
	return out
}

type ShortfallDTO struct {
	Ingredient string          `json:"ingredient"`
	Required   decimal.Decimal `json:"required"`
	Available  decimal.Decimal `json:"available"`
}

type DeductionDTO struct {
	StockID    string          `json:"stock_id"`
	Ingredient string          `json:"ingredient"`
	Deducted   decimal.Decimal `json:"deducted"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// ValidationResponse resultado de la validación de disponibilidad.
type ValidationResponse struct {
	CanProceed        bool           `json:"can_proceed"`
	Errors            []string       `json:"errors"`
	Warnings          []string       `json:"warnings"`
	InsufficientItems []ShortfallDTO `json:"insufficient_items"`
}

// DeductionResponse resultado del descuento. applied_deductions lista las filas realmente
// modificadas aunque success sea false.
type DeductionResponse struct {
	Success            bool           `json:"success"`
	DeductedItems      []DeductionDTO `json:"deducted_items"`
	Errors             []string       `json:"errors"`
	Warnings           []string       `json:"warnings"`
	ValidationFailures []ShortfallDTO `json:"validation_failures"`
	AppliedDeductions  []DeductionDTO `json:"applied_deductions"`
}

// CheckoutResponse estado final del intento de venta.
type CheckoutResponse struct {
	SaleID     string              `json:"sale_id"`
	State      string              `json:"state"`
	Notice     string              `json:"notice,omitempty"`
	Validation *ValidationResponse `json:"validation,omitempty"`
	Deduction  *DeductionResponse  `json:"deduction,omitempty"`
}

type MovementResponse struct {
	ID               string          `json:"id"`
	StockID          string          `json:"stock_id"`
	Item             string          `json:"item"`
	ReferenceID      string          `json:"reference_id"`
	ReferenceType    string          `json:"reference_type"`
	MovementType     string          `json:"movement_type"`
	QuantityChange   decimal.Decimal `json:"quantity_change"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Notes            string          `json:"notes,omitempty"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

type RestockDTO struct {
	StockID     string          `json:"stock_id"`
	Item        string          `json:"item"`
	Restored    decimal.Decimal `json:"restored"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// ReversalResponse respuesta de POST /api/sales/:id/reversal.
type ReversalResponse struct {
	SaleID    string       `json:"sale_id"`
	Restocked []RestockDTO `json:"restocked"`
}

func shortfalls(in []inventory.Shortfall) []ShortfallDTO {
	out := make([]ShortfallDTO, 0, len(in))
	for _, s := range in {
		out = append(out, ShortfallDTO{Ingredient: s.Ingredient, Required: s.Required, Available: s.Available})
	}
	return out
}

func deductions(in []inventory.Deduction) []DeductionDTO {
	out := make([]DeductionDTO, 0, len(in))
	for _, d := range in {
		out = append(out, DeductionDTO{
			StockID:    d.StockRecordID,
			Ingredient: d.Ingredient,
			Deducted:   d.Deducted,
			Remaining:  d.Remaining,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func FromValidation(r inventory.ValidationResult) ValidationResponse {
	return ValidationResponse{
		CanProceed:        r.CanProceed,
		Errors:            nonNil(r.Errors),
		Warnings:          nonNil(r.Warnings),
		InsufficientItems: shortfalls(r.InsufficientItems),
	}
}

func FromDeduction(r inventory.DeductionResult) DeductionResponse {
	return DeductionResponse{
		Success:            r.Success,
		DeductedItems:      deductions(r.DeductedItems),
		Errors:             nonNil(r.Errors),
		Warnings:           nonNil(r.Warnings),
		ValidationFailures: shortfalls(r.ValidationFailures),
		AppliedDeductions:  deductions(r.AppliedDeductions),
	}
}

func FromMovements(movs []*entity.MovementRecord) []MovementResponse {
	out := make([]MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, MovementResponse{
			ID:               m.ID,
			StockID:          m.StockRecordID,
			Item:             m.ItemName,
			ReferenceID:      m.ReferenceID,
			ReferenceType:    m.ReferenceType,
			MovementType:     m.Type,
			QuantityChange:   m.QuantityChange,
			PreviousQuantity: m.PreviousQuantity,
			NewQuantity:      m.NewQuantity,
			Notes:            m.Note,
			CreatedBy:        m.CreatedBy,
			CreatedAt:        m.CreatedAt,
		})
	}
	return out
}
