package entity

import "github.com/shopspring/decimal"

// SaleLineItem línea de una venta en caja. Se construye por intento de cobro; no se persiste.
type SaleLineItem struct {
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal // > 0
	StoreID     string
}

// IngredientRequirement cantidad de un insumo que consume una línea de venta.
// Quantity = cantidad en receta × cantidad vendida.
type IngredientRequirement struct {
	IngredientName string
	Unit           string
	Quantity       decimal.Decimal
}
