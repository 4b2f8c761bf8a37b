package entity

import "github.com/shopspring/decimal"

// Recipe receta activa de un producto vendible.
type Recipe struct {
	ID          string
	ProductID   string
	Name        string
	Ingredients []RecipeIngredient
}

// RecipeIngredient insumo de inventario consumido por unidad vendida.
type RecipeIngredient struct {
	IngredientName string
	Quantity       decimal.Decimal // por unidad
	Unit           string
}
