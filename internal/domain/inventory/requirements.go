package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// Requirements expande una receta a los insumos que consume una línea de venta.
// Cantidad requerida = cantidad en receta × cantidad vendida, sin redondeo.
func Requirements(recipe *entity.Recipe, lineQty decimal.Decimal) []entity.IngredientRequirement {
	if recipe == nil {
		return nil
	}
	reqs := make([]entity.IngredientRequirement, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		reqs = append(reqs, entity.IngredientRequirement{
			IngredientName: ing.IngredientName,
			Unit:           ing.Unit,
			Quantity:       ing.Quantity.Mul(lineQty),
		})
	}
	return reqs
}

// DirectRequirement trata el producto sin receta como su propio ítem de inventario.
func DirectRequirement(item entity.SaleLineItem) entity.IngredientRequirement {
	return entity.IngredientRequirement{
		IngredientName: item.ProductName,
		Quantity:       item.Quantity,
	}
}

// HasRecipe indica si la receta resuelta tiene insumos que rastrear.
func HasRecipe(recipe *entity.Recipe) bool {
	return recipe != nil && len(recipe.Ingredients) > 0
}
