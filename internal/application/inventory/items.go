package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// checkItems valida los campos mínimos de cada línea antes de consultar el backend.
func checkItems(items []entity.SaleLineItem) error {
	for i, item := range items {
		if item.StoreID == "" {
			return fmt.Errorf("%w: línea %d sin tienda", domain.ErrInvalidInput, i)
		}
		if item.ProductID == "" && item.ProductName == "" {
			return fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: línea %d con cantidad no positiva", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// resolveRecipe consulta la receta del producto. Un fallo del backend se devuelve
// envuelto en domain.ErrRecipeLookupFailed para distinguirlo de "sin receta".
func resolveRecipe(ctx context.Context, recipes repository.RecipeRepository, item entity.SaleLineItem) (*entity.Recipe, error) {
	if item.ProductID == "" {
		return nil, nil
	}
	recipe, err := recipes.GetRecipeWithIngredients(ctx, item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRecipeLookupFailed, item.ProductID, err)
	}
	return recipe, nil
}
