package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// RecipeRepository resuelve la receta activa de un producto. (nil, nil) si el producto no tiene receta.
type RecipeRepository interface {
	GetRecipeWithIngredients(ctx context.Context, productID string) (*entity.Recipe, error)
}
