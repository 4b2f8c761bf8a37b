package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo resuelve recetas desde recipes / recipe_ingredients.
type RecipeRepo struct {
	pool *pgxpool.Pool
}

// NewRecipeRepository construye el adaptador de recetas.
func NewRecipeRepository(pool *pgxpool.Pool) *RecipeRepo {
	return &RecipeRepo{pool: pool}
}

// GetRecipeWithIngredients devuelve la receta activa más reciente del producto. (nil, nil) si no tiene.
func (r *RecipeRepo) GetRecipeWithIngredients(ctx context.Context, productID string) (*entity.Recipe, error) {
	var rec entity.Recipe
	err := r.pool.QueryRow(ctx, `
		SELECT id, product_id, name
		FROM recipes
		WHERE product_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`, productID).Scan(&rec.ID, &rec.ProductID, &rec.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ingredient_name, quantity, COALESCE(unit, '')
		FROM recipe_ingredients
		WHERE recipe_id = $1
		ORDER BY position, ingredient_name`, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ing entity.RecipeIngredient
		if err := rows.Scan(&ing.IngredientName, &ing.Quantity, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		rec.Ingredients = append(rec.Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	return &rec, nil
}
