package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// Validator verifica, antes del cobro, que haya existencias para todas las líneas de la venta.
// Las líneas y sus insumos se procesan en orden, una consulta a la vez.
type Validator struct {
	stock   repository.StockRepository
	recipes repository.RecipeRepository
	log     zerolog.Logger
}

// NewValidator construye el validador.
func NewValidator(stock repository.StockRepository, recipes repository.RecipeRepository, log *logger.Logger) *Validator {
	return &Validator{
		stock:   stock,
		recipes: recipes,
		log:     log.Component("inventory_validator"),
	}
}

// Validate devuelve un resultado estructurado para cualquier estado del backend.
// Solo retorna error si la entrada es inválida o el contexto fue cancelado.
func (v *Validator) Validate(ctx context.Context, items []entity.SaleLineItem) (inventory.ValidationResult, error) {
	res := inventory.ValidationResult{
		Errors:            []string{},
		Warnings:          []string{},
		InsufficientItems: []inventory.Shortfall{},
	}
	if err := checkItems(items); err != nil {
		return res, err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		recipe, err := resolveRecipe(ctx, v.recipes, item)
		if err != nil {
			// Fallo del backend: se valida como producto directo en lugar de abortar el lote.
			v.log.Warn().Err(err).Str("product", item.ProductName).Msg("receta no disponible, validando como producto directo")
			res.Warnings = append(res.Warnings, inventory.RecipeFallbackWarning(item.ProductName))
			recipe = nil
		}

		if !inventory.HasRecipe(recipe) {
			v.checkDirect(ctx, item, &res)
			continue
		}
		for _, req := range inventory.Requirements(recipe, item.Quantity) {
			v.checkIngredient(ctx, item.StoreID, req, &res)
		}
	}

	res.CanProceed = len(res.Errors) == 0
	v.log.Info().
		Bool("can_proceed", res.CanProceed).
		Int("errors", len(res.Errors)).
		Int("warnings", len(res.Warnings)).
		Int("insufficient", len(res.InsufficientItems)).
		Msg("validación de inventario completada")
	return res, nil
}

// checkDirect producto sin receta: si no hay registro de stock solo se advierte.
func (v *Validator) checkDirect(ctx context.Context, item entity.SaleLineItem, res *inventory.ValidationResult) {
	rec, err := v.stock.GetByName(ctx, item.StoreID, item.ProductName)
	if err != nil {
		res.Errors = append(res.Errors, inventory.LookupFailedMessage(item.ProductName, err))
		return
	}
	if rec == nil {
		res.Warnings = append(res.Warnings, inventory.NoTrackingWarning(item.ProductName))
		return
	}
	if rec.Quantity.LessThan(item.Quantity) {
		res.InsufficientItems = append(res.InsufficientItems, inventory.Shortfall{
			Ingredient: item.ProductName,
			Required:   item.Quantity,
			Available:  rec.Quantity,
		})
		res.Errors = append(res.Errors, inventory.InsufficientMessage(item.ProductName, item.Quantity, rec.Quantity))
	}
}

// checkIngredient insumo de receta: la falta del registro de stock bloquea la venta.
func (v *Validator) checkIngredient(ctx context.Context, storeID string, req entity.IngredientRequirement, res *inventory.ValidationResult) {
	rec, err := v.stock.GetByName(ctx, storeID, req.IngredientName)
	if err != nil {
		res.Errors = append(res.Errors, inventory.LookupFailedMessage(req.IngredientName, err))
		return
	}
	if rec == nil {
		res.Errors = append(res.Errors, inventory.MissingIngredientMessage(req.IngredientName))
		return
	}
	if rec.Quantity.LessThan(req.Quantity) {
		res.InsufficientItems = append(res.InsufficientItems, inventory.Shortfall{
			Ingredient: req.IngredientName,
			Required:   req.Quantity,
			Available:  rec.Quantity,
		})
		res.Errors = append(res.Errors, inventory.InsufficientMessage(req.IngredientName, req.Quantity, rec.Quantity))
	}
}
