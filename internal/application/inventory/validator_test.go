package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

const (
	storeX = "store-x"
	storeY = "store-y"
)

func line(productID, name, q string) entity.SaleLineItem {
	return entity.SaleLineItem{ProductID: productID, ProductName: name, Quantity: qty(q), StoreID: storeX}
}

func newValidator(stock *memStock, recipes *memRecipes) *appinventory.Validator {
	return appinventory.NewValidator(stock, recipes, logger.Nop())
}

// Escenario A: Flour 2 por unidad, 3 unidades, stock 10 → pasa.
func TestValidate_RecipeWithEnoughStock(t *testing.T) {
	stock := newMemStock()
	stock.put("s-flour", storeX, "Flour", "10")
	recipes := newMemRecipes()
	recipes.add("p-croffle", ing("Flour", "2"))

	res, err := newValidator(stock, recipes).Validate(context.Background(), []entity.SaleLineItem{
		line("p-croffle", "Croffle", "3"),
	})
	require.NoError(t, err)
	assert.True(t, res.CanProceed)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.InsufficientItems)
}

// Escenario B: stock 4 < requerido 6 → una insuficiencia exacta y bloqueo.
func TestValidate_RecipeInsufficientStock(t *testing.T) {
	stock := newMemStock()
	stock.put("s-flour", storeX, "Flour", "4")
	recipes := newMemRecipes()
	recipes.add("p-croffle", ing("Flour", "2"))

	res, err := newValidator(stock, recipes).Validate(context.Background(), []entity.SaleLineItem{
		line("p-croffle", "Croffle", "3"),
	})
	require.NoError(t, err)
	assert.False(t, res.CanProceed)
	require.Len(t, res.InsufficientItems, 1)
	assert.Equal(t, "Flour", res.InsufficientItems[0].Ingredient)
	assert.True(t, res.InsufficientItems[0].Required.Equal(qty("6")))
	assert.True(t, res.InsufficientItems[0].Available.Equal(qty("4")))
	assert.Equal(t, "insufficient Flour: need 6, have 4", res.FirstError())
}

// Escenario C: sin receta y sin registro de stock → solo advertencia.
func TestValidate_DirectProductWithoutTracking(t *testing.T) {
	res, err := newValidator(newMemStock(), newMemRecipes()).Validate(context.Background(), []entity.SaleLineItem{
		line("p-water", "Bottled Water", "1"),
	})
	require.NoError(t, err)
	assert.True(t, res.CanProceed)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"no inventory tracking for Bottled Water"}, res.Warnings)
}

func TestValidate_DirectProductInsufficient(t *testing.T) {
	stock := newMemStock()
	stock.put("s-water", storeX, "Bottled Water", "1")

	res, err := newValidator(stock, newMemRecipes()).Validate(context.Background(), []entity.SaleLineItem{
		line("p-water", "Bottled Water", "2"),
	})
	require.NoError(t, err)
	assert.False(t, res.CanProceed)
	require.Len(t, res.InsufficientItems, 1)
	assert.Equal(t, "Bottled Water", res.InsufficientItems[0].Ingredient)
}

func TestValidate_MissingIngredientRecordBlocks(t *testing.T) {
	recipes := newMemRecipes()
	recipes.add("p-latte", ing("Milk", "1"))

	res, err := newValidator(newMemStock(), recipes).Validate(context.Background(), []entity.SaleLineItem{
		line("p-latte", "Latte", "1"),
	})
	require.NoError(t, err)
	assert.False(t, res.CanProceed)
	assert.Equal(t, []string{"missing inventory for ingredient Milk"}, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate_StockIsScopedByStoreAndExactName(t *testing.T) {
	stock := newMemStock()
	stock.put("s-milk-y", storeY, "Milk", "50")
	stock.put("s-milk-x", storeX, "milk", "50")
	recipes := newMemRecipes()
	recipes.add("p-latte", ing("Milk", "1"))

	res, err := newValidator(stock, recipes).Validate(context.Background(), []entity.SaleLineItem{
		line("p-latte", "Latte", "1"),
	})
	require.NoError(t, err)
	assert.False(t, res.CanProceed)
	assert.Equal(t, "missing inventory for ingredient Milk", res.FirstError())
}

func TestValidate_RecipeLookupFailureFallsBackToDirect(t *testing.T) {
	stock := newMemStock()
	stock.put("s-cookie", storeX, "Cookie", "5")
	recipes := newMemRecipes()
	recipes.err["p-cookie"] = errBackend

	res, err := newValidator(stock, recipes).Validate(context.Background(), []entity.SaleLineItem{
		line("p-cookie", "Cookie", "2"),
	})
	require.NoError(t, err)
	assert.True(t, res.CanProceed)
	assert.Equal(t, []string{inventory.RecipeFallbackWarning("Cookie")}, res.Warnings)
}

func TestValidate_StockLookupErrorIsRowLevel(t *testing.T) {
	stock := newMemStock()
	stock.put("s-sugar", storeX, "Sugar", "1")
	stock.getErr["Milk"] = errBackend
	recipes := newMemRecipes()
	recipes.add("p-latte", ing("Milk", "1"), ing("Sugar", "2"))

	res, err := newValidator(stock, recipes).Validate(context.Background(), []entity.SaleLineItem{
		line("p-latte", "Latte", "1"),
	})
	require.NoError(t, err)
	assert.False(t, res.CanProceed)
	require.Len(t, res.Errors, 2, "el fallo de Milk no debe impedir revisar Sugar")
	assert.Contains(t, res.Errors[0], "failed to check inventory for Milk")
	assert.Equal(t, "insufficient Sugar: need 2, have 1", res.Errors[1])
}

func TestValidate_FractionalQuantities(t *testing.T) {
	stock := newMemStock()
	stock.put("s-syrup", storeX, "Syrup", "0.5")
	recipes := newMemRecipes()
	recipes.add("p-tea", ing("Syrup", "0.25"))

	ok, err := newValidator(stock, recipes).Validate(context.Background(), []entity.SaleLineItem{line("p-tea", "Tea", "2")})
	require.NoError(t, err)
	assert.True(t, ok.CanProceed)

	ko, err := newValidator(stock, recipes).Validate(context.Background(), []entity.SaleLineItem{line("p-tea", "Tea", "2.5")})
	require.NoError(t, err)
	assert.False(t, ko.CanProceed)
	assert.True(t, ko.InsufficientItems[0].Required.Equal(qty("0.625")))
}

func TestValidate_IsIdempotent(t *testing.T) {
	stock := newMemStock()
	stock.put("s-flour", storeX, "Flour", "4")
	recipes := newMemRecipes()
	recipes.add("p-croffle", ing("Flour", "2"))
	v := newValidator(stock, recipes)
	items := []entity.SaleLineItem{line("p-croffle", "Croffle", "3"), line("p-water", "Bottled Water", "1")}

	first, err := v.Validate(context.Background(), items)
	require.NoError(t, err)
	second, err := v.Validate(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, stock.updates, "validar nunca escribe")
}

func TestValidate_InvalidInput(t *testing.T) {
	v := newValidator(newMemStock(), newMemRecipes())
	cases := map[string]entity.SaleLineItem{
		"cantidad cero":     line("p", "P", "0"),
		"cantidad negativa": line("p", "P", "-1"),
		"sin tienda":        {ProductID: "p", ProductName: "P", Quantity: qty("1")},
		"sin producto":      {Quantity: qty("1"), StoreID: storeX},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), []entity.SaleLineItem{item})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestValidate_EmptyBatchCanProceed(t *testing.T) {
	res, err := newValidator(newMemStock(), newMemRecipes()).Validate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.CanProceed)
}
