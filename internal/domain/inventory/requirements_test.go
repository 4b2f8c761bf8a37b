package inventory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRequirements_ScalesByLineQuantity(t *testing.T) {
	recipe := &entity.Recipe{Ingredients: []entity.RecipeIngredient{
		{IngredientName: "Flour", Quantity: d("0.3"), Unit: "kg"},
		{IngredientName: "Milk", Quantity: d("0.25"), Unit: "l"},
	}}
	reqs := Requirements(recipe, d("2"))

	assert.Len(t, reqs, 2)
	assert.Equal(t, "Flour", reqs[0].IngredientName)
	assert.True(t, reqs[0].Quantity.Equal(d("0.6")))
	assert.True(t, reqs[1].Quantity.Equal(d("0.5")))
	assert.Equal(t, "l", reqs[1].Unit)
}

func TestRequirements_NilRecipe(t *testing.T) {
	assert.Nil(t, Requirements(nil, d("1")))
	assert.False(t, HasRecipe(nil))
	assert.False(t, HasRecipe(&entity.Recipe{}))
}

func TestDirectRequirement(t *testing.T) {
	req := DirectRequirement(entity.SaleLineItem{ProductName: "Soda", Quantity: d("3")})
	assert.Equal(t, "Soda", req.IngredientName)
	assert.True(t, req.Quantity.Equal(d("3")))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "insufficient Flour: need 0.6, have 0.5", InsufficientMessage("Flour", d("0.6"), d("0.5")))
	assert.Equal(t, "missing inventory for ingredient Milk", MissingIngredientMessage("Milk"))
	assert.Equal(t, "no inventory tracking for Soda", NoTrackingWarning("Soda"))
	assert.Equal(t, "failed to update Flour: boom", UpdateFailedMessage("Flour", errors.New("boom")))
}

func TestFailureSummary(t *testing.T) {
	assert.Equal(t, "", FailureSummary(nil))
	assert.Equal(t, "a", FailureSummary([]string{"a"}))
	assert.Equal(t, "a (2 more)", FailureSummary([]string{"a", "b", "c"}))
}

func TestFirstError(t *testing.T) {
	assert.Equal(t, "", ValidationResult{}.FirstError())
	assert.Equal(t, "x", ValidationResult{Errors: []string{"x", "y"}}.FirstError())
}
