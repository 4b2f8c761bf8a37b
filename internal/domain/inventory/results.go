package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Shortfall insumo sin existencias suficientes.
type Shortfall struct {
	Ingredient string
	Required   decimal.Decimal
	Available  decimal.Decimal
}

// Deduction descuento aplicado a un registro de stock.
type Deduction struct {
	StockRecordID string
	Ingredient    string
	Deducted      decimal.Decimal
	Remaining     decimal.Decimal
}

// ValidationResult resultado de la validación previa al cobro.
type ValidationResult struct {
	CanProceed        bool
	Errors            []string
	Warnings          []string
	InsufficientItems []Shortfall
}

// FirstError mensaje que se muestra al cajero cuando la venta se bloquea.
func (r ValidationResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// DeductionResult resultado del descuento de inventario de una venta.
// Si Success es false, DeductedItems viene vacío; AppliedDeductions conserva lo
// que sí quedó escrito en almacenamiento.
type DeductionResult struct {
	Success            bool
	DeductedItems      []Deduction
	Errors             []string
	Warnings           []string
	ValidationFailures []Shortfall
	AppliedDeductions  []Deduction
}

// Mensajes visibles al usuario. Se mantienen en inglés porque los consume la caja.

func InsufficientMessage(name string, required, available decimal.Decimal) string {
	return fmt.Sprintf("insufficient %s: need %s, have %s", name, required.String(), available.String())
}

func MissingIngredientMessage(name string) string {
	return "missing inventory for ingredient " + name
}

func NoTrackingWarning(name string) string {
	return "no inventory tracking for " + name
}

func RecipeFallbackWarning(product string) string {
	return fmt.Sprintf("recipe lookup failed for %s, checked as direct product", product)
}

func LookupFailedMessage(name string, err error) string {
	return fmt.Sprintf("failed to check inventory for %s: %v", name, err)
}

func UpdateFailedMessage(name string, err error) string {
	return fmt.Sprintf("failed to update %s: %v", name, err)
}

// FailureSummary primer error más el conteo de los restantes, para la alerta al cajero.
func FailureSummary(errs []string) string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return errs[0]
	default:
		return fmt.Sprintf("%s (%d more)", errs[0], len(errs)-1)
	}
}
