package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStockConflict      = errors.New("el stock cambió durante la actualización")
	ErrRecipeLookupFailed = errors.New("falló la consulta de receta")
	ErrDuplicateSale      = errors.New("la venta ya fue procesada")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
)

// Errores del flujo de venta (fachada de integración con caja).
var (
	ErrSaleBlocked     = errors.New("venta bloqueada por inventario")
	ErrDeductionFailed = errors.New("falló el descuento de inventario")
)
