package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeOutbound = "outbound" // salida por venta
	MovementTypeInbound  = "inbound"  // reingreso (reverso de venta)
)

// Tipos de referencia del movimiento.
const (
	ReferenceTypeTransaction = "transaction"
	ReferenceTypeReversal    = "reversal"
)

// MovementCreatedBySystem autor de los movimientos generados por el motor.
const MovementCreatedBySystem = "system"

// MovementRecord registro de auditoría (solo inserción) de un cambio en un StockRecord.
type MovementRecord struct {
	ID               string
	StockRecordID    string
	ItemName         string // solo lectura: se llena con el nombre del registro de stock
	ReferenceID      string // id de la venta
	ReferenceType    string
	Type             string
	QuantityChange   decimal.Decimal // negativo en salidas
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Note             string
	CreatedBy        string
	CreatedAt        time.Time
}
