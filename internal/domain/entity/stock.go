package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord existencias de un ítem en una tienda. ItemName es único por tienda
// y se compara de forma exacta (sensible a mayúsculas). Quantity nunca se persiste negativa.
type StockRecord struct {
	ID        string
	StoreID   string
	ItemName  string
	Unit      string
	Quantity  decimal.Decimal
	IsActive  bool
	UpdatedAt time.Time
}
