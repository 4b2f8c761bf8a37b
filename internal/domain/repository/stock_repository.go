package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar existencias por tienda+ítem.
type StockRepository interface {
	// GetByName busca el registro activo con nombre exacto en la tienda. (nil, nil) si no existe.
	GetByName(ctx context.Context, storeID, itemName string) (*entity.StockRecord, error)
	GetByID(ctx context.Context, id string) (*entity.StockRecord, error)
	// UpdateQuantity fija la cantidad solo si la fila aún tiene previous (compare-and-swap).
	// Devuelve domain.ErrStockConflict si otra escritura ganó.
	UpdateQuantity(ctx context.Context, id string, previous, quantity decimal.Decimal) error
	// GetForUpdate bloquea la fila dentro de una transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error)
}
