package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos de inventario.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.MovementRecord) error
	ListByReference(ctx context.Context, referenceID string) ([]*entity.MovementRecord, error)
}
