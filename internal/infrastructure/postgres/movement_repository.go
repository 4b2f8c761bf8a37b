package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre inventory_movements (solo inserción).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento. Asigna ID, fecha y autor si vienen vacíos.
func (r *MovementRepo) Create(ctx context.Context, m *entity.MovementRecord) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.CreatedBy == "" {
		m.CreatedBy = entity.MovementCreatedBySystem
	}
	query := `
		INSERT INTO inventory_movements
			(id, inventory_stock_id, reference_id, reference_type, movement_type, quantity_change,
			 previous_quantity, new_quantity, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.StockRecordID, m.ReferenceID, m.ReferenceType, m.Type, m.QuantityChange,
		m.PreviousQuantity, m.NewQuantity, m.Note, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByReference lista los movimientos de una venta en orden de inserción, con el nombre del ítem.
func (r *MovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.MovementRecord, error) {
	query := `
		SELECT m.id, m.inventory_stock_id, COALESCE(s.item, ''), m.reference_id, m.reference_type, m.movement_type,
		       m.quantity_change, m.previous_quantity, m.new_quantity, COALESCE(m.notes, ''),
		       m.created_by, m.created_at
		FROM inventory_movements m
		LEFT JOIN inventory_stock s ON s.id = m.inventory_stock_id
		WHERE m.reference_id = $1
		ORDER BY m.created_at, m.id`
	rows, err := r.q.Query(ctx, query, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.MovementRecord
	for rows.Next() {
		var m entity.MovementRecord
		if err := rows.Scan(
			&m.ID, &m.StockRecordID, &m.ItemName, &m.ReferenceID, &m.ReferenceType, &m.Type,
			&m.QuantityChange, &m.PreviousQuantity, &m.NewQuantity, &m.Note,
			&m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
