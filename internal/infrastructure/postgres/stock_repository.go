package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre la tabla inventory_stock (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, store_id, item, COALESCE(unit, ''), stock_quantity, is_active, updated_at`

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(&s.ID, &s.StoreID, &s.ItemName, &s.Unit, &s.Quantity, &s.IsActive, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByName busca el ítem activo por nombre exacto dentro de la tienda.
func (r *StockRepo) GetByName(ctx context.Context, storeID, itemName string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM inventory_stock
		WHERE store_id = $1 AND item = $2 AND is_active = true`
	s, err := scanStock(r.q.QueryRow(ctx, query, storeID, itemName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock by name: %w", err)
	}
	return s, nil
}

// GetByID obtiene un registro de stock por ID.
func (r *StockRepo) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory_stock WHERE id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory_stock WHERE id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// UpdateQuantity escribe la nueva cantidad solo si la fila conserva la cantidad leída.
// Si no se afectó ninguna fila distingue entre fila inexistente y escritura concurrente.
func (r *StockRepo) UpdateQuantity(ctx context.Context, id string, previous, quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	query := `
		UPDATE inventory_stock
		SET stock_quantity = $3, updated_at = now()
		WHERE id = $1 AND stock_quantity = $2`
	cmd, err := r.q.Exec(ctx, query, id, previous, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM inventory_stock WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check stock: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrStockConflict
}
