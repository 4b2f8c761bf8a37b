package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo persiste system_alerts e inventory_audit_log.
type AlertRepo struct {
	pool *pgxpool.Pool
}

// NewAlertRepository construye el adaptador.
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

func (r *AlertRepo) CreateAlert(ctx context.Context, a *entity.SystemAlert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	metadata := a.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO system_alerts (id, alert_type, severity, title, message, metadata, is_resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.AlertType, a.Severity, a.Title, a.Message, string(metadata), a.IsResolved, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert system alert: %w", err)
	}
	return nil
}

func (r *AlertRepo) CreateAudit(ctx context.Context, a *entity.DeductionAudit) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	metadata := a.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inventory_audit_log (id, reference_id, operation_type, status, items_processed, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ReferenceID, a.OperationType, a.Status, a.ItemsProcessed, string(metadata), a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("audit already recorded for %s: %w", a.ReferenceID, err)
		}
		return fmt.Errorf("insert deduction audit: %w", err)
	}
	return nil
}
