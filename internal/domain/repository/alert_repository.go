package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// AlertRepository persiste alertas del sistema y la bitácora de descuentos exitosos.
type AlertRepository interface {
	CreateAlert(ctx context.Context, alert *entity.SystemAlert) error
	CreateAudit(ctx context.Context, audit *entity.DeductionAudit) error
}
