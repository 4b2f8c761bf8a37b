package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Lo usa el reverso de ventas para restituir existencias de forma atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// SaleGuard reserva el id de una venta para que su inventario se descuente una sola vez.
// Reserve devuelve false si la venta ya estaba reservada. Release la libera tras un reverso.
type SaleGuard interface {
	Reserve(ctx context.Context, saleID string) (bool, error)
	Release(ctx context.Context, saleID string) error
}

// Tipos de evento publicados por el motor de inventario.
const (
	EventInventoryDeducted        = "InventoryDeducted"
	EventInventoryDeductionFailed = "InventoryDeductionFailed"
)

// InventoryEvent evento de resultado del descuento de una venta.
type InventoryEvent struct {
	EventID    string
	EventType  string
	SaleID     string
	Errors     []string
	Deductions []inventory.Deduction
	Timestamp  time.Time
}

// EventPublisher publica eventos de inventario (Kafka en producción).
type EventPublisher interface {
	Publish(ctx context.Context, event InventoryEvent) error
}

// MovementReportGenerator genera el reporte PDF de movimientos de una venta.
type MovementReportGenerator interface {
	GenerateMovementReport(ctx context.Context, saleID string, movements []*entity.MovementRecord) ([]byte, error)
}
