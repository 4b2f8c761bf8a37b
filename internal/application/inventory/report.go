package inventory

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// ReportUseCase consulta y exporta los movimientos de inventario de una venta.
type ReportUseCase struct {
	movements repository.MovementRepository
	pdf       MovementReportGenerator
}

// NewReportUseCase construye el caso de uso. pdf puede ser nil si no se exporta.
func NewReportUseCase(movements repository.MovementRepository, pdf MovementReportGenerator) *ReportUseCase {
	return &ReportUseCase{movements: movements, pdf: pdf}
}

// SaleMovements devuelve los movimientos de la venta o domain.ErrNotFound si no hay ninguno.
func (uc *ReportUseCase) SaleMovements(ctx context.Context, saleID string) ([]*entity.MovementRecord, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	movs, err := uc.movements.ListByReference(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if len(movs) == 0 {
		return nil, domain.ErrNotFound
	}
	return movs, nil
}

// SaleMovementsPDF genera el reporte PDF de los movimientos de la venta.
func (uc *ReportUseCase) SaleMovementsPDF(ctx context.Context, saleID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.SaleMovements(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateMovementReport(ctx, saleID, movs)
}
