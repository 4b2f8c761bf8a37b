package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// Restock fila de stock restituida por un reverso.
type Restock struct {
	StockRecordID string
	ItemName      string
	Restored      decimal.Decimal
	NewQuantity   decimal.Decimal
}

// ReversalUseCase revierte manualmente el descuento de una venta: por cada salida
// registrada reingresa la cantidad y guarda un movimiento de entrada, todo en una transacción.
type ReversalUseCase struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	guard     SaleGuard
	log       zerolog.Logger
	now       func() time.Time
}

// NewReversalUseCase construye el caso de uso. guard es opcional; si está, la reserva
// de la venta se libera después de un reverso confirmado.
func NewReversalUseCase(txRunner TxRunner, movements repository.MovementRepository, guard SaleGuard, log *logger.Logger) *ReversalUseCase {
	return &ReversalUseCase{
		txRunner:  txRunner,
		movements: movements,
		guard:     guard,
		log:       log.Component("sale_reversal"),
		now:       time.Now,
	}
}

// Reverse bloquea cada fila afectada (SELECT FOR UPDATE) antes de volver a consultar si
// la venta ya fue revertida, de modo que dos reversos concurrentes no se dupliquen.
func (uc *ReversalUseCase) Reverse(ctx context.Context, saleID, userID string) ([]Restock, error) {
	if saleID == "" {
		return nil, fmt.Errorf("%w: venta sin id", domain.ErrInvalidInput)
	}
	movs, err := uc.movements.ListByReference(ctx, saleID)
	if err != nil {
		return nil, err
	}
	outbound := outboundOf(movs)
	if len(outbound) == 0 {
		return nil, domain.ErrNotFound
	}

	createdBy := userID
	if createdBy == "" {
		createdBy = entity.MovementCreatedBySystem
	}
	var restocks []Restock
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, movRepo repository.MovementRepository) error {
		restocks = restocks[:0]
		locked := make(map[string]*entity.StockRecord, len(outbound))
		for _, m := range outbound {
			if _, ok := locked[m.StockRecordID]; ok {
				continue
			}
			rec, err := stockRepo.GetForUpdate(ctx, m.StockRecordID)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("%w: stock %s", domain.ErrNotFound, m.StockRecordID)
			}
			locked[m.StockRecordID] = rec
		}

		current, err := movRepo.ListByReference(ctx, saleID)
		if err != nil {
			return err
		}
		if alreadyReversed(current) {
			return fmt.Errorf("%w: la venta %s ya fue revertida", domain.ErrConflict, saleID)
		}

		now := uc.now()
		for _, m := range outbound {
			rec := locked[m.StockRecordID]
			restored := m.QuantityChange.Abs()
			newQty := rec.Quantity.Add(restored)
			if err := stockRepo.UpdateQuantity(ctx, rec.ID, rec.Quantity, newQty); err != nil {
				return err
			}
			mov := &entity.MovementRecord{
				ID:               uuid.New().String(),
				StockRecordID:    rec.ID,
				ItemName:         rec.ItemName,
				ReferenceID:      saleID,
				ReferenceType:    entity.ReferenceTypeReversal,
				Type:             entity.MovementTypeInbound,
				QuantityChange:   restored,
				PreviousQuantity: rec.Quantity,
				NewQuantity:      newQty,
				Note:             "reversal of sale " + saleID,
				CreatedBy:        createdBy,
				CreatedAt:        now,
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
			rec.Quantity = newQty
			restocks = append(restocks, Restock{
				StockRecordID: rec.ID,
				ItemName:      rec.ItemName,
				Restored:      restored,
				NewQuantity:   newQty,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("sale_id", saleID).Int("rows", len(restocks)).Msg("venta revertida")
	if uc.guard != nil {
		// El stock ya se restituyó; un fallo aquí solo deja la venta reservada hasta que venza.
		if err := uc.guard.Release(context.WithoutCancel(ctx), saleID); err != nil {
			uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("no se pudo liberar la reserva de la venta")
		}
	}
	return restocks, nil
}

func outboundOf(movs []*entity.MovementRecord) []*entity.MovementRecord {
	out := make([]*entity.MovementRecord, 0, len(movs))
	for _, m := range movs {
		if m.Type == entity.MovementTypeOutbound && m.ReferenceType == entity.ReferenceTypeTransaction {
			out = append(out, m)
		}
	}
	return out
}

func alreadyReversed(movs []*entity.MovementRecord) bool {
	for _, m := range movs {
		if m.ReferenceType == entity.ReferenceTypeReversal {
			return true
		}
	}
	return false
}
