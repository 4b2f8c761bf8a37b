package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// ExecutorDeps dependencias del ejecutor. Alerts, Events y Guard son opcionales.
type ExecutorDeps struct {
	Stock     repository.StockRepository
	Recipes   repository.RecipeRepository
	Movements repository.MovementRepository
	Alerts    repository.AlertRepository
	Events    EventPublisher
	Guard     SaleGuard
}

// ExecutorOptions reintentos ante escrituras concurrentes sobre la misma fila de stock.
type ExecutorOptions struct {
	MaxConflictRetries int
	ConflictBackoff    time.Duration
}

// DefaultExecutorOptions un reintento con 50ms de espera.
func DefaultExecutorOptions() ExecutorOptions {
	return ExecutorOptions{MaxConflictRetries: 1, ConflictBackoff: 50 * time.Millisecond}
}

// Executor descuenta el inventario de una venta ya cobrada. Revalida cada insumo
// justo antes de escribirlo y actualiza la fila con compare-and-swap.
type Executor struct {
	deps ExecutorDeps
	opts ExecutorOptions
	log  zerolog.Logger
	now  func() time.Time
}

// NewExecutor construye el ejecutor.
func NewExecutor(deps ExecutorDeps, opts ExecutorOptions, log *logger.Logger) *Executor {
	if opts.MaxConflictRetries < 0 {
		opts.MaxConflictRetries = 0
	}
	return &Executor{
		deps: deps,
		opts: opts,
		log:  log.Component("inventory_executor"),
		now:  time.Now,
	}
}

// outcome aporte de un insumo (o de una línea completa) al resultado.
type outcome struct {
	deducted []inventory.Deduction
	errors   []string
	failures []inventory.Shortfall
	warnings []string
}

func (o *outcome) merge(other outcome) {
	o.deducted = append(o.deducted, other.deducted...)
	o.errors = append(o.errors, other.errors...)
	o.failures = append(o.failures, other.failures...)
	o.warnings = append(o.warnings, other.warnings...)
}

// Deduct descuenta las líneas en orden. Los fallos por fila se reportan en el resultado;
// solo retorna error ante entrada inválida, venta duplicada o fallo del guard.
// Si algo falla, DeductedItems viene vacío aunque AppliedDeductions muestre filas ya escritas.
func (e *Executor) Deduct(ctx context.Context, saleID string, items []entity.SaleLineItem) (inventory.DeductionResult, error) {
	res := inventory.DeductionResult{
		DeductedItems:      []inventory.Deduction{},
		Errors:             []string{},
		Warnings:           []string{},
		ValidationFailures: []inventory.Shortfall{},
		AppliedDeductions:  []inventory.Deduction{},
	}
	if saleID == "" {
		return res, fmt.Errorf("%w: venta sin id", domain.ErrInvalidInput)
	}
	if err := checkItems(items); err != nil {
		return res, err
	}

	log := e.log.With().Str("sale_id", saleID).Logger()
	if e.deps.Guard != nil {
		ok, err := e.deps.Guard.Reserve(ctx, saleID)
		if err != nil {
			err = fmt.Errorf("reservar venta %s: %w", saleID, err)
			e.raiseCriticalAlert(context.WithoutCancel(ctx), log, saleID, err)
			return res, err
		}
		if !ok {
			return res, fmt.Errorf("%w: %s", domain.ErrDuplicateSale, saleID)
		}
	}

	log.Info().Int("items", len(items)).Msg("iniciando descuento de inventario")

	var total outcome
	var fault error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			fault = fmt.Errorf("descuento interrumpido antes de %s: %w", item.ProductName, err)
			total.errors = append(total.errors, fmt.Sprintf("deduction interrupted before %s: %v", item.ProductName, err))
			break
		}
		total.merge(e.deductItem(ctx, log, saleID, item))
	}

	res.Warnings = append(res.Warnings, total.warnings...)
	res.AppliedDeductions = append(res.AppliedDeductions, total.deducted...)

	// Los efectos secundarios no deben cortarse si el llamador ya canceló.
	sideCtx := context.WithoutCancel(ctx)
	if len(total.errors) > 0 {
		res.Success = false
		res.Errors = append(res.Errors, total.errors...)
		res.ValidationFailures = append(res.ValidationFailures, total.failures...)
		log.Error().
			Strs("errors", res.Errors).
			Int("applied", len(res.AppliedDeductions)).
			Msg("descuento de inventario fallido")
		if fault != nil {
			e.raiseCriticalAlert(sideCtx, log, saleID, fault)
		} else {
			e.raiseFailureAlert(sideCtx, log, saleID, res)
		}
		e.publish(sideCtx, log, InventoryEvent{
			EventID:    uuid.New().String(),
			EventType:  EventInventoryDeductionFailed,
			SaleID:     saleID,
			Errors:     res.Errors,
			Deductions: res.AppliedDeductions,
			Timestamp:  e.now(),
		})
		return res, nil
	}

	res.Success = true
	res.DeductedItems = append(res.DeductedItems, total.deducted...)
	log.Info().Int("rows", len(res.DeductedItems)).Msg("descuento de inventario completado")
	e.recordSuccess(sideCtx, log, saleID, res)
	return res, nil
}

// deductItem resuelve la receta (o el producto directo) y descuenta cada requerimiento.
func (e *Executor) deductItem(ctx context.Context, log zerolog.Logger, saleID string, item entity.SaleLineItem) outcome {
	var out outcome
	note := fmt.Sprintf("%s (%sx)", item.ProductName, item.Quantity.String())

	recipe, err := resolveRecipe(ctx, e.deps.Recipes, item)
	if err != nil {
		log.Warn().Err(err).Str("product", item.ProductName).Msg("receta no disponible, descontando como producto directo")
		out.warnings = append(out.warnings, inventory.RecipeFallbackWarning(item.ProductName))
		recipe = nil
	}

	if !inventory.HasRecipe(recipe) {
		out.merge(e.deductRequirement(ctx, log, saleID, item.StoreID, inventory.DirectRequirement(item), note, true))
		return out
	}
	for _, req := range inventory.Requirements(recipe, item.Quantity) {
		out.merge(e.deductRequirement(ctx, log, saleID, item.StoreID, req, note, false))
	}
	return out
}

// deductRequirement lee la fila, revalida y la actualiza con compare-and-swap. Ante un
// conflicto vuelve a leer y reintenta hasta MaxConflictRetries veces.
// Para productos directos sin registro de stock la venta sigue sin efecto.
func (e *Executor) deductRequirement(
	ctx context.Context,
	log zerolog.Logger,
	saleID, storeID string,
	req entity.IngredientRequirement,
	note string,
	direct bool,
) outcome {
	var out outcome
	name := req.IngredientName

	for attempt := 0; ; attempt++ {
		rec, err := e.deps.Stock.GetByName(ctx, storeID, name)
		if err != nil {
			out.errors = append(out.errors, inventory.LookupFailedMessage(name, err))
			return out
		}
		if rec == nil {
			if !direct {
				out.errors = append(out.errors, inventory.MissingIngredientMessage(name))
			}
			return out
		}
		if rec.Quantity.LessThan(req.Quantity) {
			out.failures = append(out.failures, inventory.Shortfall{
				Ingredient: name,
				Required:   req.Quantity,
				Available:  rec.Quantity,
			})
			out.errors = append(out.errors, inventory.InsufficientMessage(name, req.Quantity, rec.Quantity))
			return out
		}

		newQty := rec.Quantity.Sub(req.Quantity)
		err = e.deps.Stock.UpdateQuantity(ctx, rec.ID, rec.Quantity, newQty)
		if errors.Is(err, domain.ErrStockConflict) && attempt < e.opts.MaxConflictRetries {
			log.Warn().Str("item", name).Int("attempt", attempt+1).Msg("conflicto de escritura en stock, reintentando")
			if werr := e.wait(ctx); werr != nil {
				out.errors = append(out.errors, inventory.UpdateFailedMessage(name, werr))
				return out
			}
			continue
		}
		if err != nil {
			out.errors = append(out.errors, inventory.UpdateFailedMessage(name, err))
			return out
		}

		e.recordMovement(ctx, log, saleID, rec, req.Quantity, newQty, note)
		out.deducted = append(out.deducted, inventory.Deduction{
			StockRecordID: rec.ID,
			Ingredient:    name,
			Deducted:      req.Quantity,
			Remaining:     newQty,
		})
		return out
	}
}

// recordMovement inserta el movimiento de salida. Es telemetría: un fallo solo se registra en el log.
func (e *Executor) recordMovement(
	ctx context.Context,
	log zerolog.Logger,
	saleID string,
	rec *entity.StockRecord,
	deducted, newQty decimal.Decimal,
	note string,
) {
	now := e.now()
	mov := &entity.MovementRecord{
		ID:               uuid.New().String(),
		StockRecordID:    rec.ID,
		ItemName:         rec.ItemName,
		ReferenceID:      saleID,
		ReferenceType:    entity.ReferenceTypeTransaction,
		Type:             entity.MovementTypeOutbound,
		QuantityChange:   deducted.Neg(),
		PreviousQuantity: rec.Quantity,
		NewQuantity:      newQty,
		Note:             note,
		CreatedBy:        entity.MovementCreatedBySystem,
		CreatedAt:        now,
	}
	if err := e.deps.Movements.Create(ctx, mov); err != nil {
		log.Warn().Err(err).Str("item", rec.ItemName).Msg("no se pudo registrar el movimiento (no crítico)")
	}
}

func (e *Executor) wait(ctx context.Context) error {
	if e.opts.ConflictBackoff <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.opts.ConflictBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// raiseFailureAlert persiste la alerta de descuento fallido por faltantes o errores de fila.
func (e *Executor) raiseFailureAlert(ctx context.Context, log zerolog.Logger, saleID string, res inventory.DeductionResult) {
	now := e.now()
	if e.deps.Alerts != nil {
		meta, _ := json.Marshal(map[string]any{
			"transaction_id": saleID,
			"errors":         res.Errors,
			"applied":        deductionsMeta(res.AppliedDeductions),
			"timestamp":      now.UTC().Format(time.RFC3339),
		})
		alert := &entity.SystemAlert{
			ID:        uuid.New().String(),
			AlertType: entity.AlertTypeDeductionFailure,
			Severity:  entity.AlertSeverityHigh,
			Title:     "Inventory Deduction Failed",
			Message:   fmt.Sprintf("Transaction %s failed inventory deduction: %s", saleID, strings.Join(res.Errors, ", ")),
			Metadata:  meta,
			CreatedAt: now,
		}
		if err := e.deps.Alerts.CreateAlert(ctx, alert); err != nil {
			log.Error().Err(err).Msg("no se pudo registrar la alerta de descuento fallido")
		}
	}
}

// raiseCriticalAlert fallo del sistema (guard caído, contexto interrumpido): requiere soporte técnico.
func (e *Executor) raiseCriticalAlert(ctx context.Context, log zerolog.Logger, saleID string, fault error) {
	log.Error().Err(fault).Msg("falla crítica en el descuento de inventario")
	if e.deps.Alerts == nil {
		return
	}
	now := e.now()
	meta, _ := json.Marshal(map[string]any{
		"transaction_id": saleID,
		"error":          fault.Error(),
		"timestamp":      now.UTC().Format(time.RFC3339),
	})
	alert := &entity.SystemAlert{
		ID:        uuid.New().String(),
		AlertType: entity.AlertTypeCriticalFailure,
		Severity:  entity.AlertSeverityCritical,
		Title:     "Critical Inventory System Failure",
		Message:   "URGENT: Critical failure in inventory deduction system for transaction " + saleID,
		Metadata:  meta,
		CreatedAt: now,
	}
	if err := e.deps.Alerts.CreateAlert(ctx, alert); err != nil {
		log.Error().Err(err).Msg("no se pudo registrar la alerta crítica")
	}
}

// recordSuccess guarda la bitácora del descuento exitoso y publica el evento.
func (e *Executor) recordSuccess(ctx context.Context, log zerolog.Logger, saleID string, res inventory.DeductionResult) {
	now := e.now()
	if e.deps.Alerts != nil {
		meta, _ := json.Marshal(map[string]any{
			"deducted_items": deductionsMeta(res.DeductedItems),
			"timestamp":      now.UTC().Format(time.RFC3339),
		})
		audit := &entity.DeductionAudit{
			ID:             uuid.New().String(),
			ReferenceID:    saleID,
			OperationType:  entity.AuditOperationDeduction,
			Status:         entity.AuditStatusSuccess,
			ItemsProcessed: len(res.DeductedItems),
			Metadata:       meta,
			CreatedAt:      now,
		}
		if err := e.deps.Alerts.CreateAudit(ctx, audit); err != nil {
			log.Warn().Err(err).Msg("no se pudo registrar la bitácora del descuento (no crítico)")
		}
	}
	e.publish(ctx, log, InventoryEvent{
		EventID:    uuid.New().String(),
		EventType:  EventInventoryDeducted,
		SaleID:     saleID,
		Deductions: res.DeductedItems,
		Timestamp:  now,
	})
}

func (e *Executor) publish(ctx context.Context, log zerolog.Logger, ev InventoryEvent) {
	if e.deps.Events == nil {
		return
	}
	if err := e.deps.Events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.EventType).Msg("no se pudo publicar el evento de inventario")
	}
}

func deductionsMeta(ds []inventory.Deduction) []map[string]string {
	out := make([]map[string]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, map[string]string{
			"ingredient": d.Ingredient,
			"deducted":   d.Deducted.String(),
			"remaining":  d.Remaining.String(),
		})
	}
	return out
}
