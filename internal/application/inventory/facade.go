package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// SaleState estado de un intento de venta frente al inventario.
type SaleState string

// Created → Validating → (Blocked | Validated) → Deducting → (Completed | DeductionFailed).
const (
	StateCreated         SaleState = "created"
	StateValidating      SaleState = "validating"
	StateBlocked         SaleState = "blocked"
	StateValidated       SaleState = "validated"
	StateDeducting       SaleState = "deducting"
	StateCompleted       SaleState = "completed"
	StateDeductionFailed SaleState = "deduction_failed"
)

// Terminal indica si el estado ya no admite transiciones.
func (s SaleState) Terminal() bool {
	return s == StateBlocked || s == StateCompleted || s == StateDeductionFailed
}

// BlockedError la validación impidió la venta; Error() es el primer mensaje, para el cajero.
type BlockedError struct {
	SaleID string
	Result inventory.ValidationResult
}

func (e *BlockedError) Error() string { return e.Result.FirstError() }

// Unwrap incluye ErrInsufficientStock cuando el bloqueo se debe a faltantes.
func (e *BlockedError) Unwrap() []error {
	if len(e.Result.InsufficientItems) > 0 {
		return []error{domain.ErrSaleBlocked, domain.ErrInsufficientStock}
	}
	return []error{domain.ErrSaleBlocked}
}

// DeductionFailedError el descuento falló después del cobro. Requiere intervención manual:
// no se revierte el pago ni se reintenta.
type DeductionFailedError struct {
	SaleID string
	Result inventory.DeductionResult
}

func (e *DeductionFailedError) Error() string {
	return fmt.Sprintf("inventory deduction failed for sale %s, manual intervention required: %s",
		e.SaleID, inventory.FailureSummary(e.Result.Errors))
}

func (e *DeductionFailedError) Unwrap() []error {
	if len(e.Result.ValidationFailures) > 0 {
		return []error{domain.ErrDeductionFailed, domain.ErrInsufficientStock}
	}
	return []error{domain.ErrDeductionFailed}
}

// Facade orquesta validador y ejecutor alrededor de una venta.
type Facade struct {
	validator *Validator
	executor  *Executor
	log       zerolog.Logger
}

// NewFacade construye la fachada.
func NewFacade(validator *Validator, executor *Executor, log *logger.Logger) *Facade {
	return &Facade{validator: validator, executor: executor, log: log.Component("sale_inventory")}
}

// Begin crea un intento de venta en estado Created.
func (f *Facade) Begin(saleID string, items []entity.SaleLineItem) *SaleAttempt {
	return &SaleAttempt{
		facade: f,
		saleID: saleID,
		items:  append([]entity.SaleLineItem(nil), items...),
		state:  StateCreated,
	}
}

// PaymentCapture captura el pago de la venta (fuera de este servicio).
type PaymentCapture func(ctx context.Context) error

// Checkout valida, captura el pago y descuenta. Si la captura falla el intento queda
// en Validated y no se toca el inventario.
func (f *Facade) Checkout(ctx context.Context, saleID string, items []entity.SaleLineItem, capture PaymentCapture) (*SaleAttempt, error) {
	attempt := f.Begin(saleID, items)
	if _, err := attempt.Validate(ctx); err != nil {
		return attempt, err
	}
	if capture != nil {
		if err := capture(ctx); err != nil {
			return attempt, fmt.Errorf("captura de pago: %w", err)
		}
	}
	if _, err := attempt.Deduct(ctx); err != nil {
		return attempt, err
	}
	return attempt, nil
}

// SaleAttempt máquina de estados de una venta. Es terminal en el primer fallo.
type SaleAttempt struct {
	facade *Facade

	mu         sync.Mutex
	saleID     string
	items      []entity.SaleLineItem
	state      SaleState
	notice     string
	validation *inventory.ValidationResult
	deduction  *inventory.DeductionResult
}

// SaleID id de la venta que se está cobrando.
func (a *SaleAttempt) SaleID() string { return a.saleID }

// State estado actual del intento.
func (a *SaleAttempt) State() SaleState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Notice mensaje para mostrar al usuario tras la última transición.
func (a *SaleAttempt) Notice() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notice
}

// Validation último resultado de validación, nil si aún no se validó.
func (a *SaleAttempt) Validation() *inventory.ValidationResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validation
}

// Deduction resultado del descuento, nil mientras no se haya ejecutado.
func (a *SaleAttempt) Deduction() *inventory.DeductionResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deduction
}

func (a *SaleAttempt) transition(from, to SaleState) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != from {
		return fmt.Errorf("%w: %s -> %s desde %s", domain.ErrInvalidTransition, from, to, a.state)
	}
	a.state = to
	return nil
}

func (a *SaleAttempt) finish(state SaleState, notice string) {
	a.mu.Lock()
	a.state = state
	a.notice = notice
	a.mu.Unlock()
}

// Validate solo desde Created. Si la validación no pasa, el intento queda Blocked
// y se devuelve *BlockedError.
func (a *SaleAttempt) Validate(ctx context.Context) (inventory.ValidationResult, error) {
	if err := a.transition(StateCreated, StateValidating); err != nil {
		return inventory.ValidationResult{}, err
	}
	log := a.facade.log.With().Str("sale_id", a.saleID).Logger()

	res, err := a.facade.validator.Validate(ctx, a.items)
	a.mu.Lock()
	a.validation = &res
	a.mu.Unlock()
	if err != nil {
		a.finish(StateBlocked, err.Error())
		return res, err
	}
	if !res.CanProceed {
		blocked := &BlockedError{SaleID: a.saleID, Result: res}
		log.Warn().Strs("errors", res.Errors).Msg("venta bloqueada por inventario")
		a.finish(StateBlocked, blocked.Error())
		return res, blocked
	}

	notice := ""
	if len(res.Warnings) > 0 {
		notice = res.Warnings[0]
	}
	a.finish(StateValidated, notice)
	return res, nil
}

// Deduct solo desde Validated, es decir después de capturar el pago.
func (a *SaleAttempt) Deduct(ctx context.Context) (inventory.DeductionResult, error) {
	if err := a.transition(StateValidated, StateDeducting); err != nil {
		return inventory.DeductionResult{}, err
	}
	log := a.facade.log.With().Str("sale_id", a.saleID).Logger()

	res, err := a.facade.executor.Deduct(ctx, a.saleID, a.items)
	a.mu.Lock()
	a.deduction = &res
	a.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("descuento de inventario rechazado")
		a.finish(StateDeductionFailed, err.Error())
		return res, fmt.Errorf("%w: %w", domain.ErrDeductionFailed, err)
	}
	if !res.Success {
		failed := &DeductionFailedError{SaleID: a.saleID, Result: res}
		log.Error().Strs("errors", res.Errors).Msg("descuento fallido tras el cobro, requiere intervención manual")
		a.finish(StateDeductionFailed, failed.Error())
		return res, failed
	}

	notice := CompletionNotice(res)
	log.Info().Msg(notice)
	a.finish(StateCompleted, notice)
	return res, nil
}

// CompletionNotice mensaje de éxito con la cantidad de filas de insumos actualizadas.
func CompletionNotice(res inventory.DeductionResult) string {
	return fmt.Sprintf("inventory updated: %d ingredient rows", len(res.DeductedItems))
}
