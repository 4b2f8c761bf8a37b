package inventory_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba de los puertos
// ──────────────────────────────────────────────────────────────────────────────

var errBackend = errors.New("backend caído")

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type memStock struct {
	mu      sync.Mutex
	rows    map[string]*entity.StockRecord // por id
	getErr  map[string]error               // por nombre
	updErr  map[string]error               // por id
	updates int
	// interfere simula otra venta que escribe la fila justo antes de nuestra actualización.
	interfere map[string]decimal.Decimal
}

func newMemStock() *memStock {
	return &memStock{
		rows:      map[string]*entity.StockRecord{},
		getErr:    map[string]error{},
		updErr:    map[string]error{},
		interfere: map[string]decimal.Decimal{},
	}
}

func (m *memStock) put(id, storeID, name, q string) {
	m.rows[id] = &entity.StockRecord{ID: id, StoreID: storeID, ItemName: name, Quantity: qty(q), IsActive: true}
}

func (m *memStock) quantity(id string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Quantity
}

func (m *memStock) GetByName(_ context.Context, storeID, itemName string) (*entity.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.getErr[itemName]; err != nil {
		return nil, err
	}
	for _, r := range m.rows {
		if r.StoreID == storeID && r.ItemName == itemName && r.IsActive {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStock) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStock) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	return m.GetByID(ctx, id)
}

func (m *memStock) UpdateQuantity(_ context.Context, id string, previous, quantity decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updErr[id]; err != nil {
		return err
	}
	r, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if other, ok := m.interfere[id]; ok {
		delete(m.interfere, id)
		r.Quantity = other
	}
	if !r.Quantity.Equal(previous) {
		return domain.ErrStockConflict
	}
	if quantity.IsNegative() {
		return errors.New("cantidad negativa")
	}
	r.Quantity = quantity
	m.updates++
	return nil
}

type memRecipes struct {
	recipes map[string]*entity.Recipe
	err     map[string]error
}

func newMemRecipes() *memRecipes {
	return &memRecipes{recipes: map[string]*entity.Recipe{}, err: map[string]error{}}
}

func (m *memRecipes) add(productID string, ings ...entity.RecipeIngredient) {
	m.recipes[productID] = &entity.Recipe{ID: "r-" + productID, ProductID: productID, Ingredients: ings}
}

func (m *memRecipes) GetRecipeWithIngredients(_ context.Context, productID string) (*entity.Recipe, error) {
	if err := m.err[productID]; err != nil {
		return nil, err
	}
	return m.recipes[productID], nil
}

func ing(name, q string) entity.RecipeIngredient {
	return entity.RecipeIngredient{IngredientName: name, Quantity: qty(q), Unit: "g"}
}

type memMovements struct {
	mu        sync.Mutex
	movements []*entity.MovementRecord
	createErr error
}

func (m *memMovements) Create(_ context.Context, mov *entity.MovementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.movements = append(m.movements, mov)
	return nil
}

func (m *memMovements) ListByReference(_ context.Context, referenceID string) ([]*entity.MovementRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.MovementRecord
	for _, mov := range m.movements {
		if mov.ReferenceID == referenceID {
			out = append(out, mov)
		}
	}
	return out, nil
}

type memAlerts struct {
	alerts []*entity.SystemAlert
	audits []*entity.DeductionAudit
}

func (m *memAlerts) CreateAlert(_ context.Context, a *entity.SystemAlert) error {
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *memAlerts) CreateAudit(_ context.Context, a *entity.DeductionAudit) error {
	m.audits = append(m.audits, a)
	return nil
}

type memGuard struct {
	seen     map[string]bool
	err      error
	released []string
}

func (g *memGuard) Reserve(_ context.Context, saleID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[saleID] {
		return false, nil
	}
	g.seen[saleID] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, saleID string) error {
	if g.err != nil {
		return g.err
	}
	delete(g.seen, saleID)
	g.released = append(g.released, saleID)
	return nil
}

type memEvents struct {
	events []appinventory.InventoryEvent
}

func (p *memEvents) Publish(_ context.Context, ev appinventory.InventoryEvent) error {
	p.events = append(p.events, ev)
	return nil
}

// memTx ejecuta el callback sin transacción real sobre los mismos dobles.
type memTx struct {
	stock *memStock
	movs  *memMovements
}

func (t *memTx) Run(_ context.Context, fn func(repository.StockRepository, repository.MovementRepository) error) error {
	return fn(t.stock, t.movs)
}
