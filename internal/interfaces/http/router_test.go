package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	appinventory "github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	apphttp "github.com/jhoicas/pos-inventario/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pos-inventario/pkg/jwt"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type stockStore struct {
	mu   sync.Mutex
	rows map[string]*entity.StockRecord
}

func (s *stockStore) GetByName(_ context.Context, storeID, itemName string) (*entity.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.StoreID == storeID && r.ItemName == itemName {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stockStore) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *stockStore) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	return s.GetByID(ctx, id)
}

func (s *stockStore) UpdateQuantity(_ context.Context, id string, previous, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !r.Quantity.Equal(previous) {
		return domain.ErrStockConflict
	}
	r.Quantity = quantity
	return nil
}

type recipeBook map[string]*entity.Recipe

func (b recipeBook) GetRecipeWithIngredients(_ context.Context, productID string) (*entity.Recipe, error) {
	return b[productID], nil
}

type movementLog struct {
	mu   sync.Mutex
	list []*entity.MovementRecord
}

func (m *movementLog) Create(_ context.Context, mov *entity.MovementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, mov)
	return nil
}

func (m *movementLog) ListByReference(_ context.Context, referenceID string) ([]*entity.MovementRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.MovementRecord
	for _, mov := range m.list {
		if mov.ReferenceID == referenceID {
			out = append(out, mov)
		}
	}
	return out, nil
}

type directTx struct {
	stock *stockStore
	movs  *movementLog
}

func (t directTx) Run(_ context.Context, fn func(repository.StockRepository, repository.MovementRepository) error) error {
	return fn(t.stock, t.movs)
}

type onceGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *onceGuard) Reserve(_ context.Context, saleID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[saleID] {
		return false, nil
	}
	g.seen[saleID] = true
	return true, nil
}

func (g *onceGuard) Release(_ context.Context, saleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, saleID)
	return nil
}

type stubPDF struct{}

func (stubPDF) GenerateMovementReport(_ context.Context, _ string, _ []*entity.MovementRecord) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// App de prueba
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app   *fiber.App
	stock *stockStore
	movs  *movementLog
}

func newTestEnv() *testEnv {
	stock := &stockStore{rows: map[string]*entity.StockRecord{
		"st-flour": {ID: "st-flour", StoreID: testStoreID, ItemName: "Flour", Quantity: decimal.NewFromInt(10), IsActive: true},
		"st-soda":  {ID: "st-soda", StoreID: testStoreID, ItemName: "Soda", Quantity: decimal.NewFromInt(1), IsActive: true},
	}}
	recipes := recipeBook{
		"p-croffle": {ID: "r-1", ProductID: "p-croffle", Ingredients: []entity.RecipeIngredient{
			{IngredientName: "Flour", Quantity: decimal.NewFromInt(2), Unit: "g"},
		}},
	}
	movs := &movementLog{}
	guard := &onceGuard{seen: map[string]bool{}}
	log := logger.Nop()

	validator := appinventory.NewValidator(stock, recipes, log)
	executor := appinventory.NewExecutor(appinventory.ExecutorDeps{
		Stock:     stock,
		Recipes:   recipes,
		Movements: movs,
		Guard:     guard,
	}, appinventory.ExecutorOptions{MaxConflictRetries: 1}, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Validator: validator,
		Executor:  executor,
		Facade:    appinventory.NewFacade(validator, executor, log),
		Report:    appinventory.NewReportUseCase(movs, stubPDF{}),
		Reversal:  appinventory.NewReversalUseCase(directTx{stock: stock, movs: movs}, movs, guard, log),
		JWTSecret: testJWTSecret,
	})
	return &testEnv{app: app, stock: stock, movs: movs}
}

func (e *testEnv) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func croffles(n int64) []dto.SaleItemRequest {
	return []dto.SaleItemRequest{{ProductID: "p-croffle", ProductName: "Croffle", Quantity: decimal.NewFromInt(n)}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateEndpoint_InsufficientStock(t *testing.T) {
	env := newTestEnv()
	resp := env.do(t, http.MethodPost, "/api/inventory/validate", pkgjwt.RoleCajero, dto.ValidateRequest{Items: croffles(6)})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ValidationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.CanProceed)
	assert.Equal(t, []string{"insufficient Flour: need 12, have 10"}, out.Errors)
	require.Len(t, out.InsufficientItems, 1)
}

func TestValidateEndpoint_InvalidQuantity(t *testing.T) {
	env := newTestEnv()
	resp := env.do(t, http.MethodPost, "/api/inventory/validate", pkgjwt.RoleCajero, dto.ValidateRequest{Items: croffles(0)})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeductEndpoint_SuccessThenDuplicate(t *testing.T) {
	env := newTestEnv()
	req := dto.DeductRequest{SaleID: "sale-1", Items: croffles(3)}

	resp := env.do(t, http.MethodPost, "/api/inventory/deduct", pkgjwt.RoleCajero, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.DeductionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.True(t, out.Success)
	assert.True(t, env.stock.rows["st-flour"].Quantity.Equal(decimal.NewFromInt(4)))

	resp = env.do(t, http.MethodPost, "/api/inventory/deduct", pkgjwt.RoleCajero, req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.True(t, env.stock.rows["st-flour"].Quantity.Equal(decimal.NewFromInt(4)))
}

func TestDeductEndpoint_FailureReturnsConflictWithResult(t *testing.T) {
	env := newTestEnv()
	resp := env.do(t, http.MethodPost, "/api/inventory/deduct", pkgjwt.RoleCajero,
		dto.DeductRequest{SaleID: "sale-2", Items: croffles(6)})
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var out dto.DeductionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Success)
	assert.Empty(t, out.DeductedItems)
	assert.NotEmpty(t, out.Errors)
}

func TestCheckoutEndpoint_CompletedAndBlocked(t *testing.T) {
	env := newTestEnv()

	resp := env.do(t, http.MethodPost, "/api/sales/checkout", pkgjwt.RoleCajero,
		dto.DeductRequest{SaleID: "sale-3", Items: croffles(2)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ok dto.CheckoutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	resp.Body.Close()
	assert.Equal(t, "completed", ok.State)
	assert.Equal(t, "inventory updated: 1 ingredient rows", ok.Notice)

	resp = env.do(t, http.MethodPost, "/api/sales/checkout", pkgjwt.RoleCajero,
		dto.DeductRequest{SaleID: "sale-4", Items: croffles(4)})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var blocked dto.CheckoutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&blocked))
	assert.Equal(t, "blocked", blocked.State)
	assert.Equal(t, "insufficient Flour: need 8, have 6", blocked.Notice)
}

func TestCheckoutEndpoint_RequiresSaleID(t *testing.T) {
	env := newTestEnv()
	resp := env.do(t, http.MethodPost, "/api/sales/checkout", pkgjwt.RoleCajero, dto.DeductRequest{Items: croffles(1)})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovementsAndReversal(t *testing.T) {
	env := newTestEnv()
	resp := env.do(t, http.MethodPost, "/api/inventory/deduct", pkgjwt.RoleCajero,
		dto.DeductRequest{SaleID: "sale-5", Items: croffles(1)})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/sales/sale-5/movements", pkgjwt.RoleCajero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs []dto.MovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movs))
	resp.Body.Close()
	require.Len(t, movs, 1)
	assert.Equal(t, "outbound", movs[0].MovementType)

	resp = env.do(t, http.MethodGet, "/api/sales/sale-5/movements.pdf", pkgjwt.RoleCajero, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/sales/sale-5/reversal", pkgjwt.RoleCajero, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/sales/sale-5/reversal", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, env.stock.rows["st-flour"].Quantity.Equal(decimal.NewFromInt(10)))

	resp = env.do(t, http.MethodPost, "/api/sales/sale-5/reversal", pkgjwt.RoleAdmin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMovementsEndpoint_UnknownSale(t *testing.T) {
	env := newTestEnv()
	resp := env.do(t, http.MethodGet, "/api/sales/nope/movements", pkgjwt.RoleCajero, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
