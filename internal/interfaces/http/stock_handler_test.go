package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	apphttp "github.com/jhoicas/Almacen-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos para montar el handler con un motor real
// ──────────────────────────────────────────────────────────────────────────────

type memProductRepo struct {
	products map[string]*entity.Product
}

func (r *memProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) { return r.GetByID(id) }

func (r *memProductRepo) GetByCompanyAndSKU(string, string) (*entity.Product, error) {
	return nil, nil
}

func (r *memProductRepo) List(context.Context, string, int, int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProductRepo) ListByIDs(context.Context, []string) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProductRepo) ListWithExpiration(context.Context) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProductRepo) UpdateStock(id string, s entity.StockRecord) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock = s
	return nil
}

func (r *memProductRepo) UpdatePrice(id string, price decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Price = price
	return nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(id string) error {
	delete(r.products, id)
	return nil
}

type memEventRepo struct {
	events []*entity.StockEvent
}

func (r *memEventRepo) Create(e *entity.StockEvent) error {
	cp := *e
	r.events = append(r.events, &cp)
	return nil
}

func (r *memEventRepo) GetByID(id string) (*entity.StockEvent, error) {
	for _, e := range r.events {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memEventRepo) List(context.Context, string, repository.StockEventFilter) ([]*entity.StockEvent, error) {
	return nil, nil
}

func (r *memEventRepo) MarkReversed(id string) error {
	for _, e := range r.events {
		if e.ID == id && !e.Reversed {
			e.Reversed = true
			return nil
		}
	}
	return domain.ErrReversalConflict
}

type passthroughTx struct {
	productRepo *memProductRepo
	eventRepo   *memEventRepo
}

func (r *passthroughTx) Run(_ context.Context, fn func(repository.ProductRepository, repository.StockEventRepository) error) error {
	return fn(r.productRepo, r.eventRepo)
}

// stockApp monta las rutas de mutación con el middleware de autenticación real.
func stockApp(productRepo *memProductRepo, eventRepo *memEventRepo) *fiber.App {
	engine := stock.NewMutationEngine(
		&passthroughTx{productRepo: productRepo, eventRepo: eventRepo},
		productRepo, eventRepo, nil, nil, nil,
	)
	h := apphttp.NewStockHandler(engine)
	app := fiber.New()
	api := app.Group("/api", apphttp.AuthMiddleware(testSecret))
	api.Post("/stock/:productId/consume", h.Consume)
	api.Post("/stock/:productId/restock", h.Restock)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, authHeader, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento entre tenants en la superficie HTTP de mutaciones
// ──────────────────────────────────────────────────────────────────────────────

// Un usuario autenticado de una empresa no puede mutar el stock de otra: el
// producto ajeno se responde como inexistente y su registro queda intacto.
func TestStockHandler_ConsumeDeOtraEmpresa_Retorna404(t *testing.T) {
	productRepo := &memProductRepo{products: map[string]*entity.Product{
		"prod-b": {
			ID:        "prod-b",
			CompanyID: "empresa-B",
			SKU:       "SKU-B",
			Price:     decimal.NewFromInt(100),
			Stock:     entity.StockRecord{Store: 50},
		},
	}}
	eventRepo := &memEventRepo{}
	app := stockApp(productRepo, eventRepo)

	resp := postJSON(t, app, "/api/stock/prod-b/consume", issueToken(t, "empresa-A", "vendedor"),
		`{"location":"STORE","qty":30}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode,
		"el producto de otra empresa se responde como inexistente")

	p, _ := productRepo.GetByID("prod-b")
	assert.Equal(t, int64(50), p.Stock.Store, "el stock del otro tenant no cambió")
	assert.Empty(t, eventRepo.events, "la mutación rechazada no deja rastro en el ledger")
}

func TestStockHandler_RestockDeOtraEmpresa_Retorna404(t *testing.T) {
	productRepo := &memProductRepo{products: map[string]*entity.Product{
		"prod-b": {
			ID:        "prod-b",
			CompanyID: "empresa-B",
			SKU:       "SKU-B",
			Price:     decimal.NewFromInt(100),
			Stock:     entity.StockRecord{Godown: 10},
		},
	}}
	eventRepo := &memEventRepo{}
	app := stockApp(productRepo, eventRepo)

	resp := postJSON(t, app, "/api/stock/prod-b/restock", issueToken(t, "empresa-A", "bodeguero"),
		`{"location":"GODOWN","qty":5}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, eventRepo.events)
}

func TestStockHandler_ConsumePropio_AplicaLaSalida(t *testing.T) {
	productRepo := &memProductRepo{products: map[string]*entity.Product{
		"prod-a": {
			ID:        "prod-a",
			CompanyID: "empresa-A",
			SKU:       "SKU-A",
			Price:     decimal.NewFromInt(100),
			Stock:     entity.StockRecord{Store: 50},
		},
	}}
	eventRepo := &memEventRepo{}
	app := stockApp(productRepo, eventRepo)

	resp := postJSON(t, app, "/api/stock/prod-a/consume", issueToken(t, "empresa-A", "vendedor"),
		`{"location":"STORE","qty":30}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	p, _ := productRepo.GetByID("prod-a")
	assert.Equal(t, int64(20), p.Stock.Store)
	require.Len(t, eventRepo.events, 1)
	assert.Equal(t, entity.ActionReduce, eventRepo.events[0].Action)
}
