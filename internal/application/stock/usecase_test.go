package stock_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.CompanyID == companyID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) List(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.CompanyID == companyID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListWithExpiration(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.ExpirationDate != nil {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateStock(id string, s entity.StockRecord) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock = s
	return nil
}

func (r *fakeProductRepo) UpdatePrice(id string, price decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Price = price
	return nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(id string) error {
	delete(r.products, id)
	return nil
}

type fakeEventRepo struct {
	events  []*entity.StockEvent
	nextSeq int64
}

func newFakeEventRepo() *fakeEventRepo { return &fakeEventRepo{nextSeq: 1} }

func (r *fakeEventRepo) Create(e *entity.StockEvent) error {
	cp := *e
	cp.Seq = r.nextSeq
	r.nextSeq++
	r.events = append(r.events, &cp)
	e.Seq = cp.Seq
	return nil
}

func (r *fakeEventRepo) GetByID(id string) (*entity.StockEvent, error) {
	for _, e := range r.events {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepo) List(_ context.Context, companyID string, f repository.StockEventFilter) ([]*entity.StockEvent, error) {
	var out []*entity.StockEvent
	for _, e := range r.events {
		if e.CompanyID != companyID {
			continue
		}
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if len(f.Actions) > 0 {
			found := false
			for _, a := range f.Actions {
				if e.Action == a {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if !f.IncludeReversed && e.Reversed {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (r *fakeEventRepo) MarkReversed(id string) error {
	for _, e := range r.events {
		if e.ID == id {
			if e.Reversed {
				return domain.ErrReversalConflict
			}
			e.Reversed = true
			return nil
		}
	}
	return domain.ErrReversalConflict
}

// fakeTxRunner pasa los repos tal cual: los fakes no necesitan transacción real.
type fakeTxRunner struct {
	productRepo *fakeProductRepo
	eventRepo   *fakeEventRepo
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(repository.ProductRepository, repository.StockEventRepository) error) error {
	return fn(r.productRepo, r.eventRepo)
}

type recordedMetrics struct{ actions []string }

func (m *recordedMetrics) MutationApplied(action string) { m.actions = append(m.actions, action) }

// ──────────────────────────────────────────────────────────────────────────────
// Setup
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "co-1"
	actorID   = "user-1"
)

func newEngine(t *testing.T) (*stock.MutationEngine, *fakeProductRepo, *fakeEventRepo, *recordedMetrics) {
	t.Helper()
	productRepo := newFakeProductRepo()
	eventRepo := newFakeEventRepo()
	metrics := &recordedMetrics{}
	engine := stock.NewMutationEngine(
		&fakeTxRunner{productRepo: productRepo, eventRepo: eventRepo},
		productRepo, eventRepo, nil, metrics, nil,
	)
	return engine, productRepo, eventRepo, metrics
}

func seedProduct(t *testing.T, repo *fakeProductRepo, id string, godown, store int64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:        id,
		CompanyID: companyID,
		SKU:       "SKU-" + id,
		Name:      "Producto " + id,
		Price:     decimal.NewFromInt(100),
		Stock:     entity.StockRecord{Godown: godown, Store: store},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(p))
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateStock
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateStock_SiembraYEmiteCreate(t *testing.T) {
	engine, productRepo, eventRepo, metrics := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 0)

	p, err := engine.CreateStock(context.Background(), companyID, actorID, "p1", 10, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(10), p.Stock.Godown)
	assert.Equal(t, int64(5), p.Stock.Store)

	require.Len(t, eventRepo.events, 1)
	ev := eventRepo.events[0]
	assert.Equal(t, entity.ActionCreate, ev.Action)
	assert.Equal(t, int64(0), *ev.QuantityBefore)
	assert.Equal(t, int64(15), *ev.QuantityAfter)
	assert.Equal(t, actorID, ev.ActorID)
	// El reparto queda en details para reversión y rebuild
	assert.Equal(t, int64(10), ev.Details[entity.DetailGodown])
	assert.Equal(t, int64(5), ev.Details[entity.DetailStore])

	assert.Contains(t, metrics.actions, entity.ActionCreate)
}

func TestCreateStock_ConStockPrevio_Falla(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 3, 0)

	_, err := engine.CreateStock(context.Background(), companyID, actorID, "p1", 10, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidStockOperation)
	assert.Empty(t, eventRepo.events, "la operación fallida no deja rastro en el ledger")
}

// ──────────────────────────────────────────────────────────────────────────────
// Restock / Consume / Move — mutación atómica registro + ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestRestock_ActualizaYEmiteIncrease(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 10, 0)

	p, err := engine.Restock(context.Background(), companyID, actorID, "p1", entity.LocationGodown, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(17), p.Stock.Godown)

	require.Len(t, eventRepo.events, 1)
	ev := eventRepo.events[0]
	assert.Equal(t, entity.ActionIncrease, ev.Action)
	assert.Equal(t, int64(10), *ev.QuantityBefore, "before/after de la ubicación afectada")
	assert.Equal(t, int64(17), *ev.QuantityAfter)
	assert.Equal(t, int64(7), ev.Change)
	assert.Equal(t, entity.LocationGodown, ev.Details[entity.DetailLocation])
}

func TestConsume_EmiteReduceConBeforeAfter(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 8)

	salePrice := decimal.NewFromInt(80)
	p, err := engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "p1",
		Location:  entity.LocationStore,
		Qty:       3,
		SalePrice: &salePrice,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.Stock.Store)

	ev := eventRepo.events[0]
	assert.Equal(t, entity.ActionReduce, ev.Action)
	assert.Equal(t, int64(8), *ev.QuantityBefore)
	assert.Equal(t, int64(5), *ev.QuantityAfter)
	assert.Equal(t, int64(-3), ev.Change)
	assert.Equal(t, "80", ev.Details[entity.DetailSalePrice], "precio promocional capturado")
}

// Escenario clave: la salida valida contra la ubicación pedida, no contra el
// total. Con 7 en bodega y 5 en sala, sacar 6 de la sala debe fallar sin
// escribir nada.
func TestConsume_UbicacionInsuficiente_NiRegistroNiLedger(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 7, 5)

	_, err := engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "p1",
		Location:  entity.LocationStore,
		Qty:       6,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStockOperation)

	p, _ := productRepo.GetByID("p1")
	assert.Equal(t, int64(5), p.Stock.Store, "el registro no cambió")
	assert.Empty(t, eventRepo.events, "el ledger no registró nada")
}

func TestConsume_ProductoInexistente(t *testing.T) {
	engine, _, _, _ := newEngine(t)

	_, err := engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "nope", Location: entity.LocationStore, Qty: 1,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestMoveStock_TotalIntactoChangeCero(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 10, 2)

	p, err := engine.MoveStock(context.Background(), companyID, actorID, "p1", entity.LocationGodown, entity.LocationStore, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.Stock.Godown)
	assert.Equal(t, int64(6), p.Stock.Store)
	assert.Equal(t, int64(12), p.Stock.Total())

	ev := eventRepo.events[0]
	assert.Equal(t, entity.ActionMove, ev.Action)
	assert.Equal(t, int64(0), ev.Change, "un traslado no cambia el total")
	assert.Equal(t, int64(10), *ev.QuantityBefore, "before/after del origen")
	assert.Equal(t, int64(6), *ev.QuantityAfter)
	assert.Equal(t, entity.LocationGodown, ev.Details[entity.DetailFrom])
	assert.Equal(t, entity.LocationStore, ev.Details[entity.DetailTo])
}

// Round trip: entrada y traslado deben dejar el ledger reproducible.
func TestRestockYMove_RoundTripConsistente(t *testing.T) {
	engine, productRepo, _, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 0)

	_, err := engine.CreateStock(context.Background(), companyID, actorID, "p1", 20, 0)
	require.NoError(t, err)
	_, err = engine.Restock(context.Background(), companyID, actorID, "p1", entity.LocationGodown, 10)
	require.NoError(t, err)
	_, err = engine.MoveStock(context.Background(), companyID, actorID, "p1", entity.LocationGodown, entity.LocationStore, 12)
	require.NoError(t, err)
	_, err = engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{ProductID: "p1", Location: entity.LocationStore, Qty: 5})
	require.NoError(t, err)

	result, err := engine.RebuildFromLedger(context.Background(), companyID, "p1")
	require.NoError(t, err)
	assert.True(t, result.Consistent, "stored=%+v derived=%+v", result.Stored, result.Derived)
	assert.Equal(t, int64(18), result.Derived.Godown)
	assert.Equal(t, int64(7), result.Derived.Store)
}

// ──────────────────────────────────────────────────────────────────────────────
// BulkReduce — líneas independientes
// ──────────────────────────────────────────────────────────────────────────────

func TestBulkReduce_LineaFallidaNoRevierteLasDemas(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 10)
	seedProduct(t, productRepo, "p2", 0, 2)
	seedProduct(t, productRepo, "p3", 0, 10)

	results := engine.BulkReduce(context.Background(), companyID, actorID, []stock.ConsumeInput{
		{ProductID: "p1", Location: entity.LocationStore, Qty: 4},
		{ProductID: "p2", Location: entity.LocationStore, Qty: 5}, // insuficiente
		{ProductID: "p3", Location: entity.LocationStore, Qty: 1},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, domain.ErrInvalidStockOperation)
	assert.NoError(t, results[2].Err, "la línea posterior a la fallida se aplica igual")

	p1, _ := productRepo.GetByID("p1")
	p2, _ := productRepo.GetByID("p2")
	p3, _ := productRepo.GetByID("p3")
	assert.Equal(t, int64(6), p1.Stock.Store)
	assert.Equal(t, int64(2), p2.Stock.Store, "la línea fallida no tocó el registro")
	assert.Equal(t, int64(9), p3.Stock.Store)

	// Solo las líneas aplicadas dejan BULK_REDUCE en el ledger
	require.Len(t, eventRepo.events, 2)
	for _, ev := range eventRepo.events {
		assert.Equal(t, entity.ActionBulkReduce, ev.Action)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ChangePrice
// ──────────────────────────────────────────────────────────────────────────────

func TestChangePrice_EmitePriceChangeConAmbosPrecios(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 5, 0)

	p, err := engine.ChangePrice(context.Background(), companyID, actorID, "p1", decimal.NewFromInt(120))
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(120)))

	ev := eventRepo.events[0]
	assert.Equal(t, entity.ActionPriceChange, ev.Action)
	assert.Equal(t, int64(0), ev.Change, "un cambio de precio no mueve stock")
	assert.Equal(t, "100", ev.Details[entity.DetailOldPrice])
	assert.Equal(t, "120", ev.Details[entity.DetailNewPrice])
	assert.Nil(t, ev.QuantityBefore)
	assert.Nil(t, ev.QuantityAfter)
}

func TestChangePrice_Negativo_Falla(t *testing.T) {
	engine, productRepo, _, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 5, 0)

	_, err := engine.ChangePrice(context.Background(), companyID, actorID, "p1", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reserve / Release — sin entrada en el ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestReserveYRelease_NoTocanElLedger(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 10, 0)

	p, err := engine.Reserve(context.Background(), companyID, "p1", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.Stock.Reserved)
	assert.Equal(t, int64(4), p.Stock.Available())
	assert.Equal(t, int64(10), p.Stock.Total(), "la reserva no cambia el total")

	_, err = engine.Reserve(context.Background(), companyID, "p1", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidStockOperation, "disponible=4 < 5")

	p, err = engine.Release(context.Background(), companyID, "p1", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Stock.Reserved)

	assert.Empty(t, eventRepo.events, "las reservas no son eventos del ledger")

	stored, _ := productRepo.GetByID("p1")
	assert.Equal(t, int64(0), stored.Stock.Reserved, "la liberación quedó persistida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reverse
// ──────────────────────────────────────────────────────────────────────────────

func TestReverse_DeshaceUnReduce(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 10)

	_, err := engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "p1", Location: entity.LocationStore, Qty: 4,
	})
	require.NoError(t, err)
	eventID := eventRepo.events[0].ID

	p, err := engine.Reverse(context.Background(), companyID, actorID, eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock.Store, "la reversión restaura la cantidad")

	ev, _ := eventRepo.GetByID(eventID)
	assert.True(t, ev.Reversed, "la entrada original queda marcada, no borrada")
	assert.Len(t, eventRepo.events, 1, "la reversión no agrega una entrada nueva")
}

func TestReverse_DobleReversion_Conflicto(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 10)

	_, err := engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "p1", Location: entity.LocationStore, Qty: 4,
	})
	require.NoError(t, err)
	eventID := eventRepo.events[0].ID

	_, err = engine.Reverse(context.Background(), companyID, actorID, eventID)
	require.NoError(t, err)

	_, err = engine.Reverse(context.Background(), companyID, actorID, eventID)
	assert.ErrorIs(t, err, domain.ErrReversalConflict)

	p, _ := productRepo.GetByID("p1")
	assert.Equal(t, int64(10), p.Stock.Store, "la segunda reversión no duplicó el efecto")
}

func TestReverse_EventoInexistente(t *testing.T) {
	engine, _, _, _ := newEngine(t)

	_, err := engine.Reverse(context.Background(), companyID, actorID, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReverse_Move_InvierteElTraslado(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 10, 0)

	_, err := engine.MoveStock(context.Background(), companyID, actorID, "p1", entity.LocationGodown, entity.LocationStore, 4)
	require.NoError(t, err)

	_, err = engine.Reverse(context.Background(), companyID, actorID, eventRepo.events[0].ID)
	require.NoError(t, err)

	p, _ := productRepo.GetByID("p1")
	assert.Equal(t, int64(10), p.Stock.Godown)
	assert.Equal(t, int64(0), p.Stock.Store)
}

func TestReverse_PriceChange_RestauraElPrecio(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 5, 0)

	_, err := engine.ChangePrice(context.Background(), companyID, actorID, "p1", decimal.NewFromInt(150))
	require.NoError(t, err)

	_, err = engine.Reverse(context.Background(), companyID, actorID, eventRepo.events[0].ID)
	require.NoError(t, err)

	p, _ := productRepo.GetByID("p1")
	assert.True(t, p.Price.Equal(decimal.NewFromInt(100)), "precio restaurado: %s", p.Price)
}

// ──────────────────────────────────────────────────────────────────────────────
// RebuildFromLedger — el registro es una caché del ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestRebuild_IgnoraEventosRevertidos(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 0)

	_, err := engine.CreateStock(context.Background(), companyID, actorID, "p1", 10, 0)
	require.NoError(t, err)
	_, err = engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "p1", Location: entity.LocationGodown, Qty: 3,
	})
	require.NoError(t, err)
	_, err = engine.Reverse(context.Background(), companyID, actorID, eventRepo.events[1].ID)
	require.NoError(t, err)

	result, err := engine.RebuildFromLedger(context.Background(), companyID, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Derived.Godown, "el REDUCE revertido no cuenta")
	assert.True(t, result.Consistent)
}

func TestRebuild_DetectaInconsistencia(t *testing.T) {
	engine, productRepo, _, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 0)

	_, err := engine.CreateStock(context.Background(), companyID, actorID, "p1", 10, 0)
	require.NoError(t, err)

	// Corrupción directa del registro, por fuera del motor
	require.NoError(t, productRepo.UpdateStock("p1", entity.StockRecord{Godown: 99}))

	result, err := engine.RebuildFromLedger(context.Background(), companyID, "p1")
	require.NoError(t, err)
	assert.False(t, result.Consistent)
	assert.Equal(t, int64(10), result.Derived.Godown)
	assert.Equal(t, int64(99), result.Stored.Godown)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento entre tenants
// ──────────────────────────────────────────────────────────────────────────────

// seedForeignProduct siembra un producto de otra empresa.
func seedForeignProduct(t *testing.T, repo *fakeProductRepo, id string, godown, store int64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:        id,
		CompanyID: "otra-empresa",
		SKU:       "SKU-" + id,
		Name:      "Producto ajeno " + id,
		Price:     decimal.NewFromInt(100),
		Stock:     entity.StockRecord{Godown: godown, Store: store},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(p))
	return p
}

// Un producto de otra empresa se responde como inexistente y la mutación no
// deja rastro ni en el registro ni en el ledger.
func TestConsume_ProductoDeOtraEmpresa_NotFound(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedForeignProduct(t, productRepo, "ajeno", 0, 50)

	_, err := engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "ajeno", Location: entity.LocationStore, Qty: 30,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	p, _ := productRepo.GetByID("ajeno")
	assert.Equal(t, int64(50), p.Stock.Store, "el stock del otro tenant quedó intacto")
	assert.Empty(t, eventRepo.events)
}

func TestRestock_ProductoDeOtraEmpresa_NotFound(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedForeignProduct(t, productRepo, "ajeno", 10, 0)

	_, err := engine.Restock(context.Background(), companyID, actorID, "ajeno", entity.LocationGodown, 5)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Empty(t, eventRepo.events)
}

func TestChangePrice_ProductoDeOtraEmpresa_NotFound(t *testing.T) {
	engine, productRepo, _, _ := newEngine(t)
	seedForeignProduct(t, productRepo, "ajeno", 5, 0)

	_, err := engine.ChangePrice(context.Background(), companyID, actorID, "ajeno", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	p, _ := productRepo.GetByID("ajeno")
	assert.True(t, p.Price.Equal(decimal.NewFromInt(100)), "el precio del otro tenant no cambió")
}

func TestReverse_EventoDeOtraEmpresa_NotFound(t *testing.T) {
	engine, productRepo, eventRepo, _ := newEngine(t)
	seedProduct(t, productRepo, "p1", 0, 10)

	_, err := engine.Consume(context.Background(), companyID, actorID, stock.ConsumeInput{
		ProductID: "p1", Location: entity.LocationStore, Qty: 4,
	})
	require.NoError(t, err)
	eventID := eventRepo.events[0].ID

	_, err = engine.Reverse(context.Background(), "otra-empresa", actorID, eventID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el evento de otro tenant se responde como inexistente")

	ev, _ := eventRepo.GetByID(eventID)
	assert.False(t, ev.Reversed, "la entrada no fue tocada")
}

func TestRebuild_ProductoDeOtraEmpresa_NotFound(t *testing.T) {
	engine, productRepo, _, _ := newEngine(t)
	seedForeignProduct(t, productRepo, "ajeno", 10, 0)

	_, err := engine.RebuildFromLedger(context.Background(), companyID, "ajeno")
	assert.ErrorIs(t, err, domain.ErrProductNotFound, "el rebuild no expone el stock de otro tenant")
}
