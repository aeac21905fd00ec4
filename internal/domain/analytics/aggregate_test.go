package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain/analytics"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func i64(v int64) *int64 { return &v }

func saleEvent(productID string, before, after int64, ts time.Time) *entity.StockEvent {
	return &entity.StockEvent{
		ID:             productID + ts.String(),
		ProductID:      productID,
		Action:         entity.ActionReduce,
		QuantityBefore: i64(before),
		QuantityAfter:  i64(after),
		Change:         after - before,
		Timestamp:      ts,
	}
}

func legacySaleEvent(productID string, ts time.Time) *entity.StockEvent {
	// Evento histórico sin before/after: el agregador infiere 1 unidad.
	return &entity.StockEvent{
		ProductID: productID,
		Action:    entity.ActionReduce,
		Timestamp: ts,
	}
}

func productMap(products ...*entity.Product) map[string]*entity.Product {
	m := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

var baseTime = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// UnitsSold y Summarize
// ──────────────────────────────────────────────────────────────────────────────

func TestUnitsSold_BeforeAfterPresentes(t *testing.T) {
	e := saleEvent("p1", 10, 7, baseTime)
	assert.Equal(t, int64(3), analytics.UnitsSold(e))
}

func TestUnitsSold_FallbackLegado(t *testing.T) {
	e := legacySaleEvent("p1", baseTime)
	assert.Equal(t, int64(1), analytics.UnitsSold(e),
		"sin before/after se infiere exactamente 1 unidad")
}

func TestSummarize_AcumulaVentas(t *testing.T) {
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(100)})
	events := []*entity.StockEvent{
		saleEvent("p1", 10, 7, baseTime),               // 3 unidades
		saleEvent("p1", 7, 6, baseTime.Add(time.Hour)), // 1 unidad
		legacySaleEvent("p1", baseTime.Add(2*time.Hour)),
	}

	tot := analytics.Summarize(events, products)
	assert.Equal(t, int64(5), tot.Units)
	assert.True(t, tot.Revenue.Equal(decimal.NewFromInt(500)), "5 x 100 = %s", tot.Revenue)
	assert.Equal(t, 3, tot.Transactions)
}

func TestSummarize_IgnoraRevertidosYOtrasAcciones(t *testing.T) {
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(100)})
	revertido := saleEvent("p1", 10, 5, baseTime)
	revertido.Reversed = true
	events := []*entity.StockEvent{
		revertido,
		{ProductID: "p1", Action: entity.ActionIncrease, QuantityBefore: i64(0), QuantityAfter: i64(9), Timestamp: baseTime},
		{ProductID: "p1", Action: entity.ActionMove, QuantityBefore: i64(9), QuantityAfter: i64(4), Timestamp: baseTime},
	}

	tot := analytics.Summarize(events, products)
	assert.Equal(t, int64(0), tot.Units, "revertidos, entradas y traslados no son ventas")
	assert.Equal(t, 0, tot.Transactions)
}

func TestSummarize_VentanaVacia_Ceros(t *testing.T) {
	tot := analytics.Summarize(nil, nil)
	assert.Equal(t, int64(0), tot.Units)
	assert.True(t, tot.Revenue.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// GroupSales
// ──────────────────────────────────────────────────────────────────────────────

func TestGroupSales_PorDia_Cronologico(t *testing.T) {
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(10)})
	events := []*entity.StockEvent{
		saleEvent("p1", 10, 8, baseTime.AddDate(0, 0, 1)), // 2 ago
		saleEvent("p1", 8, 7, baseTime),                   // 1 ago
		saleEvent("p1", 7, 4, baseTime.AddDate(0, 0, 1)),  // 2 ago
	}

	buckets := analytics.GroupSales(events, products, analytics.GroupDay)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2026-08-01", buckets[0].Key)
	assert.Equal(t, int64(1), buckets[0].Units)
	assert.Equal(t, "2026-08-02", buckets[1].Key)
	assert.Equal(t, int64(5), buckets[1].Units)
}

func TestGroupSales_PorCategoria_RevenueDescendente(t *testing.T) {
	products := productMap(
		&entity.Product{ID: "p1", Price: decimal.NewFromInt(10), CategoryID: "cat-a"},
		&entity.Product{ID: "p2", Price: decimal.NewFromInt(50), CategoryID: "cat-b"},
		&entity.Product{ID: "p3", Price: decimal.NewFromInt(5)}, // sin categoría
	)
	events := []*entity.StockEvent{
		saleEvent("p1", 10, 8, baseTime), // cat-a: 20
		saleEvent("p2", 5, 3, baseTime),  // cat-b: 100
		saleEvent("p3", 4, 3, baseTime),  // sin-categoria: 5
	}

	buckets := analytics.GroupSales(events, products, analytics.GroupCategory)
	require.Len(t, buckets, 3)
	assert.Equal(t, "cat-b", buckets[0].Key)
	assert.Equal(t, "cat-a", buckets[1].Key)
	assert.Equal(t, "sin-categoria", buckets[2].Key)
}

func TestGroupSales_PorSemana(t *testing.T) {
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(10)})
	events := []*entity.StockEvent{saleEvent("p1", 3, 2, baseTime)}

	buckets := analytics.GroupSales(events, products, analytics.GroupWeek)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2026-W31", buckets[0].Key, "clave ISO año-semana")
	assert.Equal(t, int64(1), buckets[0].Units)
}

// ──────────────────────────────────────────────────────────────────────────────
// TopProducts y CategoryPerformance
// ──────────────────────────────────────────────────────────────────────────────

func TestTopProducts_OrdenPorUnidadesYCorte(t *testing.T) {
	products := productMap(
		&entity.Product{ID: "p1", SKU: "SKU1", Name: "Uno", Price: decimal.NewFromInt(10)},
		&entity.Product{ID: "p2", SKU: "SKU2", Name: "Dos", Price: decimal.NewFromInt(10)},
		&entity.Product{ID: "p3", SKU: "SKU3", Name: "Tres", Price: decimal.NewFromInt(10)},
	)
	events := []*entity.StockEvent{
		saleEvent("p1", 10, 9, baseTime), // 1
		saleEvent("p2", 10, 4, baseTime), // 6
		saleEvent("p3", 10, 7, baseTime), // 3
	}

	top := analytics.TopProducts(events, products, 2)
	require.Len(t, top, 2, "corte top-n")
	assert.Equal(t, "p2", top[0].ProductID)
	assert.Equal(t, int64(6), top[0].Units)
	assert.Equal(t, "SKU2", top[0].SKU)
	assert.Equal(t, "p3", top[1].ProductID)
}

func TestCategoryPerformance_AgrupaYOrdena(t *testing.T) {
	products := productMap(
		&entity.Product{ID: "p1", Price: decimal.NewFromInt(10), CategoryID: "cat-a"},
		&entity.Product{ID: "p2", Price: decimal.NewFromInt(100), CategoryID: "cat-b"},
	)
	events := []*entity.StockEvent{
		saleEvent("p1", 10, 5, baseTime), // cat-a: 50
		saleEvent("p2", 10, 9, baseTime), // cat-b: 100
	}

	rows := analytics.CategoryPerformance(events, products, 0)
	require.Len(t, rows, 2)
	assert.Equal(t, "cat-b", rows[0].CategoryID)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "cat-a", rows[1].CategoryID)
}

// ──────────────────────────────────────────────────────────────────────────────
// StockAdded
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAdded_AcumulaEntradas(t *testing.T) {
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(10)})
	events := []*entity.StockEvent{
		{ProductID: "p1", Action: entity.ActionCreate, QuantityBefore: i64(0), QuantityAfter: i64(20), Timestamp: baseTime},
		{ProductID: "p1", Action: entity.ActionIncrease, QuantityBefore: i64(20), QuantityAfter: i64(25), Timestamp: baseTime},
		saleEvent("p1", 25, 20, baseTime), // las ventas no cuentan acá
	}

	added := analytics.StockAdded(events, products)
	assert.Equal(t, int64(25), added.Units)
	assert.Equal(t, 2, added.Entries)
	assert.True(t, added.Cost.Equal(decimal.NewFromInt(250)))
}

// ──────────────────────────────────────────────────────────────────────────────
// PromotionImpact
// ──────────────────────────────────────────────────────────────────────────────

func TestPromotionImpact_Particiona(t *testing.T) {
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(100)})

	promo := saleEvent("p1", 10, 8, baseTime) // 2 unidades a 80
	promo.Details = map[string]any{entity.DetailSalePrice: "80"}
	normal := saleEvent("p1", 8, 7, baseTime) // 1 unidad a lista

	impact := analytics.PromotionImpact([]*entity.StockEvent{promo, normal}, products)

	assert.Equal(t, int64(2), impact.Promo.Units)
	assert.True(t, impact.Promo.Revenue.Equal(decimal.NewFromInt(160)),
		"la partición promo se valora al precio de venta capturado: %s", impact.Promo.Revenue)
	assert.Equal(t, int64(1), impact.Normal.Units)
	assert.True(t, impact.Normal.Revenue.Equal(decimal.NewFromInt(100)))
}

func TestPromotionImpact_SalePriceIgualALista_NoEsPromo(t *testing.T) {
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(100)})
	e := saleEvent("p1", 5, 4, baseTime)
	e.Details = map[string]any{entity.DetailSalePrice: "100"}

	impact := analytics.PromotionImpact([]*entity.StockEvent{e}, products)
	assert.Equal(t, int64(0), impact.Promo.Units, "promoción exige precio estrictamente menor")
	assert.Equal(t, int64(1), impact.Normal.Units)
}

func TestPromotionImpact_SalePriceComoFloat(t *testing.T) {
	// Los details llegan como float64 cuando vienen de jsonb.
	products := productMap(&entity.Product{ID: "p1", Price: decimal.NewFromInt(100)})
	e := saleEvent("p1", 5, 4, baseTime)
	e.Details = map[string]any{entity.DetailSalePrice: float64(75)}

	impact := analytics.PromotionImpact([]*entity.StockEvent{e}, products)
	assert.Equal(t, int64(1), impact.Promo.Units)
	assert.True(t, impact.Promo.Revenue.Equal(decimal.NewFromInt(75)))
}

// ──────────────────────────────────────────────────────────────────────────────
// PriceChanges
// ──────────────────────────────────────────────────────────────────────────────

func TestPriceChanges_HistorialYRecientes(t *testing.T) {
	mk := func(old, new string, ts time.Time) *entity.StockEvent {
		return &entity.StockEvent{
			Action:    entity.ActionPriceChange,
			Timestamp: ts,
			Details: map[string]any{
				entity.DetailOldPrice: old,
				entity.DetailNewPrice: new,
			},
		}
	}
	events := []*entity.StockEvent{
		mk("100", "120", baseTime),
		mk("120", "90", baseTime.Add(time.Hour)),
		mk("90", "100", baseTime.Add(2*time.Hour)),
	}

	total, recent := analytics.PriceChanges(events, 2)
	assert.Equal(t, 3, total)
	require.Len(t, recent, 2, "solo los n más recientes")

	// Del más nuevo al más viejo
	assert.True(t, recent[0].NewPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, recent[1].Delta.Equal(decimal.NewFromInt(-30)), "delta firmado")
	assert.True(t, recent[1].PercentChg.Equal(decimal.NewFromInt(-25)), "-30/120 = -25%%")
}

func TestPriceChanges_OldPriceCero_SinPorcentaje(t *testing.T) {
	e := &entity.StockEvent{
		Action:    entity.ActionPriceChange,
		Timestamp: baseTime,
		Details: map[string]any{
			entity.DetailOldPrice: "0",
			entity.DetailNewPrice: "50",
		},
	}

	_, recent := analytics.PriceChanges([]*entity.StockEvent{e}, 0)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].PercentChg.IsZero(), "sin precio base no hay porcentaje")
}
