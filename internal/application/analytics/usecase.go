// Package analytics contiene el agregador de analítica: consultas de solo
// lectura que re-escanean el tramo relevante del ledger en cada llamada.
// No hay vista materializada ni caché: se paga el recómputo a cambio de
// frescura garantizada.
package analytics

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	domainanalytics "github.com/jhoicas/Almacen-api/internal/domain/analytics"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Metrics contador de consultas servidas (implementado en infrastructure/metrics).
type Metrics interface {
	QueryServed(report string)
}

// AggregatorUseCase orquesta las consultas: trae el tramo de ledger no
// revertido más los metadatos de producto y delega la agregación en las
// funciones puras de domain/analytics. Nunca muta estado; una ventana vacía
// responde ceros, no error.
type AggregatorUseCase struct {
	eventRepo   repository.StockEventRepository
	productRepo repository.ProductRepository
	metrics     Metrics
}

// NewAggregatorUseCase construye el agregador. metrics puede ser nil.
func NewAggregatorUseCase(
	eventRepo repository.StockEventRepository,
	productRepo repository.ProductRepository,
	metrics Metrics,
) *AggregatorUseCase {
	return &AggregatorUseCase{eventRepo: eventRepo, productRepo: productRepo, metrics: metrics}
}

// SalesReport resumen de ventas inferidas en la ventana, con agrupación opcional.
func (uc *AggregatorUseCase) SalesReport(ctx context.Context, companyID string, q dto.AnalyticsQuery) (*dto.SalesReportDTO, error) {
	events, products, err := uc.fetch(ctx, companyID, q, entity.ActionReduce, entity.ActionBulkReduce)
	if err != nil {
		return nil, err
	}
	uc.served("sales")

	out := &dto.SalesReportDTO{Totals: toTotalsDTO(domainanalytics.Summarize(events, products))}
	if q.GroupBy != domainanalytics.GroupNone {
		for _, b := range domainanalytics.GroupSales(events, products, q.GroupBy) {
			out.Buckets = append(out.Buckets, dto.SalesBucketDTO{Key: b.Key, SalesTotalsDTO: toTotalsDTO(b.SalesTotals)})
		}
	}
	return out, nil
}

// TopProducts ranking por unidades vendidas descendente.
func (uc *AggregatorUseCase) TopProducts(ctx context.Context, companyID string, q dto.AnalyticsQuery) ([]dto.TopProductDTO, error) {
	events, products, err := uc.fetch(ctx, companyID, q, entity.ActionReduce, entity.ActionBulkReduce)
	if err != nil {
		return nil, err
	}
	uc.served("top_products")

	rows := domainanalytics.TopProducts(events, products, q.TopN)
	out := make([]dto.TopProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductDTO{
			ProductID: r.ProductID, SKU: r.SKU, Name: r.Name, Units: r.Units, Revenue: r.Revenue,
		})
	}
	return out, nil
}

// CategoryPerformance ventas por categoría, revenue descendente.
func (uc *AggregatorUseCase) CategoryPerformance(ctx context.Context, companyID string, q dto.AnalyticsQuery) ([]dto.CategorySalesDTO, error) {
	events, products, err := uc.fetch(ctx, companyID, q, entity.ActionReduce, entity.ActionBulkReduce)
	if err != nil {
		return nil, err
	}
	uc.served("category_performance")

	rows := domainanalytics.CategoryPerformance(events, products, q.TopN)
	out := make([]dto.CategorySalesDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CategorySalesDTO{CategoryID: r.CategoryID, Units: r.Units, Revenue: r.Revenue})
	}
	return out, nil
}

// StockAdded entradas de stock (CREATE/INCREASE) en la ventana.
func (uc *AggregatorUseCase) StockAdded(ctx context.Context, companyID string, q dto.AnalyticsQuery) (*dto.StockAddedDTO, error) {
	events, products, err := uc.fetch(ctx, companyID, q, entity.ActionCreate, entity.ActionIncrease)
	if err != nil {
		return nil, err
	}
	uc.served("stock_added")

	added := domainanalytics.StockAdded(events, products)
	return &dto.StockAddedDTO{Units: added.Units, Cost: added.Cost, Entries: added.Entries}, nil
}

// PromotionImpact ventas particionadas en promoción vs precio de lista.
func (uc *AggregatorUseCase) PromotionImpact(ctx context.Context, companyID string, q dto.AnalyticsQuery) (*dto.PromoImpactDTO, error) {
	events, products, err := uc.fetch(ctx, companyID, q, entity.ActionReduce, entity.ActionBulkReduce)
	if err != nil {
		return nil, err
	}
	uc.served("promotion_impact")

	impact := domainanalytics.PromotionImpact(events, products)
	return &dto.PromoImpactDTO{
		Promo:  toTotalsDTO(impact.Promo),
		Normal: toTotalsDTO(impact.Normal),
	}, nil
}

// PriceHistory historial de cambios de precio de un producto.
func (uc *AggregatorUseCase) PriceHistory(ctx context.Context, companyID, productID string, recentN int) (*dto.PriceHistoryDTO, error) {
	events, err := uc.eventRepo.List(ctx, companyID, repository.StockEventFilter{
		ProductID: productID,
		Actions:   []string{entity.ActionPriceChange},
	})
	if err != nil {
		return nil, err
	}
	uc.served("price_history")

	total, recent := domainanalytics.PriceChanges(events, recentN)
	out := &dto.PriceHistoryDTO{Total: total}
	for _, pc := range recent {
		out.Recent = append(out.Recent, dto.PriceChangeDTO{
			Timestamp:  pc.Timestamp,
			OldPrice:   pc.OldPrice,
			NewPrice:   pc.NewPrice,
			Delta:      pc.Delta,
			PercentChg: pc.PercentChg,
		})
	}
	return out, nil
}

// fetch trae el tramo de ledger (siempre sin revertidos) y el lookup de
// productos referenciados por esos eventos.
func (uc *AggregatorUseCase) fetch(ctx context.Context, companyID string, q dto.AnalyticsQuery, actions ...string) ([]*entity.StockEvent, map[string]*entity.Product, error) {
	events, err := uc.eventRepo.List(ctx, companyID, repository.StockEventFilter{
		Actions: actions,
		From:    q.From,
		To:      q.To,
	})
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.ProductID]; !ok {
			seen[e.ProductID] = struct{}{}
			ids = append(ids, e.ProductID)
		}
	}
	products := make(map[string]*entity.Product, len(ids))
	if len(ids) > 0 {
		list, err := uc.productRepo.ListByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range list {
			products[p.ID] = p
		}
	}
	return events, products, nil
}

func (uc *AggregatorUseCase) served(report string) {
	if uc.metrics != nil {
		uc.metrics.QueryServed(report)
	}
}

func toTotalsDTO(t domainanalytics.SalesTotals) dto.SalesTotalsDTO {
	return dto.SalesTotalsDTO{Units: t.Units, Revenue: t.Revenue, Transactions: t.Transactions}
}
