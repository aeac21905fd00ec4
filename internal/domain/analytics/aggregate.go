// Package analytics reconstruye métricas de ventas y movimientos re-escaneando
// el ledger de stock. No hay entidad de venta autoritativa: una "venta" se
// infiere de cada REDUCE/BULK_REDUCE no revertido. Todas las funciones son
// puras y de solo lectura; una ventana vacía produce resúmenes en cero, nunca error.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Agrupaciones soportadas por los resúmenes de ventas.
const (
	GroupNone     = ""
	GroupProduct  = "product"
	GroupCategory = "category"
	GroupHour     = "hour"
	GroupDay      = "day"
	GroupWeek     = "week"
	GroupMonth    = "month"
)

// SalesTotals acumulado de ventas inferidas en una ventana.
type SalesTotals struct {
	Units        int64
	Revenue      decimal.Decimal
	Transactions int
}

// Bucket es un SalesTotals etiquetado por la clave de agrupación.
type Bucket struct {
	Key string
	SalesTotals
}

// ProductSales ventas acumuladas de un producto.
type ProductSales struct {
	ProductID string
	SKU       string
	Name      string
	Units     int64
	Revenue   decimal.Decimal
}

// CategorySales ventas acumuladas de una categoría.
type CategorySales struct {
	CategoryID string
	Units      int64
	Revenue    decimal.Decimal
}

// AddedTotals acumulado de entradas de stock (CREATE/INCREASE).
type AddedTotals struct {
	Units   int64
	Cost    decimal.Decimal
	Entries int
}

// PromoImpact particiona las ventas en promoción vs precio de lista.
type PromoImpact struct {
	Promo  SalesTotals
	Normal SalesTotals
}

// PriceChange un cambio de precio leído del ledger.
type PriceChange struct {
	Timestamp  time.Time
	OldPrice   decimal.Decimal
	NewPrice   decimal.Decimal
	Delta      decimal.Decimal // firmado
	PercentChg decimal.Decimal // 0 si OldPrice es cero
}

// UnitsSold infiere las unidades vendidas de un evento de reducción:
// quantityBefore - quantityAfter cuando ambos campos existen, si no 1.
// El fallback de 1 subcuenta ventas multi-unidad registradas sin before/after;
// se conserva tal cual a falta de una definición contable upstream. El motor
// de mutaciones actual siempre captura before/after, así que solo aplica a
// datos históricos.
func UnitsSold(e *entity.StockEvent) int64 {
	if e.QuantityBefore != nil && e.QuantityAfter != nil {
		return *e.QuantityBefore - *e.QuantityAfter
	}
	return 1
}

func isSale(e *entity.StockEvent) bool {
	return !e.Reversed && (e.Action == entity.ActionReduce || e.Action == entity.ActionBulkReduce)
}

func priceOf(products map[string]*entity.Product, productID string) decimal.Decimal {
	if p, ok := products[productID]; ok {
		return p.Price
	}
	return decimal.Zero
}

// Summarize acumula ventas sobre la ventana completa (sin agrupar).
// Revenue = Σ unidades × precio de lista del producto.
func Summarize(events []*entity.StockEvent, products map[string]*entity.Product) SalesTotals {
	out := SalesTotals{Revenue: decimal.Zero}
	for _, e := range events {
		if !isSale(e) {
			continue
		}
		units := UnitsSold(e)
		out.Units += units
		out.Revenue = out.Revenue.Add(priceOf(products, e.ProductID).Mul(decimal.NewFromInt(units)))
		out.Transactions++
	}
	return out
}

// GroupSales agrupa las ventas por la clave indicada. Los buckets temporales
// salen en orden cronológico; producto y categoría en revenue descendente.
func GroupSales(events []*entity.StockEvent, products map[string]*entity.Product, groupBy string) []Bucket {
	if groupBy == GroupNone {
		return []Bucket{{Key: "total", SalesTotals: Summarize(events, products)}}
	}
	acc := make(map[string]SalesTotals)
	for _, e := range events {
		if !isSale(e) {
			continue
		}
		key := bucketKey(e, products, groupBy)
		tot, ok := acc[key]
		if !ok {
			tot = SalesTotals{Revenue: decimal.Zero}
		}
		units := UnitsSold(e)
		tot.Units += units
		tot.Revenue = tot.Revenue.Add(priceOf(products, e.ProductID).Mul(decimal.NewFromInt(units)))
		tot.Transactions++
		acc[key] = tot
	}

	buckets := make([]Bucket, 0, len(acc))
	for k, tot := range acc {
		buckets = append(buckets, Bucket{Key: k, SalesTotals: tot})
	}
	switch groupBy {
	case GroupProduct, GroupCategory:
		sort.Slice(buckets, func(i, j int) bool {
			if !buckets[i].Revenue.Equal(buckets[j].Revenue) {
				return buckets[i].Revenue.GreaterThan(buckets[j].Revenue)
			}
			return buckets[i].Key < buckets[j].Key
		})
	default:
		// claves temporales con formato lexicográficamente ordenable
		sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	}
	return buckets
}

func bucketKey(e *entity.StockEvent, products map[string]*entity.Product, groupBy string) string {
	switch groupBy {
	case GroupProduct:
		return e.ProductID
	case GroupCategory:
		if p, ok := products[e.ProductID]; ok && p.CategoryID != "" {
			return p.CategoryID
		}
		return "sin-categoria"
	case GroupHour:
		return e.Timestamp.Format("2006-01-02 15:00")
	case GroupDay:
		return e.Timestamp.Format("2006-01-02")
	case GroupWeek:
		year, week := e.Timestamp.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupMonth:
		return e.Timestamp.Format("2006-01")
	}
	return "total"
}

// TopProducts devuelve hasta n productos ordenados por unidades vendidas
// descendente (n <= 0 devuelve todos).
func TopProducts(events []*entity.StockEvent, products map[string]*entity.Product, n int) []ProductSales {
	acc := make(map[string]*ProductSales)
	for _, e := range events {
		if !isSale(e) {
			continue
		}
		ps, ok := acc[e.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: e.ProductID, Revenue: decimal.Zero}
			if p, found := products[e.ProductID]; found {
				ps.SKU = p.SKU
				ps.Name = p.Name
			}
			acc[e.ProductID] = ps
		}
		units := UnitsSold(e)
		ps.Units += units
		ps.Revenue = ps.Revenue.Add(priceOf(products, e.ProductID).Mul(decimal.NewFromInt(units)))
	}
	out := make([]ProductSales, 0, len(acc))
	for _, ps := range acc {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CategoryPerformance agrupa ventas por categoría, revenue descendente,
// con corte opcional top-n (n <= 0 devuelve todas).
func CategoryPerformance(events []*entity.StockEvent, products map[string]*entity.Product, n int) []CategorySales {
	acc := make(map[string]*CategorySales)
	for _, e := range events {
		if !isSale(e) {
			continue
		}
		key := bucketKey(e, products, GroupCategory)
		cs, ok := acc[key]
		if !ok {
			cs = &CategorySales{CategoryID: key, Revenue: decimal.Zero}
			acc[key] = cs
		}
		units := UnitsSold(e)
		cs.Units += units
		cs.Revenue = cs.Revenue.Add(priceOf(products, e.ProductID).Mul(decimal.NewFromInt(units)))
	}
	out := make([]CategorySales, 0, len(acc))
	for _, cs := range acc {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// StockAdded acumula entradas (CREATE/INCREASE no revertidos) con la misma
// regla de delta que las ventas; el costo se valora a precio de lista.
func StockAdded(events []*entity.StockEvent, products map[string]*entity.Product) AddedTotals {
	out := AddedTotals{Cost: decimal.Zero}
	for _, e := range events {
		if e.Reversed || (e.Action != entity.ActionCreate && e.Action != entity.ActionIncrease) {
			continue
		}
		var units int64
		if e.QuantityBefore != nil && e.QuantityAfter != nil {
			units = *e.QuantityAfter - *e.QuantityBefore
		} else {
			units = 1
		}
		out.Units += units
		out.Cost = out.Cost.Add(priceOf(products, e.ProductID).Mul(decimal.NewFromInt(units)))
		out.Entries++
	}
	return out
}

// PromotionImpact particiona las ventas: una entrada cuenta como promoción si
// sus details traen un precio de venta estrictamente menor al precio de lista
// del producto. La partición promo se valora al precio de venta capturado; la
// normal al precio de lista.
func PromotionImpact(events []*entity.StockEvent, products map[string]*entity.Product) PromoImpact {
	out := PromoImpact{
		Promo:  SalesTotals{Revenue: decimal.Zero},
		Normal: SalesTotals{Revenue: decimal.Zero},
	}
	for _, e := range events {
		if !isSale(e) {
			continue
		}
		units := UnitsSold(e)
		listPrice := priceOf(products, e.ProductID)

		salePrice, isPromo := promoPrice(e, listPrice)
		if isPromo {
			out.Promo.Units += units
			out.Promo.Revenue = out.Promo.Revenue.Add(salePrice.Mul(decimal.NewFromInt(units)))
			out.Promo.Transactions++
			continue
		}
		out.Normal.Units += units
		out.Normal.Revenue = out.Normal.Revenue.Add(listPrice.Mul(decimal.NewFromInt(units)))
		out.Normal.Transactions++
	}
	return out
}

// promoPrice extrae details.sale_price y decide si fue promoción.
func promoPrice(e *entity.StockEvent, listPrice decimal.Decimal) (decimal.Decimal, bool) {
	if e.Details == nil {
		return decimal.Zero, false
	}
	var sale decimal.Decimal
	switch v := e.Details[entity.DetailSalePrice].(type) {
	case float64:
		sale = decimal.NewFromFloat(v)
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		sale = parsed
	default:
		return decimal.Zero, false
	}
	return sale, sale.LessThan(listPrice)
}

// PriceChanges lee el historial de PRICE_CHANGE no revertidos. Devuelve el
// total y los n más recientes (n <= 0 devuelve todos), del más nuevo al más viejo.
func PriceChanges(events []*entity.StockEvent, n int) (total int, recent []PriceChange) {
	for _, e := range events {
		if e.Reversed || e.Action != entity.ActionPriceChange {
			continue
		}
		total++
		oldPrice := detailDecimal(e, entity.DetailOldPrice)
		newPrice := detailDecimal(e, entity.DetailNewPrice)
		pc := PriceChange{
			Timestamp: e.Timestamp,
			OldPrice:  oldPrice,
			NewPrice:  newPrice,
			Delta:     newPrice.Sub(oldPrice),
		}
		if !oldPrice.IsZero() {
			pc.PercentChg = pc.Delta.Div(oldPrice).Mul(decimal.NewFromInt(100)).Round(2)
		}
		recent = append(recent, pc)
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].Timestamp.After(recent[j].Timestamp) })
	if n > 0 && len(recent) > n {
		recent = recent[:n]
	}
	return total, recent
}

func detailDecimal(e *entity.StockEvent, key string) decimal.Decimal {
	if e.Details == nil {
		return decimal.Zero
	}
	switch v := e.Details[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}
