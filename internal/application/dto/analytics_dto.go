package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsQuery parámetros comunes de las consultas de analítica.
type AnalyticsQuery struct {
	From    *time.Time `query:"from"`
	To      *time.Time `query:"to"`
	GroupBy string     `query:"group_by"` // "", product, category, hour, day, week, month
	TopN    int        `query:"top_n"`
}

// SalesTotalsDTO acumulado de una ventana o bucket.
type SalesTotalsDTO struct {
	Units        int64           `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

// SalesBucketDTO acumulado etiquetado por clave de agrupación.
type SalesBucketDTO struct {
	Key string `json:"key"`
	SalesTotalsDTO
}

// SalesReportDTO respuesta del resumen de ventas.
type SalesReportDTO struct {
	Totals  SalesTotalsDTO   `json:"totals"`
	Buckets []SalesBucketDTO `json:"buckets,omitempty"`
}

// TopProductDTO fila del ranking de productos.
type TopProductDTO struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CategorySalesDTO fila del rendimiento por categoría.
type CategorySalesDTO struct {
	CategoryID string          `json:"category_id"`
	Units      int64           `json:"units"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// StockAddedDTO acumulado de entradas de stock en la ventana.
type StockAddedDTO struct {
	Units   int64           `json:"units"`
	Cost    decimal.Decimal `json:"cost"`
	Entries int             `json:"entries"`
}

// PromoImpactDTO ventas particionadas promoción vs precio de lista.
type PromoImpactDTO struct {
	Promo  SalesTotalsDTO `json:"promo"`
	Normal SalesTotalsDTO `json:"normal"`
}

// PriceChangeDTO un cambio de precio del historial.
type PriceChangeDTO struct {
	Timestamp  time.Time       `json:"timestamp"`
	OldPrice   decimal.Decimal `json:"old_price"`
	NewPrice   decimal.Decimal `json:"new_price"`
	Delta      decimal.Decimal `json:"delta"`
	PercentChg decimal.Decimal `json:"percent_change"`
}

// PriceHistoryDTO respuesta del historial de precios de un producto.
type PriceHistoryDTO struct {
	Total  int              `json:"total"`
	Recent []PriceChangeDTO `json:"recent,omitempty"`
}
