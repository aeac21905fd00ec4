package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo con su StockRecord embebido.
// El StockRecord solo lo modifica el motor de mutaciones; el resto del sistema
// lo lee. Categoría siempre como referencia tipada (CategoryID), nunca como
// nombre suelto.
type Product struct {
	ID                string
	CompanyID         string
	SKU               string // código único por empresa
	Name              string
	Description       string
	Price             decimal.Decimal // precio de lista
	CategoryID        string          // vacío si no tiene categoría
	LowStockThreshold int64
	ExpirationDate    *time.Time // nil si el producto no vence
	Stock             StockRecord
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOutOfStock indica stock total agotado.
func (p *Product) IsOutOfStock() bool {
	return p.Stock.Total() == 0
}

// IsLowStock indica total en o por debajo del umbral (sin estar agotado,
// ese caso lo cubre IsOutOfStock).
func (p *Product) IsLowStock() bool {
	total := p.Stock.Total()
	return total > 0 && total <= p.LowStockThreshold
}

// DaysToExpiry devuelve los días hasta el vencimiento (cero o negativo si ya
// venció). Una fracción de día restante cuenta como día completo: un producto
// que vence en horas sigue siendo "por vencer", no vencido. ok es false si el
// producto no tiene fecha de vencimiento.
func (p *Product) DaysToExpiry(now time.Time) (days int, ok bool) {
	if p.ExpirationDate == nil {
		return 0, false
	}
	remaining := p.ExpirationDate.Sub(now)
	if remaining <= 0 {
		return int(remaining.Hours() / 24), true
	}
	return int(math.Ceil(remaining.Hours() / 24)), true
}

// IsExpired indica si el producto ya venció.
func (p *Product) IsExpired(now time.Time) bool {
	days, ok := p.DaysToExpiry(now)
	return ok && days <= 0
}

// IsExpiringSoon indica vencimiento dentro de windowDays (sin estar vencido).
func (p *Product) IsExpiringSoon(now time.Time, windowDays int) bool {
	days, ok := p.DaysToExpiry(now)
	return ok && days > 0 && days <= windowDays
}
