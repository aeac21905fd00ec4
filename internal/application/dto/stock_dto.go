package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecordDTO estado actual de cantidades de un producto.
type StockRecordDTO struct {
	Godown    int64 `json:"godown"`
	Store     int64 `json:"store"`
	Reserved  int64 `json:"reserved"`
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
}

// RestockRequest body para POST /api/stock/:productId/restock.
type RestockRequest struct {
	Location string `json:"location"` // GODOWN | STORE
	Qty      int64  `json:"qty"`
}

// ConsumeRequest body para POST /api/stock/:productId/consume.
type ConsumeRequest struct {
	Location  string           `json:"location"`
	Qty       int64            `json:"qty"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"` // precio efectivo si hubo promoción
}

// MoveStockRequest body para POST /api/stock/:productId/move.
type MoveStockRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Qty  int64  `json:"qty"`
}

// BulkReduceLineRequest una línea de POST /api/stock/bulk-reduce.
type BulkReduceLineRequest struct {
	ProductID string           `json:"product_id"`
	Location  string           `json:"location"`
	Qty       int64            `json:"qty"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
}

// BulkReduceResultDTO resultado por línea (las líneas son independientes).
type BulkReduceResultDTO struct {
	ProductID string `json:"product_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// ReservationRequest body para reserve/release.
type ReservationRequest struct {
	Qty int64 `json:"qty"`
}

// ChangePriceRequest body para POST /api/stock/:productId/price.
type ChangePriceRequest struct {
	NewPrice decimal.Decimal `json:"new_price"`
}

// StockEventDTO una entrada del ledger en respuestas.
type StockEventDTO struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"product_id"`
	Action         string         `json:"action"`
	QuantityBefore *int64         `json:"quantity_before,omitempty"`
	QuantityAfter  *int64         `json:"quantity_after,omitempty"`
	Change         int64          `json:"change"`
	Reversed       bool           `json:"reversed"`
	Timestamp      time.Time      `json:"timestamp"`
	ActorID        string         `json:"actor_id"`
	Details        map[string]any `json:"details,omitempty"`
}

// RebuildResultDTO respuesta de la verificación de auditoría del ledger.
type RebuildResultDTO struct {
	Stored     StockRecordDTO `json:"stored"`
	Derived    StockRecordDTO `json:"derived"`
	Consistent bool           `json:"consistent"`
}
