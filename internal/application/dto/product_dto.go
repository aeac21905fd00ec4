package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products. El reparto inicial de
// stock entre ubicaciones es opcional: si no se indica, todo va a la bodega.
type CreateProductRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	CategoryID        string          `json:"category_id,omitempty"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	InitialGodown     int64           `json:"initial_godown"`
	InitialStore      int64           `json:"initial_store"`
}

// UpdateProductRequest body para PUT /api/products/:id. Precio y stock no se
// tocan por acá: precio vía ChangePrice (queda en el ledger), stock vía el
// motor de mutaciones.
type UpdateProductRequest struct {
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	CategoryID        string     `json:"category_id,omitempty"`
	LowStockThreshold int64      `json:"low_stock_threshold"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty"`
}

// ProductResponse un producto en respuestas, con su stock embebido.
type ProductResponse struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	CategoryID        string          `json:"category_id,omitempty"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	Stock             StockRecordDTO  `json:"stock"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreateCategoryRequest body para POST /api/categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CategoryResponse una categoría en respuestas.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
