package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos.
// El StockRecord vive embebido en la fila del producto; GetForUpdate bloquea
// esa fila (SELECT FOR UPDATE) para serializar mutaciones por producto.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto dentro de la tx actual.
	GetForUpdate(id string) (*entity.Product, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// ListWithExpiration devuelve los productos con fecha de vencimiento (para el barrido).
	ListWithExpiration(ctx context.Context) ([]*entity.Product, error)
	UpdateStock(id string, stock entity.StockRecord) error
	UpdatePrice(id string, price decimal.Decimal) error
	Update(product *entity.Product) error
	// Delete elimina el producto y su stock embebido; los eventos del ledger se conservan.
	Delete(id string) error
}
