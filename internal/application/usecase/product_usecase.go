package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	appstock "github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ProductUseCase CRUD de catálogo. El stock y el precio no se editan por acá:
// el alta siembra el StockRecord a través del motor de mutaciones (queda el
// CREATE en el ledger) y los cambios posteriores van siempre por ese motor.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	engine       *appstock.MutationEngine
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	engine *appstock.MutationEngine,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, engine: engine}
}

// Create crea el producto y siembra su stock inicial. Si no se indica reparto,
// todo el stock inicial entra a la bodega.
func (uc *ProductUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialGodown < 0 || in.InitialStore < 0 || in.LowStockThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCompanyAndSKU(companyID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.CategoryID != "" {
		cat, err := uc.categoryRepo.GetByID(in.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil || cat.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		SKU:               in.SKU,
		Name:              in.Name,
		Description:       in.Description,
		Price:             in.Price,
		CategoryID:        in.CategoryID,
		LowStockThreshold: in.LowStockThreshold,
		ExpirationDate:    in.ExpirationDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}

	// Siembra el stock inicial vía el motor para dejar el CREATE en el ledger.
	if in.InitialGodown > 0 || in.InitialStore > 0 {
		updated, err := uc.engine.CreateStock(ctx, companyID, actorID, product.ID, in.InitialGodown, in.InitialStore)
		if err != nil {
			return nil, err
		}
		product = updated
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto del tenant.
func (uc *ProductUseCase) GetByID(companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// List lista los productos del tenant.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.repo.List(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Update edita metadatos del catálogo (nunca precio ni stock).
func (uc *ProductUseCase) Update(companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrProductNotFound
	}
	if in.LowStockThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.CategoryID != "" {
		cat, err := uc.categoryRepo.GetByID(in.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil || cat.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	product.Description = in.Description
	product.CategoryID = in.CategoryID
	product.LowStockThreshold = in.LowStockThreshold
	product.ExpirationDate = in.ExpirationDate
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina el producto y su stock embebido. Las entradas del ledger que
// lo referencian se conservan para auditoría.
func (uc *ProductUseCase) Delete(companyID, id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil || product.CompanyID != companyID {
		return domain.ErrProductNotFound
	}
	return uc.repo.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                p.ID,
		CompanyID:         p.CompanyID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		CategoryID:        p.CategoryID,
		LowStockThreshold: p.LowStockThreshold,
		ExpirationDate:    p.ExpirationDate,
		Stock:             appstock.ToStockRecordDTO(p.Stock),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
