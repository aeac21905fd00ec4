package stock

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// LedgerUseCase consultas de rango sobre el ledger para la API:
// por producto, ventana de tiempo, acción y filtro de revertidos.
type LedgerUseCase struct {
	eventRepo repository.StockEventRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(eventRepo repository.StockEventRepository) *LedgerUseCase {
	return &LedgerUseCase{eventRepo: eventRepo}
}

// List devuelve las entradas que cumplen el filtro, en orden global del ledger.
func (uc *LedgerUseCase) List(ctx context.Context, companyID string, filter repository.StockEventFilter) ([]dto.StockEventDTO, error) {
	events, err := uc.eventRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e))
	}
	return out, nil
}

func toEventDTO(e *entity.StockEvent) dto.StockEventDTO {
	return dto.StockEventDTO{
		ID:             e.ID,
		ProductID:      e.ProductID,
		Action:         e.Action,
		QuantityBefore: e.QuantityBefore,
		QuantityAfter:  e.QuantityAfter,
		Change:         e.Change,
		Reversed:       e.Reversed,
		Timestamp:      e.Timestamp,
		ActorID:        e.ActorID,
		Details:        e.Details,
	}
}

// ToStockRecordDTO mapea el registro de stock con sus campos derivados.
func ToStockRecordDTO(rec entity.StockRecord) dto.StockRecordDTO {
	return dto.StockRecordDTO{
		Godown:    rec.Godown,
		Store:     rec.Store,
		Reserved:  rec.Reserved,
		Total:     rec.Total(),
		Available: rec.Available(),
	}
}
