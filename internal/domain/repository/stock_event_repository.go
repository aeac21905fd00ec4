package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// StockEventFilter filtro de consultas de rango sobre el ledger.
// Cero valores = sin filtro. IncludeReversed en false es el filtro estándar
// que usan todas las lecturas de analítica.
type StockEventFilter struct {
	ProductID       string
	Actions         []string
	From            *time.Time
	To              *time.Time
	IncludeReversed bool
	Limit           int
	Offset          int
}

// StockEventRepository define el puerto del ledger append-only.
// Orden global: timestamp, desempatado por la secuencia de inserción.
// Ninguna entrada se edita salvo el toggle de reversed; ninguna se borra.
type StockEventRepository interface {
	Create(event *entity.StockEvent) error
	GetByID(id string) (*entity.StockEvent, error)
	List(ctx context.Context, companyID string, filter StockEventFilter) ([]*entity.StockEvent, error)
	// MarkReversed marca el evento como revertido. Devuelve ErrReversalConflict
	// si ya lo estaba (guard atómico en la misma sentencia).
	MarkReversed(id string) error
}
