package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AlertFilter filtro para listar alertas de un tenant.
type AlertFilter struct {
	ProductID      string
	Kind           string
	UnresolvedOnly bool
	UnreadOnly     bool
	Limit          int
	Offset         int
}

// AlertRepository define el puerto de persistencia de alertas (por tenant).
type AlertRepository interface {
	Create(alert *entity.Alert) error
	GetByID(id string) (*entity.Alert, error)
	// FindOpen devuelve la alerta sin resolver de (producto, tipo), o nil.
	// Es la consulta de deduplicación del evaluador.
	FindOpen(productID, kind string) (*entity.Alert, error)
	List(ctx context.Context, companyID string, filter AlertFilter) ([]*entity.Alert, error)
	MarkRead(id, companyID string) error
	Resolve(id, companyID string) error
}
