package stock

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la actualización del StockRecord
// y el append al ledger se confirmen o reviertan como unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		eventRepo repository.StockEventRepository,
	) error) error
}

// AlertNotifier re-evalúa las alertas de un producto tras una mutación
// confirmada. Es best-effort: un fallo aquí no revierte la mutación.
type AlertNotifier interface {
	EvaluateStock(ctx context.Context, product *entity.Product) error
}

// Metrics contador de mutaciones aplicadas (implementado en infrastructure/metrics).
type Metrics interface {
	MutationApplied(action string)
}
