package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// Metrics contador de alertas creadas (implementado en infrastructure/metrics).
type Metrics interface {
	AlertCreated(kind string)
}

// Evaluator genera alertas a partir del estado del stock y los metadatos del
// producto. Corre en dos modos: síncrono tras cada mutación (umbral/agotado) y
// periódico para vencimientos, que dependen de la fecha y no de eventos.
//
// Invariante de deduplicación: mientras exista una alerta sin resolver de un
// (producto, tipo) no se crea otra igual; así las mutaciones repetidas no
// inundan de alertas.
type Evaluator struct {
	alertRepo        repository.AlertRepository
	productRepo      repository.ProductRepository
	metrics          Metrics
	log              *logger.Logger
	expiryWindowDays int
}

// NewEvaluator construye el evaluador. metrics puede ser nil.
func NewEvaluator(
	alertRepo repository.AlertRepository,
	productRepo repository.ProductRepository,
	metrics Metrics,
	log *logger.Logger,
	expiryWindowDays int,
) *Evaluator {
	if expiryWindowDays <= 0 {
		expiryWindowDays = 30
	}
	return &Evaluator{
		alertRepo:        alertRepo,
		productRepo:      productRepo,
		metrics:          metrics,
		log:              log,
		expiryWindowDays: expiryWindowDays,
	}
}

// EvaluateStock re-evalúa umbral y agotamiento de un producto tras una mutación.
func (ev *Evaluator) EvaluateStock(_ context.Context, product *entity.Product) error {
	if product == nil {
		return nil
	}
	switch {
	case product.IsOutOfStock():
		return ev.ensure(product, entity.AlertOutOfStock, entity.SeverityError,
			fmt.Sprintf("producto %s agotado", product.SKU))
	case product.IsLowStock():
		return ev.ensure(product, entity.AlertLowStock, entity.SeverityWarning,
			fmt.Sprintf("producto %s en stock bajo (%d <= umbral %d)", product.SKU, product.Stock.Total(), product.LowStockThreshold))
	}
	return nil
}

// SweepExpiry recorre los productos con fecha de vencimiento y genera alertas
// de vencido/por vencer. Un producto a <=0 días se trata como vencido, nunca
// como "por vencer".
func (ev *Evaluator) SweepExpiry(ctx context.Context) error {
	products, err := ev.productRepo.ListWithExpiration(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, p := range products {
		days, ok := p.DaysToExpiry(now)
		if !ok {
			continue
		}
		switch {
		case days <= 0:
			err = ev.ensure(p, entity.AlertExpired, entity.SeverityError,
				fmt.Sprintf("producto %s vencido", p.SKU))
		case days <= ev.expiryWindowDays:
			err = ev.ensure(p, entity.AlertExpiringSoon, entity.SeverityForExpiry(days),
				fmt.Sprintf("producto %s vence en %d días", p.SKU, days))
		default:
			continue
		}
		if err != nil && ev.log != nil {
			ev.log.Warn().Err(err).Str("product_id", p.ID).Msg("alerta de vencimiento falló; se reintenta en el próximo barrido")
		}
	}
	return nil
}

// ensure crea la alerta solo si no hay otra sin resolver del mismo (producto, tipo).
func (ev *Evaluator) ensure(product *entity.Product, kind, severity, message string) error {
	existing, err := ev.alertRepo.FindOpen(product.ID, kind)
	if err != nil {
		return err
	}
	if existing != nil {
		// Ya hay una abierta: se queda tal cual, sin duplicar.
		return nil
	}
	alert := &entity.Alert{
		ID:        uuid.New().String(),
		CompanyID: product.CompanyID,
		ProductID: product.ID,
		Kind:      kind,
		Severity:  severity,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := ev.alertRepo.Create(alert); err != nil {
		// Dos evaluaciones concurrentes pueden pasar FindOpen a la vez; si la
		// otra ganó la inserción, la deduplicación ya está cumplida.
		if errors.Is(err, domain.ErrDuplicate) {
			return nil
		}
		return err
	}
	if ev.metrics != nil {
		ev.metrics.AlertCreated(kind)
	}
	return nil
}
