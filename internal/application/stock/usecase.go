package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// MutationEngine es el único componente autorizado a modificar un StockRecord.
// Cada operación corre dentro de una transacción: bloquea la fila del producto
// (SELECT FOR UPDATE), aplica el cambio y agrega exactamente una entrada al
// ledger; todo se confirma o se revierte junto. Operaciones sobre productos
// distintos corren en paralelo sin coordinación extra.
//
// Toda operación recibe el companyID del actor y valida la pertenencia del
// producto antes de tocar nada.
type MutationEngine struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	eventRepo   repository.StockEventRepository
	notifier    AlertNotifier
	metrics     Metrics
	log         *logger.Logger
}

// NewMutationEngine construye el motor. notifier y metrics pueden ser nil.
func NewMutationEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	eventRepo repository.StockEventRepository,
	notifier AlertNotifier,
	metrics Metrics,
	log *logger.Logger,
) *MutationEngine {
	return &MutationEngine{
		txRunner:    txRunner,
		productRepo: productRepo,
		eventRepo:   eventRepo,
		notifier:    notifier,
		metrics:     metrics,
		log:         log,
	}
}

// ConsumeInput una línea de salida de stock.
type ConsumeInput struct {
	ProductID string
	Location  string
	Qty       int64
	SalePrice *decimal.Decimal // precio efectivo si se vendió en promoción
}

// BulkReduceResult resultado de una línea de BulkReduce.
type BulkReduceResult struct {
	ProductID string
	Err       error // nil si la línea se aplicó
}

// RebuildResult comparación entre el registro almacenado y el derivado del ledger.
type RebuildResult struct {
	Stored     entity.StockRecord
	Derived    entity.StockRecord
	Consistent bool // compara godown/store; la reserva no se replica en el ledger
}

// tenantProduct valida que el producto exista y pertenezca al tenant. Un
// producto de otra empresa se responde como inexistente para no revelar que
// existe.
func tenantProduct(product *entity.Product, companyID string) error {
	if product == nil || product.CompanyID != companyID {
		return domain.ErrProductNotFound
	}
	return nil
}

// CreateStock inicializa el StockRecord de un producto con el reparto inicial
// y emite el evento CREATE. Falla si el registro ya tiene cantidades.
func (e *MutationEngine) CreateStock(ctx context.Context, companyID, actorID, productID string, godown0, store0 int64) (*entity.Product, error) {
	rec, err := entity.NewStockRecord(godown0, store0)
	if err != nil {
		return nil, err
	}
	var updated *entity.Product
	err = e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, eventRepo repository.StockEventRepository) error {
		product, err := productRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if err := tenantProduct(product, companyID); err != nil {
			return err
		}
		if product.Stock.Total() != 0 || product.Stock.Reserved != 0 {
			return domain.ErrInvalidStockOperation
		}
		if err := productRepo.UpdateStock(productID, rec); err != nil {
			return err
		}
		before, after := int64(0), rec.Total()
		ev := e.newEvent(product, entity.ActionCreate, actorID, &before, &after, rec.Total(), map[string]any{
			entity.DetailGodown: godown0,
			entity.DetailStore:  store0,
		})
		if err := eventRepo.Create(ev); err != nil {
			return err
		}
		product.Stock = rec
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.afterMutation(ctx, entity.ActionCreate, updated)
	return updated, nil
}

// Restock suma qty a la ubicación indicada y emite INCREASE.
func (e *MutationEngine) Restock(ctx context.Context, companyID, actorID, productID, location string, qty int64) (*entity.Product, error) {
	var updated *entity.Product
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, eventRepo repository.StockEventRepository) error {
		product, err := productRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if err := tenantProduct(product, companyID); err != nil {
			return err
		}
		before := product.Stock.QuantityAt(location)
		rec, err := product.Stock.WithRestock(location, qty)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(productID, rec); err != nil {
			return err
		}
		after := before + qty
		ev := e.newEvent(product, entity.ActionIncrease, actorID, &before, &after, qty, map[string]any{
			entity.DetailLocation: location,
		})
		if err := eventRepo.Create(ev); err != nil {
			return err
		}
		product.Stock = rec
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.afterMutation(ctx, entity.ActionIncrease, updated)
	return updated, nil
}

// Consume resta qty de la ubicación indicada y emite REDUCE con
// quantityBefore/quantityAfter de esa ubicación. Falla con
// ErrInvalidStockOperation si la ubicación no alcanza qty; en ese caso no se
// escribe nada (ni registro ni ledger).
func (e *MutationEngine) Consume(ctx context.Context, companyID, actorID string, in ConsumeInput) (*entity.Product, error) {
	updated, err := e.reduce(ctx, companyID, actorID, in, entity.ActionReduce)
	if err != nil {
		return nil, err
	}
	e.afterMutation(ctx, entity.ActionReduce, updated)
	return updated, nil
}

func (e *MutationEngine) reduce(ctx context.Context, companyID, actorID string, in ConsumeInput, action string) (*entity.Product, error) {
	var updated *entity.Product
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, eventRepo repository.StockEventRepository) error {
		product, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if err := tenantProduct(product, companyID); err != nil {
			return err
		}
		before := product.Stock.QuantityAt(in.Location)
		rec, err := product.Stock.WithConsume(in.Location, in.Qty)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(in.ProductID, rec); err != nil {
			return err
		}
		after := before - in.Qty
		details := map[string]any{entity.DetailLocation: in.Location}
		if in.SalePrice != nil {
			details[entity.DetailSalePrice] = in.SalePrice.String()
		}
		ev := e.newEvent(product, action, actorID, &before, &after, -in.Qty, details)
		if err := eventRepo.Create(ev); err != nil {
			return err
		}
		product.Stock = rec
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MoveStock traslada qty entre ubicaciones sin cambiar el total y emite MOVE.
func (e *MutationEngine) MoveStock(ctx context.Context, companyID, actorID, productID, from, to string, qty int64) (*entity.Product, error) {
	var updated *entity.Product
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, eventRepo repository.StockEventRepository) error {
		product, err := productRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if err := tenantProduct(product, companyID); err != nil {
			return err
		}
		before := product.Stock.QuantityAt(from)
		rec, err := product.Stock.WithMove(from, to, qty)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(productID, rec); err != nil {
			return err
		}
		after := before - qty
		ev := e.newEvent(product, entity.ActionMove, actorID, &before, &after, 0, map[string]any{
			entity.DetailFrom: from,
			entity.DetailTo:   to,
		})
		if err := eventRepo.Create(ev); err != nil {
			return err
		}
		product.Stock = rec
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.afterMutation(ctx, entity.ActionMove, updated)
	return updated, nil
}

// BulkReduce aplica una salida por línea. Las líneas son independientes:
// una línea fallida no revierte las anteriores (cada una va en su propia
// transacción y emite su propio BULK_REDUCE).
func (e *MutationEngine) BulkReduce(ctx context.Context, companyID, actorID string, lines []ConsumeInput) []BulkReduceResult {
	results := make([]BulkReduceResult, 0, len(lines))
	for _, line := range lines {
		updated, err := e.reduce(ctx, companyID, actorID, line, entity.ActionBulkReduce)
		if err == nil {
			e.afterMutation(ctx, entity.ActionBulkReduce, updated)
		}
		results = append(results, BulkReduceResult{ProductID: line.ProductID, Err: err})
	}
	return results
}

// ChangePrice actualiza el precio de lista y emite PRICE_CHANGE con el precio
// anterior y el nuevo en details.
func (e *MutationEngine) ChangePrice(ctx context.Context, companyID, actorID, productID string, newPrice decimal.Decimal) (*entity.Product, error) {
	if newPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.Product
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, eventRepo repository.StockEventRepository) error {
		product, err := productRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if err := tenantProduct(product, companyID); err != nil {
			return err
		}
		oldPrice := product.Price
		if err := productRepo.UpdatePrice(productID, newPrice); err != nil {
			return err
		}
		ev := e.newEvent(product, entity.ActionPriceChange, actorID, nil, nil, 0, map[string]any{
			entity.DetailOldPrice: oldPrice.String(),
			entity.DetailNewPrice: newPrice.String(),
		})
		if err := eventRepo.Create(ev); err != nil {
			return err
		}
		product.Price = newPrice
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.recordMetric(entity.ActionPriceChange)
	return updated, nil
}

// Reserve aparta qty del disponible (sin entrada en el ledger: la reserva no
// cambia el total, solo lo excluye de Available).
func (e *MutationEngine) Reserve(ctx context.Context, companyID, productID string, qty int64) (*entity.Product, error) {
	return e.adjustReservation(ctx, companyID, productID, qty, true)
}

// Release libera qty de la reserva.
func (e *MutationEngine) Release(ctx context.Context, companyID, productID string, qty int64) (*entity.Product, error) {
	return e.adjustReservation(ctx, companyID, productID, qty, false)
}

func (e *MutationEngine) adjustReservation(ctx context.Context, companyID, productID string, qty int64, reserve bool) (*entity.Product, error) {
	var updated *entity.Product
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, _ repository.StockEventRepository) error {
		product, err := productRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if err := tenantProduct(product, companyID); err != nil {
			return err
		}
		var rec entity.StockRecord
		if reserve {
			rec, err = product.Stock.WithReserve(qty)
		} else {
			rec, err = product.Stock.WithRelease(qty)
		}
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(productID, rec); err != nil {
			return err
		}
		product.Stock = rec
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reverse anula un evento del ledger: aplica el delta inverso al StockRecord y
// marca la entrada original como revertida, todo en la misma transacción.
// Falla con ErrReversalConflict si el evento ya estaba revertido. Un evento
// revertido queda excluido de toda la analítica. Un evento de otro tenant se
// responde como inexistente.
func (e *MutationEngine) Reverse(ctx context.Context, companyID, actorID, eventID string) (*entity.Product, error) {
	var updated *entity.Product
	err := e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, eventRepo repository.StockEventRepository) error {
		ev, err := eventRepo.GetByID(eventID)
		if err != nil {
			return err
		}
		if ev == nil || ev.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if ev.Reversed {
			return domain.ErrReversalConflict
		}
		product, err := productRepo.GetForUpdate(ev.ProductID)
		if err != nil {
			return err
		}
		if err := tenantProduct(product, companyID); err != nil {
			return err
		}

		rec, newPrice, err := e.inverseOf(product, ev)
		if err != nil {
			return err
		}
		// El guard WHERE reversed=false hace este paso idempotente frente a carreras.
		if err := eventRepo.MarkReversed(eventID); err != nil {
			return err
		}
		if newPrice != nil {
			if err := productRepo.UpdatePrice(product.ID, *newPrice); err != nil {
				return err
			}
			product.Price = *newPrice
		} else {
			if err := productRepo.UpdateStock(product.ID, rec); err != nil {
				return err
			}
			product.Stock = rec
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.afterMutation(ctx, "REVERSE", updated)
	return updated, nil
}

// inverseOf calcula el StockRecord resultante de deshacer ev (o el precio a
// restaurar si fue PRICE_CHANGE).
func (e *MutationEngine) inverseOf(product *entity.Product, ev *entity.StockEvent) (entity.StockRecord, *decimal.Decimal, error) {
	qty := ev.Delta()
	switch ev.Action {
	case entity.ActionCreate:
		godown0, _ := ev.DetailInt(entity.DetailGodown)
		store0, _ := ev.DetailInt(entity.DetailStore)
		rec := product.Stock
		var err error
		if godown0 > 0 {
			if rec, err = rec.WithConsume(entity.LocationGodown, godown0); err != nil {
				return entity.StockRecord{}, nil, err
			}
		}
		if store0 > 0 {
			if rec, err = rec.WithConsume(entity.LocationStore, store0); err != nil {
				return entity.StockRecord{}, nil, err
			}
		}
		return rec, nil, nil
	case entity.ActionIncrease:
		rec, err := product.Stock.WithConsume(ev.DetailString(entity.DetailLocation), qty)
		return rec, nil, err
	case entity.ActionReduce, entity.ActionBulkReduce:
		rec, err := product.Stock.WithRestock(ev.DetailString(entity.DetailLocation), qty)
		return rec, nil, err
	case entity.ActionMove:
		rec, err := product.Stock.WithMove(ev.DetailString(entity.DetailTo), ev.DetailString(entity.DetailFrom), qty)
		return rec, nil, err
	case entity.ActionPriceChange:
		old := detailPrice(ev, entity.DetailOldPrice)
		return product.Stock, &old, nil
	}
	return entity.StockRecord{}, nil, domain.ErrInvalidStockOperation
}

// RebuildFromLedger re-deriva el StockRecord reproduciendo los eventos no
// revertidos desde la creación y lo compara con el almacenado. Verificación de
// auditoría: el registro es una caché del ledger y siempre debe coincidir.
func (e *MutationEngine) RebuildFromLedger(ctx context.Context, companyID, productID string) (*RebuildResult, error) {
	product, err := e.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if err := tenantProduct(product, companyID); err != nil {
		return nil, err
	}
	events, err := e.eventRepo.List(ctx, companyID, repository.StockEventFilter{
		ProductID: productID,
	})
	if err != nil {
		return nil, err
	}

	var derived entity.StockRecord
	for _, ev := range events {
		if ev.Reversed {
			continue
		}
		qty := ev.Delta()
		switch ev.Action {
		case entity.ActionCreate:
			godown0, _ := ev.DetailInt(entity.DetailGodown)
			store0, _ := ev.DetailInt(entity.DetailStore)
			derived.Godown += godown0
			derived.Store += store0
		case entity.ActionIncrease:
			if ev.DetailString(entity.DetailLocation) == entity.LocationGodown {
				derived.Godown += qty
			} else {
				derived.Store += qty
			}
		case entity.ActionReduce, entity.ActionBulkReduce:
			if ev.DetailString(entity.DetailLocation) == entity.LocationGodown {
				derived.Godown -= qty
			} else {
				derived.Store -= qty
			}
		case entity.ActionMove:
			if ev.DetailString(entity.DetailFrom) == entity.LocationGodown {
				derived.Godown -= qty
				derived.Store += qty
			} else {
				derived.Store -= qty
				derived.Godown += qty
			}
		}
	}

	return &RebuildResult{
		Stored:     product.Stock,
		Derived:    derived,
		Consistent: derived.Godown == product.Stock.Godown && derived.Store == product.Stock.Store,
	}, nil
}

// newEvent arma la entrada de ledger de una mutación. El Seq definitivo lo
// asigna la BD al insertar.
func (e *MutationEngine) newEvent(product *entity.Product, action, actorID string, before, after *int64, change int64, details map[string]any) *entity.StockEvent {
	return &entity.StockEvent{
		ID:             uuid.New().String(),
		CompanyID:      product.CompanyID,
		ProductID:      product.ID,
		Action:         action,
		QuantityBefore: before,
		QuantityAfter:  after,
		Change:         change,
		Timestamp:      time.Now(),
		ActorID:        actorID,
		Details:        details,
	}
}

// afterMutation corre las tareas post-commit: re-evaluación de alertas
// (best-effort, nunca revierte la mutación) y métricas.
func (e *MutationEngine) afterMutation(ctx context.Context, action string, product *entity.Product) {
	e.recordMetric(action)
	if e.notifier == nil || product == nil {
		return
	}
	if err := e.notifier.EvaluateStock(ctx, product); err != nil && e.log != nil {
		// La alerta perdida se regenera en la siguiente pasada del evaluador.
		e.log.Warn().Err(err).Str("product_id", product.ID).Msg("evaluación de alertas falló tras la mutación")
	}
}

func (e *MutationEngine) recordMetric(action string) {
	if e.metrics != nil {
		e.metrics.MutationApplied(action)
	}
}

func detailPrice(ev *entity.StockEvent, key string) decimal.Decimal {
	if ev.Details == nil {
		return decimal.Zero
	}
	switch v := ev.Details[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}
