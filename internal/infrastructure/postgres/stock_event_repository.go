package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.StockEventRepository = (*StockEventRepo)(nil)

const stockEventColumns = `id, seq, company_id, product_id, action, quantity_before, quantity_after, change, reversed, timestamp, actor_id, details`

// StockEventRepo implementación del ledger append-only sobre PostgreSQL.
// seq es un bigserial: la base asigna la secuencia al insertar y con ella se
// desempatan timestamps iguales. Nada se actualiza salvo el flag reversed y
// nada se borra, ni al eliminar el producto.
type StockEventRepo struct {
	q Querier
}

// NewStockEventRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockEventRepository(q Querier) *StockEventRepo {
	return &StockEventRepo{q: q}
}

// Create agrega una entrada al ledger y recupera la secuencia asignada.
func (r *StockEventRepo) Create(event *entity.StockEvent) error {
	query := `
		INSERT INTO stock_events (id, company_id, product_id, action, quantity_before, quantity_after, change, reversed, timestamp, actor_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`
	err := r.q.QueryRow(context.Background(), query,
		event.ID, event.CompanyID, event.ProductID, event.Action,
		event.QuantityBefore, event.QuantityAfter, event.Change,
		event.Reversed, event.Timestamp, event.ActorID, event.Details,
	).Scan(&event.Seq)
	if err != nil {
		return fmt.Errorf("insert stock event: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada del ledger por ID.
func (r *StockEventRepo) GetByID(id string) (*entity.StockEvent, error) {
	e, err := scanStockEvent(r.q.QueryRow(context.Background(),
		`SELECT `+stockEventColumns+` FROM stock_events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock event: %w", err)
	}
	return e, nil
}

// List devuelve entradas del ledger del tenant, en orden global ascendente
// (timestamp, seq). El filtro arma el WHERE dinámicamente.
func (r *StockEventRepo) List(ctx context.Context, companyID string, filter repository.StockEventFilter) ([]*entity.StockEvent, error) {
	query := `SELECT ` + stockEventColumns + ` FROM stock_events WHERE company_id = $1`
	args := []any{companyID}
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}
	if len(filter.Actions) > 0 {
		args = append(args, filter.Actions)
		query += fmt.Sprintf(" AND action = ANY($%d)", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND timestamp < $%d", len(args))
	}
	if !filter.IncludeReversed {
		query += " AND reversed = false"
	}
	query += " ORDER BY timestamp ASC, seq ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock events: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockEvent
	for rows.Next() {
		e, err := scanStockEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock event: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkReversed marca la entrada como revertida. El guard reversed = false en
// la misma sentencia hace atómica la detección de doble reversión.
func (r *StockEventRepo) MarkReversed(id string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_events SET reversed = true WHERE id = $1 AND reversed = false`, id)
	if err != nil {
		return fmt.Errorf("mark stock event reversed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrReversalConflict
	}
	return nil
}

func scanStockEvent(row pgx.Row) (*entity.StockEvent, error) {
	var e entity.StockEvent
	err := row.Scan(
		&e.ID, &e.Seq, &e.CompanyID, &e.ProductID, &e.Action,
		&e.QuantityBefore, &e.QuantityAfter, &e.Change,
		&e.Reversed, &e.Timestamp, &e.ActorID, &e.Details,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
