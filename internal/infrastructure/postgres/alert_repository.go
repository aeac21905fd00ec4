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

var _ repository.AlertRepository = (*AlertRepo)(nil)

const alertColumns = `id, company_id, product_id, kind, severity, message, is_read, is_resolved, created_at, resolved_at`

// AlertRepo implementación del puerto AlertRepository sobre PostgreSQL.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador de persistencia de alertas. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// Create persiste una nueva alerta. El índice único parcial sobre
// (product_id, kind) sin resolver respalda la deduplicación: una violación se
// traduce a ErrDuplicate para que el evaluador la trate como dedup cumplida.
func (r *AlertRepo) Create(alert *entity.Alert) error {
	query := `
		INSERT INTO alerts (id, company_id, product_id, kind, severity, message, is_read, is_resolved, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		alert.ID, alert.CompanyID, alert.ProductID, alert.Kind, alert.Severity,
		alert.Message, alert.IsRead, alert.IsResolved, alert.CreatedAt, alert.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetByID obtiene una alerta por ID.
func (r *AlertRepo) GetByID(id string) (*entity.Alert, error) {
	a, err := scanAlert(r.q.QueryRow(context.Background(),
		`SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// FindOpen devuelve la alerta sin resolver de (producto, tipo), o nil.
// Es la consulta de deduplicación del evaluador.
func (r *AlertRepo) FindOpen(productID, kind string) (*entity.Alert, error) {
	a, err := scanAlert(r.q.QueryRow(context.Background(),
		`SELECT `+alertColumns+` FROM alerts WHERE product_id = $1 AND kind = $2 AND is_resolved = false LIMIT 1`,
		productID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open alert: %w", err)
	}
	return a, nil
}

// List devuelve alertas del tenant, más recientes primero. El orden final por
// urgencia lo aplica el caso de uso porque el puntaje es derivado.
func (r *AlertRepo) List(ctx context.Context, companyID string, filter repository.AlertFilter) ([]*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE company_id = $1`
	args := []any{companyID}
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.UnresolvedOnly {
		query += " AND is_resolved = false"
	}
	if filter.UnreadOnly {
		query += " AND is_read = false"
	}
	query += " ORDER BY created_at DESC"
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
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var list []*entity.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// MarkRead marca la alerta como leída. El filtro por company_id evita tocar
// alertas de otro tenant.
func (r *AlertRepo) MarkRead(id, companyID string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE alerts SET is_read = true WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Resolve marca la alerta como resuelta (estado terminal).
func (r *AlertRepo) Resolve(id, companyID string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE alerts SET is_resolved = true, resolved_at = now() WHERE id = $1 AND company_id = $2 AND is_resolved = false`,
		id, companyID)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAlert(row pgx.Row) (*entity.Alert, error) {
	var a entity.Alert
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.ProductID, &a.Kind, &a.Severity,
		&a.Message, &a.IsRead, &a.IsResolved, &a.CreatedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
