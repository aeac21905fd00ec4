package entity

import "time"

// Company representa el tenant: la empresa dueña de productos, stock y alertas.
type Company struct {
	ID        string
	Name      string
	TaxID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
