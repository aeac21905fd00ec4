package entity

import "time"

// Category representa una categoría de productos. Los productos referencian
// categorías únicamente por ID (referencia tipada), nunca por nombre.
type Category struct {
	ID        string
	CompanyID string
	Name      string
	Code      string // código único por empresa
	CreatedAt time.Time
	UpdatedAt time.Time
}
