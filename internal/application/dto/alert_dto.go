package dto

import "time"

// AlertDTO una alerta en respuestas, con el puntaje de urgencia derivado.
type AlertDTO struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	Kind         string    `json:"kind"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"is_read"`
	IsResolved   bool      `json:"is_resolved"`
	UrgencyScore float64   `json:"urgency_score"`
	CreatedAt    time.Time `json:"created_at"`
}
