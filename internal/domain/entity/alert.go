package entity

import "time"

// Tipos de alerta generadas por el evaluador.
const (
	AlertLowStock     = "LOW_STOCK"
	AlertOutOfStock   = "OUT_OF_STOCK"
	AlertExpiringSoon = "EXPIRING_SOON"
	AlertExpired      = "EXPIRED"
	AlertCustom       = "CUSTOM"
)

// Severidades de alerta.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Alert es una condición detectada sobre un producto. Ciclo de vida:
// abierta -> leída -> resuelta (terminal). Mientras exista una alerta sin
// resolver de un (producto, tipo), el evaluador no crea otra igual; una nueva
// ocurrencia tras resolverla crea una instancia nueva.
type Alert struct {
	ID         string
	CompanyID  string
	ProductID  string
	Kind       string
	Severity   string
	Message    string
	IsRead     bool
	IsResolved bool
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

var severityWeight = map[string]float64{
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityError:    3,
	SeverityCritical: 4,
}

// typeWeight refleja prioridad de negocio: agotados y vencidos pesan más que
// los avisos tempranos.
var typeWeight = map[string]float64{
	AlertOutOfStock:   3,
	AlertExpired:      3,
	AlertLowStock:     2,
	AlertExpiringSoon: 2,
	AlertCustom:       1,
}

// UrgencyScore calcula el puntaje de triaje para ordenar alertas:
// peso de severidad + peso de tipo + antigüedad en días acotada a 3.
// Es derivado, se calcula al leer; no se persiste.
func (a *Alert) UrgencyScore(now time.Time) float64 {
	age := now.Sub(a.CreatedAt).Hours() / 24
	if age > 3 {
		age = 3
	}
	if age < 0 {
		age = 0
	}
	return severityWeight[a.Severity] + typeWeight[a.Kind] + age
}

// SeverityForExpiry asigna severidad según días restantes al vencimiento:
// vencido (<=0) es error, <=3 días warning, el resto info.
func SeverityForExpiry(daysLeft int) string {
	switch {
	case daysLeft <= 0:
		return SeverityError
	case daysLeft <= 3:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
