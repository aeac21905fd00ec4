package alerts

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// AlertUseCase operaciones de lectura y ciclo de vida de alertas para la API:
// listar (ordenadas por urgencia), marcar leída y resolver.
type AlertUseCase struct {
	alertRepo repository.AlertRepository
}

// NewAlertUseCase construye el caso de uso.
func NewAlertUseCase(alertRepo repository.AlertRepository) *AlertUseCase {
	return &AlertUseCase{alertRepo: alertRepo}
}

// List devuelve las alertas del tenant ordenadas por urgencia descendente.
// El urgencyScore se calcula al leer; no se persiste.
func (uc *AlertUseCase) List(ctx context.Context, companyID string, filter repository.AlertFilter) ([]dto.AlertDTO, error) {
	alerts, err := uc.alertRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]dto.AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertDTO(a, now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UrgencyScore > out[j].UrgencyScore })
	return out, nil
}

// MarkRead marca la alerta como leída (abierta -> leída).
func (uc *AlertUseCase) MarkRead(companyID, alertID string) error {
	return uc.alertRepo.MarkRead(alertID, companyID)
}

// Resolve resuelve la alerta (estado terminal). Una nueva ocurrencia de la
// misma condición creará después una instancia nueva.
func (uc *AlertUseCase) Resolve(companyID, alertID string) error {
	return uc.alertRepo.Resolve(alertID, companyID)
}

func toAlertDTO(a *entity.Alert, now time.Time) dto.AlertDTO {
	return dto.AlertDTO{
		ID:           a.ID,
		ProductID:    a.ProductID,
		Kind:         a.Kind,
		Severity:     a.Severity,
		Message:      a.Message,
		IsRead:       a.IsRead,
		IsResolved:   a.IsResolved,
		UrgencyScore: a.UrgencyScore(now),
		CreatedAt:    a.CreatedAt,
	}
}
