package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/alerts"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// AlertHandler lectura y ciclo de vida de alertas (protegido).
type AlertHandler struct {
	uc *alerts.AlertUseCase
}

// NewAlertHandler construye el handler.
func NewAlertHandler(uc *alerts.AlertUseCase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// List godoc
// @Summary      Listar alertas ordenadas por urgencia
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        product_id       query  string  false  "Filtrar por producto"
// @Param        kind             query  string  false  "LOW_STOCK | OUT_OF_STOCK | EXPIRING_SOON | EXPIRED | CUSTOM"
// @Param        unresolved_only  query  bool    false  "Solo alertas sin resolver"
// @Param        unread_only      query  bool    false  "Solo alertas sin leer"
// @Success      200  {array}   dto.AlertDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	list, err := h.uc.List(c.Context(), GetCompanyID(c), repository.AlertFilter{
		ProductID:      c.Query("product_id"),
		Kind:           c.Query("kind"),
		UnresolvedOnly: c.QueryBool("unresolved_only"),
		UnreadOnly:     c.QueryBool("unread_only"),
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "alerts": list})
}

// MarkRead godoc
// @Summary      Marcar alerta como leída
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la alerta"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/read [post]
func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.uc.MarkRead(GetCompanyID(c), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "alerta marcada como leída"})
}

// Resolve godoc
// @Summary      Resolver alerta
// @Description  Estado terminal. Una nueva ocurrencia de la misma condición
//
//	creará una instancia nueva.
//
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la alerta"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	if err := h.uc.Resolve(GetCompanyID(c), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "alerta resuelta"})
}
