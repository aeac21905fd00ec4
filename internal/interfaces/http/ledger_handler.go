package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// LedgerHandler consultas de solo lectura sobre el ledger (protegido).
type LedgerHandler struct {
	uc *stock.LedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *stock.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// List godoc
// @Summary      Historial del ledger de stock
// @Description  Entradas en orden global, filtrables por producto, acción y
//
//	ventana de tiempo. Por defecto excluye las revertidas.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id        query  string  false  "Filtrar por producto"
// @Param        action            query  string  false  "Filtrar por acción"
// @Param        from              query  string  false  "RFC3339"
// @Param        to                query  string  false  "RFC3339"
// @Param        include_reversed  query  bool    false  "Incluir entradas revertidas"
// @Success      200  {array}   dto.StockEventDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	filter := repository.StockEventFilter{
		ProductID:       c.Query("product_id"),
		IncludeReversed: c.QueryBool("include_reversed"),
		Limit:           page.Limit,
		Offset:          page.Offset,
	}
	if action := c.Query("action"); action != "" {
		filter.Actions = []string{action}
	}
	var ok bool
	if filter.From, ok = parseTimeQuery(c, "from"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	if filter.To, ok = parseTimeQuery(c, "to"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	events, err := h.uc.List(c.Context(), GetCompanyID(c), filter)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(events), "events": events})
}

// parseTimeQuery lee un query param RFC3339 opcional. ok es false solo si el
// valor está presente y es inválido.
func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
