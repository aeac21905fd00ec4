package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/analytics"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
)

// AnalyticsHandler consultas de analítica derivada del ledger (protegido).
// Todos los endpoints son de solo lectura; una ventana sin eventos responde
// ceros, no error.
type AnalyticsHandler struct {
	uc *analytics.AggregatorUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.AggregatorUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func (h *AnalyticsHandler) parseQuery(c *fiber.Ctx) (dto.AnalyticsQuery, bool) {
	var q dto.AnalyticsQuery
	var ok bool
	if q.From, ok = parseTimeQuery(c, "from"); !ok {
		return q, false
	}
	if q.To, ok = parseTimeQuery(c, "to"); !ok {
		return q, false
	}
	q.GroupBy = c.Query("group_by")
	q.TopN = c.QueryInt("top_n")
	return q, true
}

// SalesReport godoc
// @Summary      Resumen de ventas inferidas del ledger
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from      query  string  false  "RFC3339"
// @Param        to        query  string  false  "RFC3339"
// @Param        group_by  query  string  false  "product | category | hour | day | week | month"
// @Success      200  {object}  dto.SalesReportDTO
// @Router       /api/analytics/sales [get]
func (h *AnalyticsHandler) SalesReport(c *fiber.Ctx) error {
	q, ok := h.parseQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ventana inválida (RFC3339)"})
	}
	out, err := h.uc.SalesReport(c.Context(), GetCompanyID(c), q)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// TopProducts godoc
// @Summary      Ranking de productos por unidades vendidas
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  false  "RFC3339"
// @Param        to     query  string  false  "RFC3339"
// @Param        top_n  query  int     false  "Tamaño del ranking (default 10)"
// @Success      200  {array}  dto.TopProductDTO
// @Router       /api/analytics/top-products [get]
func (h *AnalyticsHandler) TopProducts(c *fiber.Ctx) error {
	q, ok := h.parseQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ventana inválida (RFC3339)"})
	}
	out, err := h.uc.TopProducts(c.Context(), GetCompanyID(c), q)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// CategoryPerformance godoc
// @Summary      Ventas por categoría
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "RFC3339"
// @Param        to    query  string  false  "RFC3339"
// @Success      200  {array}  dto.CategorySalesDTO
// @Router       /api/analytics/categories [get]
func (h *AnalyticsHandler) CategoryPerformance(c *fiber.Ctx) error {
	q, ok := h.parseQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ventana inválida (RFC3339)"})
	}
	out, err := h.uc.CategoryPerformance(c.Context(), GetCompanyID(c), q)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "categories": out})
}

// StockAdded godoc
// @Summary      Entradas de stock en la ventana
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "RFC3339"
// @Param        to    query  string  false  "RFC3339"
// @Success      200  {object}  dto.StockAddedDTO
// @Router       /api/analytics/stock-added [get]
func (h *AnalyticsHandler) StockAdded(c *fiber.Ctx) error {
	q, ok := h.parseQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ventana inválida (RFC3339)"})
	}
	out, err := h.uc.StockAdded(c.Context(), GetCompanyID(c), q)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// PromotionImpact godoc
// @Summary      Ventas en promoción vs precio de lista
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "RFC3339"
// @Param        to    query  string  false  "RFC3339"
// @Success      200  {object}  dto.PromoImpactDTO
// @Router       /api/analytics/promotions [get]
func (h *AnalyticsHandler) PromotionImpact(c *fiber.Ctx) error {
	q, ok := h.parseQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ventana inválida (RFC3339)"})
	}
	out, err := h.uc.PromotionImpact(c.Context(), GetCompanyID(c), q)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// PriceHistory godoc
// @Summary      Historial de cambios de precio de un producto
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        recent     query  int     false  "Cantidad de cambios recientes (default 5)"
// @Success      200  {object}  dto.PriceHistoryDTO
// @Router       /api/analytics/price-history/{productId} [get]
func (h *AnalyticsHandler) PriceHistory(c *fiber.Ctx) error {
	recent := c.QueryInt("recent", 5)
	out, err := h.uc.PriceHistory(c.Context(), GetCompanyID(c), c.Params("productId"), recent)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}
