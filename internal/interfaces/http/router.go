package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/alerts"
	"github.com/jhoicas/Almacen-api/internal/application/analytics"
	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC   *usecase.CompanyUseCase
	CategoryUC  *usecase.CategoryUseCase
	ProductUC   *usecase.ProductUseCase
	Engine      *stock.MutationEngine
	LedgerUC    *stock.LedgerUseCase
	AlertUC     *alerts.AlertUseCase
	AnalyticsUC *analytics.AggregatorUseCase
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Categories (protegido)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole(entity.RoleAdmin), productHandler.Delete)

	// Stock mutations (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Engine)
	stockGroup.Post("/bulk-reduce", stockHandler.BulkReduce)
	stockGroup.Post("/:productId/restock", stockHandler.Restock)
	stockGroup.Post("/:productId/consume", stockHandler.Consume)
	stockGroup.Post("/:productId/move", stockHandler.Move)
	stockGroup.Post("/:productId/reserve", stockHandler.Reserve)
	stockGroup.Post("/:productId/release", stockHandler.Release)
	stockGroup.Post("/:productId/price", RequireRole(entity.RoleAdmin), stockHandler.ChangePrice)
	stockGroup.Get("/:productId/rebuild", stockHandler.Rebuild)

	// Ledger (protegido)
	ledger := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledger.Get("/", ledgerHandler.List)
	ledger.Post("/:eventId/reverse", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), stockHandler.Reverse)

	// Alerts (protegido)
	alertsGroup := protected.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertUC)
	alertsGroup.Get("/", alertHandler.List)
	alertsGroup.Post("/:id/read", alertHandler.MarkRead)
	alertsGroup.Post("/:id/resolve", alertHandler.Resolve)

	// Analytics (protegido, solo lectura)
	analyticsGroup := protected.Group("/analytics")
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	analyticsGroup.Get("/sales", analyticsHandler.SalesReport)
	analyticsGroup.Get("/top-products", analyticsHandler.TopProducts)
	analyticsGroup.Get("/categories", analyticsHandler.CategoryPerformance)
	analyticsGroup.Get("/stock-added", analyticsHandler.StockAdded)
	analyticsGroup.Get("/promotions", analyticsHandler.PromotionImpact)
	analyticsGroup.Get("/price-history/:productId", analyticsHandler.PriceHistory)
}
