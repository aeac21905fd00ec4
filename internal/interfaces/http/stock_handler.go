package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de mutaciones de stock (protegido).
// Toda escritura de stock o precio pasa por acá; el CRUD de catálogo nunca
// toca cantidades.
type StockHandler struct {
	engine *stock.MutationEngine
}

// NewStockHandler construye el handler.
func NewStockHandler(engine *stock.MutationEngine) *StockHandler {
	return &StockHandler{engine: engine}
}

// Restock godoc
// @Summary      Entrada de stock en una ubicación
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string             true  "ID del producto"
// @Param        body       body  dto.RestockRequest true  "location (GODOWN|STORE), qty"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/restock [post]
func (h *StockHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.engine.Restock(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("productId"), in.Location, in.Qty)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": product.ID, "stock": stock.ToStockRecordDTO(product.Stock)})
}

// Consume godoc
// @Summary      Salida de stock de una ubicación
// @Description  Registra una salida (venta o consumo). sale_price opcional si
//
//	la venta fue a precio promocional.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string             true  "ID del producto"
// @Param        body       body  dto.ConsumeRequest true  "location, qty, sale_price opcional"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/consume [post]
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.engine.Consume(c.Context(), GetCompanyID(c), GetUserID(c), stock.ConsumeInput{
		ProductID: c.Params("productId"),
		Location:  in.Location,
		Qty:       in.Qty,
		SalePrice: in.SalePrice,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": product.ID, "stock": stock.ToStockRecordDTO(product.Stock)})
}

// Move godoc
// @Summary      Traslado de stock entre ubicaciones
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string               true  "ID del producto"
// @Param        body       body  dto.MoveStockRequest true  "from, to, qty"
// @Success      200  {object}  dto.ProductResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/move [post]
func (h *StockHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.engine.MoveStock(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("productId"), in.From, in.To, in.Qty)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": product.ID, "stock": stock.ToStockRecordDTO(product.Stock)})
}

// BulkReduce godoc
// @Summary      Salida de stock por lote
// @Description  Aplica cada línea de forma independiente: una línea fallida no
//
//	revierte las demás. La respuesta indica el resultado por línea.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  []dto.BulkReduceLineRequest  true  "líneas"
// @Success      200   {array}  dto.BulkReduceResultDTO
// @Router       /api/stock/bulk-reduce [post]
func (h *StockHandler) BulkReduce(c *fiber.Ctx) error {
	var in []dto.BulkReduceLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "lote vacío"})
	}
	lines := make([]stock.ConsumeInput, 0, len(in))
	for _, l := range in {
		lines = append(lines, stock.ConsumeInput{
			ProductID: l.ProductID,
			Location:  l.Location,
			Qty:       l.Qty,
			SalePrice: l.SalePrice,
		})
	}
	results := h.engine.BulkReduce(c.Context(), GetCompanyID(c), GetUserID(c), lines)
	out := make([]dto.BulkReduceResultDTO, 0, len(results))
	for _, r := range results {
		item := dto.BulkReduceResultDTO{ProductID: r.ProductID, OK: r.Err == nil}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}
	return c.JSON(out)
}

// ChangePrice godoc
// @Summary      Cambio de precio de lista
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                 true  "ID del producto"
// @Param        body       body  dto.ChangePriceRequest true  "new_price"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/price [post]
func (h *StockHandler) ChangePrice(c *fiber.Ctx) error {
	var in dto.ChangePriceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.engine.ChangePrice(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("productId"), in.NewPrice)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": product.ID, "price": product.Price})
}

// Reserve godoc
// @Summary      Apartar stock del disponible
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                 true  "ID del producto"
// @Param        body       body  dto.ReservationRequest true  "qty"
// @Success      200  {object}  dto.StockRecordDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, true)
}

// Release godoc
// @Summary      Liberar stock reservado
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                 true  "ID del producto"
// @Param        body       body  dto.ReservationRequest true  "qty"
// @Success      200  {object}  dto.StockRecordDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, false)
}

func (h *StockHandler) reservation(c *fiber.Ctx, reserve bool) error {
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var product *entity.Product
	var err error
	if reserve {
		product, err = h.engine.Reserve(c.Context(), GetCompanyID(c), c.Params("productId"), in.Qty)
	} else {
		product, err = h.engine.Release(c.Context(), GetCompanyID(c), c.Params("productId"), in.Qty)
	}
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(stock.ToStockRecordDTO(product.Stock))
}

// Reverse godoc
// @Summary      Revertir un evento del ledger
// @Description  Aplica el delta inverso al stock y marca la entrada original
//
//	como revertida. Un evento ya revertido responde 409.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        eventId  path  string  true  "ID del evento"
// @Success      200  {object}  dto.StockRecordDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/{eventId}/reverse [post]
func (h *StockHandler) Reverse(c *fiber.Ctx) error {
	product, err := h.engine.Reverse(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("eventId"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": product.ID, "stock": stock.ToStockRecordDTO(product.Stock), "price": product.Price})
}

// Rebuild godoc
// @Summary      Verificación de auditoría del stock contra el ledger
// @Description  Re-deriva el StockRecord reproduciendo los eventos no
//
//	revertidos y lo compara con el almacenado.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.RebuildResultDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/rebuild [get]
func (h *StockHandler) Rebuild(c *fiber.Ctx) error {
	result, err := h.engine.RebuildFromLedger(c.Context(), GetCompanyID(c), c.Params("productId"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.RebuildResultDTO{
		Stored:     stock.ToStockRecordDTO(result.Stored),
		Derived:    stock.ToStockRecordDTO(result.Derived),
		Consistent: result.Consistent,
	})
}
