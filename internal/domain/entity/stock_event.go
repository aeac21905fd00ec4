package entity

import "time"

// Acciones registradas en el ledger de stock.
const (
	ActionCreate      = "CREATE"       // alta del registro de stock
	ActionIncrease    = "INCREASE"     // entrada en una ubicación
	ActionReduce      = "REDUCE"       // salida de una ubicación
	ActionMove        = "MOVE"         // traslado entre ubicaciones (total intacto)
	ActionBulkReduce  = "BULK_REDUCE"  // salida por línea de un lote
	ActionPriceChange = "PRICE_CHANGE" // cambio de precio de lista
)

// Claves conocidas dentro de StockEvent.Details.
const (
	DetailLocation  = "location"
	DetailFrom      = "from"
	DetailTo        = "to"
	DetailGodown    = "godown"
	DetailStore     = "store"
	DetailOldPrice  = "old_price"
	DetailNewPrice  = "new_price"
	DetailSalePrice = "sale_price" // precio de venta efectivo si hubo promoción
	DetailReversed  = "reversed_event_id"
)

// StockEvent es una entrada inmutable del ledger: el registro de una única
// mutación de stock. Después de creada, el único campo que cambia es Reversed
// (lo marca la operación de reversión); ningún otro campo se edita jamás.
// Las entradas nunca se borran, ni siquiera al eliminar el producto.
type StockEvent struct {
	ID        string
	Seq       int64 // secuencia global asignada al commit; desempata timestamps iguales
	CompanyID string
	ProductID string
	Action    string
	// QuantityBefore/After se refieren a la ubicación afectada (o al total en
	// CREATE). Pueden faltar en datos históricos; el motor actual siempre los captura.
	QuantityBefore *int64
	QuantityAfter  *int64
	Change         int64 // delta firmado del total (0 en MOVE y PRICE_CHANGE)
	Reversed       bool
	Timestamp      time.Time
	ActorID        string
	Details        map[string]any
}

// Delta devuelve la cantidad movida por el evento: |after-before| si ambos
// están presentes, si no |Change|.
func (e *StockEvent) Delta() int64 {
	if e.QuantityBefore != nil && e.QuantityAfter != nil {
		d := *e.QuantityAfter - *e.QuantityBefore
		if d < 0 {
			return -d
		}
		return d
	}
	if e.Change < 0 {
		return -e.Change
	}
	return e.Change
}

// DetailString devuelve un detail como string ("" si falta o no es string).
func (e *StockEvent) DetailString(key string) string {
	if e.Details == nil {
		return ""
	}
	s, _ := e.Details[key].(string)
	return s
}

// DetailInt devuelve un detail numérico como int64. Los detalles llegan como
// float64 cuando vienen de jsonb, por eso se aceptan ambas representaciones.
func (e *StockEvent) DetailInt(key string) (int64, bool) {
	if e.Details == nil {
		return 0, false
	}
	switch v := e.Details[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}
