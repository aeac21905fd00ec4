package entity

import "github.com/jhoicas/Almacen-api/internal/domain"

// Ubicaciones físicas del stock de un producto.
const (
	LocationGodown = "GODOWN" // bodega (almacenamiento trasero)
	LocationStore  = "STORE"  // sala de ventas
)

// ValidLocation indica si s es una ubicación conocida.
func ValidLocation(s string) bool {
	return s == LocationGodown || s == LocationStore
}

// StockRecord es el estado actual de cantidades de un producto: dos ubicaciones
// físicas más una reserva global. Se persiste embebido en la fila del producto.
// Es una caché: siempre debe poder re-derivarse reproduciendo los eventos no
// revertidos del ledger desde la creación.
//
// Invariantes (se validan en cada escritura):
//   - ningún campo es negativo
//   - Total() == Godown + Store
//   - Available() == Total() - Reserved >= 0
type StockRecord struct {
	Godown   int64
	Store    int64
	Reserved int64
}

// NewStockRecord construye un registro con el reparto inicial entre ubicaciones.
// Falla con ErrInvalidStockOperation si alguna cantidad es negativa.
func NewStockRecord(godown, store int64) (StockRecord, error) {
	rec := StockRecord{Godown: godown, Store: store}
	if err := rec.Validate(); err != nil {
		return StockRecord{}, err
	}
	return rec, nil
}

// Total devuelve la cantidad total (derivada, nunca almacenada aparte).
func (s StockRecord) Total() int64 {
	return s.Godown + s.Store
}

// Available devuelve la cantidad vendible: total menos reservado.
func (s StockRecord) Available() int64 {
	return s.Total() - s.Reserved
}

// Validate verifica los invariantes del registro.
func (s StockRecord) Validate() error {
	if s.Godown < 0 || s.Store < 0 || s.Reserved < 0 {
		return domain.ErrInvalidStockOperation
	}
	if s.Available() < 0 {
		return domain.ErrInvalidStockOperation
	}
	return nil
}

// QuantityAt devuelve la cantidad en la ubicación indicada.
func (s StockRecord) QuantityAt(location string) int64 {
	if location == LocationGodown {
		return s.Godown
	}
	return s.Store
}

// WithRestock devuelve una copia con qty sumado a la ubicación indicada.
func (s StockRecord) WithRestock(location string, qty int64) (StockRecord, error) {
	if qty <= 0 || !ValidLocation(location) {
		return StockRecord{}, domain.ErrInvalidStockOperation
	}
	out := s
	if location == LocationGodown {
		out.Godown += qty
	} else {
		out.Store += qty
	}
	if err := out.Validate(); err != nil {
		return StockRecord{}, err
	}
	return out, nil
}

// WithConsume devuelve una copia con qty restado de la ubicación indicada.
// Falla si la ubicación no alcanza qty o si el total resultante quedara por
// debajo de lo reservado.
func (s StockRecord) WithConsume(location string, qty int64) (StockRecord, error) {
	if qty <= 0 || !ValidLocation(location) {
		return StockRecord{}, domain.ErrInvalidStockOperation
	}
	if s.QuantityAt(location) < qty {
		return StockRecord{}, domain.ErrInvalidStockOperation
	}
	out := s
	if location == LocationGodown {
		out.Godown -= qty
	} else {
		out.Store -= qty
	}
	if err := out.Validate(); err != nil {
		return StockRecord{}, err
	}
	return out, nil
}

// WithMove traslada qty entre ubicaciones sin cambiar el total.
// Falla si la ubicación origen no alcanza qty.
func (s StockRecord) WithMove(from, to string, qty int64) (StockRecord, error) {
	if qty <= 0 || !ValidLocation(from) || !ValidLocation(to) || from == to {
		return StockRecord{}, domain.ErrInvalidStockOperation
	}
	if s.QuantityAt(from) < qty {
		return StockRecord{}, domain.ErrInvalidStockOperation
	}
	out := s
	if from == LocationGodown {
		out.Godown -= qty
		out.Store += qty
	} else {
		out.Store -= qty
		out.Godown += qty
	}
	if err := out.Validate(); err != nil {
		return StockRecord{}, err
	}
	return out, nil
}

// WithReserve aparta qty del disponible. La reserva no cambia el total,
// solo excluye cantidad de Available().
func (s StockRecord) WithReserve(qty int64) (StockRecord, error) {
	if qty <= 0 || s.Available() < qty {
		return StockRecord{}, domain.ErrInvalidStockOperation
	}
	out := s
	out.Reserved += qty
	return out, nil
}

// WithRelease libera qty de la reserva.
func (s StockRecord) WithRelease(qty int64) (StockRecord, error) {
	if qty <= 0 || s.Reserved < qty {
		return StockRecord{}, domain.ErrInvalidStockOperation
	}
	out := s
	out.Reserved -= qty
	return out, nil
}
