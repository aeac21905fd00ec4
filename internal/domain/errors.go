package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrProductNotFound    = errors.New("producto no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrInvalidStockOperation: la operación dejaría una cantidad negativa
	// o no hay stock disponible suficiente. No se escribe estado parcial.
	ErrInvalidStockOperation = errors.New("operación de stock inválida")

	// ErrReversalConflict: el evento ya fue revertido; una reversión no se aplica dos veces.
	ErrReversalConflict = errors.New("el evento ya fue revertido")
)
