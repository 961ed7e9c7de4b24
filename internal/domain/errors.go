package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas). Los handlers HTTP los
// mapean a códigos de respuesta con errors.Is / errors.As; ningún error se
// traga en silencio.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado para esta operación")
	ErrStateConflict     = errors.New("transición de estado no permitida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUserNotFound      = errors.New("usuario no encontrado")
)

// ValidationError acumula todas las violaciones de reglas de negocio de una
// solicitud (no se corta en la primera). Una solicitud que falla la
// validación no produce ninguna mutación.
type ValidationError struct {
	Violations []string
}

// Error concatena las violaciones en un solo mensaje legible.
func (e *ValidationError) Error() string {
	return "validación: " + strings.Join(e.Violations, "; ")
}

// NewValidationError construye el error con la lista de violaciones.
func NewValidationError(violations []string) *ValidationError {
	return &ValidationError{Violations: violations}
}
