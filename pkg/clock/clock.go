// Package clock define la fuente única de tiempo de la aplicación.
// Todos los timestamps persistidos (solicitudes, transiciones, historia)
// salen de aquí, no de llamadas sueltas a time.Now, para que el orden de la
// auditoría sea consistente y los tests puedan fijar el reloj.
package clock

import "time"

// Clock fuente de tiempo inyectable.
type Clock interface {
	Now() time.Time
}

// System implementación con el reloj del sistema.
type System struct{}

// Now devuelve la hora actual.
func (System) Now() time.Time { return time.Now() }
