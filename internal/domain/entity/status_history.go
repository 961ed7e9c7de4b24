package entity

import "time"

// StatusHistoryEntry registro de auditoría de una transición de estado.
// Append-only: nunca se actualiza ni se borra. FromStatus vacío marca la
// entrada de creación del traslado.
type StatusHistoryEntry struct {
	ID         string
	TransferID string
	FromStatus TransferStatus
	ToStatus   TransferStatus
	ChangedBy  string // UserID del actor
	Reason     string // opcional
	CreatedAt  time.Time
}
