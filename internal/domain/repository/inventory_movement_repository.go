package repository

import "github.com/jhoicas/traslados-api/internal/domain/entity"

// InventoryMovementRepository registro de mutaciones de inventario para
// consumidores de auditoría y reportes.
type InventoryMovementRepository interface {
	Create(m *entity.InventoryMovement) error
	// ListByTransfer devuelve los movimientos originados por un traslado.
	ListByTransfer(transferID string) ([]*entity.InventoryMovement, error)
}
