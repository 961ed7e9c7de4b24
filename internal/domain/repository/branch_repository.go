package repository

import "github.com/jhoicas/traslados-api/internal/domain/entity"

// BranchRepository directorio de sucursales (solo lectura).
type BranchRepository interface {
	// GetByID devuelve la sucursal o nil si no existe.
	GetByID(id string) (*entity.Branch, error)
}
