package repository

import "github.com/jhoicas/traslados-api/internal/domain/entity"

// UserRepository directorio de usuarios y control de acceso por sucursal.
type UserRepository interface {
	// GetByID devuelve el usuario o nil si no existe.
	GetByID(id string) (*entity.User, error)
	// FindByEmail devuelve el usuario o nil si no existe.
	FindByEmail(email string) (*entity.User, error)
	Create(u *entity.User) error
	// GetAccessibleBranches devuelve los IDs de sucursal asignados al usuario.
	// Para admin el alcance es global y la lista no aplica.
	GetAccessibleBranches(userID string) ([]string, error)
}
