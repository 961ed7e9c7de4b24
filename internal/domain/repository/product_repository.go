package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// ProductRepository directorio de productos. Lectura general más la única
// escritura permitida al motor: AdjustStock, usada exclusivamente por el
// gestor de reservas dentro de una transacción.
type ProductRepository interface {
	// GetByID devuelve el producto o nil si no existe.
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate devuelve el producto bloqueando su fila (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Product, error)
	// AdjustStock suma delta (puede ser negativo) al stock del producto.
	AdjustStock(id string, delta decimal.Decimal) error
}
