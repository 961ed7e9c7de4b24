package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del directorio. Stock es el saldo vigente en
// el almacén autoritativo; solo el gestor de reservas lo muta (AdjustStock).
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal // costo de compra (base del valor del traslado)
	WeightKG    decimal.Decimal // peso unitario, insumo del estimador de costo
	Stock       decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
