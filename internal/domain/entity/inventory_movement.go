package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario emitidos por el motor de traslados.
const (
	MovementTypeOut = "out" // salida de la sucursal origen (despacho)
	MovementTypeIn  = "in"  // entrada en la sucursal destino (recepción)
)

// InventoryMovement registro de mutación de inventario para consumidores de
// auditoría y reportes. Quantity es negativa en salidas y positiva en
// entradas. TransferID referencia el traslado que lo originó.
type InventoryMovement struct {
	ID         string
	TransferID string
	ProductID  string
	BranchID   string
	Type       string // out, in
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
	Date       time.Time
	CreatedAt  time.Time
	CreatedBy  string // UserID
}
