package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItem línea de un traslado (pertenece a un Transfer).
// Los snapshots Before/After se registran en el momento de la reserva
// (origen) y de la recepción (destino); antes de eso valen cero.
// Invariantes: SourceStockAfter = SourceStockBefore - Quantity una vez
// reservado; DestinationStockAfter = DestinationStockBefore + ReceivedQuantity
// una vez recibido.
type TransferItem struct {
	ID         string
	TransferID string
	ProductID  string

	Quantity         decimal.Decimal // solicitada, > 0
	ReceivedQuantity decimal.Decimal // puede ser menor que Quantity (recepción parcial)

	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal // Quantity × UnitCost

	SourceStockBefore      decimal.Decimal
	SourceStockAfter       decimal.Decimal
	DestinationStockBefore decimal.Decimal
	DestinationStockAfter  decimal.Decimal

	ExpiryDate  *time.Time // opcional; no puede estar en el pasado al crear
	BatchNumber string     // opcional
}
