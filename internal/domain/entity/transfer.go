package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del traslado. El ciclo de vida es cerrado: cualquier transición
// fuera de la tabla validTransitions es un conflicto de estado.
type TransferStatus string

const (
	StatusPending   TransferStatus = "pending"
	StatusApproved  TransferStatus = "approved"
	StatusInTransit TransferStatus = "in_transit"
	StatusCompleted TransferStatus = "completed"
	StatusRejected  TransferStatus = "rejected"
	StatusCancelled TransferStatus = "cancelled"
)

// Tipos de traslado.
type TransferType string

const (
	TypeStandard  TransferType = "standard"
	TypeBulk      TransferType = "bulk"
	TypeEmergency TransferType = "emergency"
)

// Prioridades del traslado. Determinan los días base del ETA.
type TransferPriority string

const (
	PriorityLow       TransferPriority = "low"
	PriorityNormal    TransferPriority = "normal"
	PriorityHigh      TransferPriority = "high"
	PriorityEmergency TransferPriority = "emergency"
)

// validTransitions tabla cerrada de transiciones legales.
// pending → approved | rejected | cancelled
// approved → in_transit | cancelled
// in_transit → completed
var validTransitions = map[TransferStatus][]TransferStatus{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusCompleted},
}

// CanTransitionTo indica si la transición s → to es legal.
func (s TransferStatus) CanTransitionTo(to TransferStatus) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no admite más transiciones.
func (s TransferStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsValid indica si el valor es uno de los estados conocidos.
func (s TransferStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusInTransit, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsValid indica si el valor es uno de los tipos conocidos.
func (t TransferType) IsValid() bool {
	switch t {
	case TypeStandard, TypeBulk, TypeEmergency:
		return true
	}
	return false
}

// IsValid indica si el valor es una de las prioridades conocidas.
func (p TransferPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// Transfer representa un traslado de mercancía entre dos sucursales
// (agregado raíz: cabecera + ítems). Los ítems se crean junto con la cabecera
// y nunca se agregan ni eliminan después; una corrección requiere un traslado
// nuevo. Una vez en estado terminal el agregado es inmutable.
type Transfer struct {
	ID             string
	TransferNumber string // TF-YYYYMMDD-NNNN, único
	Status         TransferStatus
	Type           TransferType
	Priority       TransferPriority

	SourceBranchID      string
	DestinationBranchID string

	Reason string
	Notes  string

	EstimatedCost decimal.Decimal
	ActualCost    decimal.Decimal
	DistanceKM    decimal.Decimal

	RequestedBy string
	RequestedAt time.Time

	ApprovedBy *string
	ApprovedAt *time.Time

	ShippedBy    *string
	ShippedAt    *time.Time
	TrackingInfo string

	ReceivedBy *string
	ReceivedAt *time.Time

	CancelledBy  *string
	CancelledAt  *time.Time
	CancelReason string

	EstimatedDeliveryDate *time.Time

	Items []*TransferItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanBeCancelled indica si el traslado admite cancelación explícita:
// solo antes de estar en tránsito.
func (t *Transfer) CanBeCancelled() bool {
	return t.Status == StatusPending || t.Status == StatusApproved
}

// TotalValue suma el costo total de todos los ítems (valor del traslado,
// base para el umbral de aprobación gerencial).
func (t *Transfer) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.TotalCost)
	}
	return total
}

// TotalQuantity suma las cantidades solicitadas de todos los ítems.
func (t *Transfer) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Quantity)
	}
	return total
}
