package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea solicitada en un traslado.
type TransferItemRequest struct {
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber string          `json:"batch_number,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers (y variantes bulk y
// emergency, que fuerzan type/priority).
type CreateTransferRequest struct {
	SourceBranchID      string                `json:"source_branch_id"`
	DestinationBranchID string                `json:"destination_branch_id"`
	Type                string                `json:"type,omitempty"`     // standard por defecto
	Priority            string                `json:"priority,omitempty"` // normal por defecto
	Reason              string                `json:"reason"`
	Notes               string                `json:"notes,omitempty"`
	Items               []TransferItemRequest `json:"items"`
}

// ApproveTransferRequest body para POST /api/transfers/:id/approve.
// IsApproved=false rechaza el traslado (Reason obligatorio en ese caso).
type ApproveTransferRequest struct {
	IsApproved bool   `json:"is_approved"`
	Reason     string `json:"reason,omitempty"`
}

// ShipTransferRequest body para POST /api/transfers/:id/ship.
type ShipTransferRequest struct {
	TrackingInfo string           `json:"tracking_info,omitempty"`
	ActualCost   *decimal.Decimal `json:"actual_cost,omitempty"` // vacío = se usa el estimado
}

// ReceiveItemRequest cantidad recibida de un producto (recepción parcial).
type ReceiveItemRequest struct {
	ProductID        string          `json:"product_id"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// ReceiveTransferRequest body para POST /api/transfers/:id/receive.
// Items vacío = recepción completa de todas las cantidades solicitadas.
type ReceiveTransferRequest struct {
	Items []ReceiveItemRequest `json:"items,omitempty"`
}

// CancelTransferRequest body para POST /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason"`
}

// TransferItemResponse línea de un traslado en respuestas.
type TransferItemResponse struct {
	ID                     string          `json:"id"`
	ProductID              string          `json:"product_id"`
	Quantity               decimal.Decimal `json:"quantity"`
	ReceivedQuantity       decimal.Decimal `json:"received_quantity"`
	UnitCost               decimal.Decimal `json:"unit_cost"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	SourceStockBefore      decimal.Decimal `json:"source_stock_before"`
	SourceStockAfter       decimal.Decimal `json:"source_stock_after"`
	DestinationStockBefore decimal.Decimal `json:"destination_stock_before"`
	DestinationStockAfter  decimal.Decimal `json:"destination_stock_after"`
	ExpiryDate             *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber            string          `json:"batch_number,omitempty"`
}

// TransferResponse traslado completo en respuestas.
type TransferResponse struct {
	ID                    string                 `json:"id"`
	TransferNumber        string                 `json:"transfer_number"`
	Status                string                 `json:"status"`
	Type                  string                 `json:"type"`
	Priority              string                 `json:"priority"`
	SourceBranchID        string                 `json:"source_branch_id"`
	DestinationBranchID   string                 `json:"destination_branch_id"`
	Reason                string                 `json:"reason"`
	Notes                 string                 `json:"notes,omitempty"`
	EstimatedCost         decimal.Decimal        `json:"estimated_cost"`
	ActualCost            decimal.Decimal        `json:"actual_cost"`
	DistanceKM            decimal.Decimal        `json:"distance_km"`
	RequestedBy           string                 `json:"requested_by"`
	RequestedAt           time.Time              `json:"requested_at"`
	ApprovedBy            *string                `json:"approved_by,omitempty"`
	ApprovedAt            *time.Time             `json:"approved_at,omitempty"`
	ShippedBy             *string                `json:"shipped_by,omitempty"`
	ShippedAt             *time.Time             `json:"shipped_at,omitempty"`
	TrackingInfo          string                 `json:"tracking_info,omitempty"`
	ReceivedBy            *string                `json:"received_by,omitempty"`
	ReceivedAt            *time.Time             `json:"received_at,omitempty"`
	CancelledBy           *string                `json:"cancelled_by,omitempty"`
	CancelledAt           *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason          string                 `json:"cancel_reason,omitempty"`
	EstimatedDeliveryDate *time.Time             `json:"estimated_delivery_date,omitempty"`
	Items                 []TransferItemResponse `json:"items"`
}

// StatusHistoryResponse entrada de la bitácora de transiciones.
type StatusHistoryResponse struct {
	ID         string    `json:"id"`
	TransferID string    `json:"transfer_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListTransfersRequest query params para GET /api/transfers.
type ListTransfersRequest struct {
	BranchID string `query:"branch_id"`
	Status   string `query:"status"`
	Type     string `query:"type"`
	Priority string `query:"priority"`
	DateFrom string `query:"date_from"` // YYYY-MM-DD
	DateTo   string `query:"date_to"`   // YYYY-MM-DD
	Search   string `query:"search"`
	SortBy   string `query:"sort_by"`
	SortDesc bool   `query:"sort_desc"`
	PageRequest
}

// TransferListResponse página de traslados.
type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
	Page      PageResponse       `json:"page"`
}

// ActivitySummaryResponse conteos de actividad de traslados.
type ActivitySummaryResponse struct {
	Pending           int    `json:"pending"`
	InTransit         int    `json:"in_transit"`
	CompletedInPeriod int    `json:"completed_in_period"`
	Emergency         int    `json:"emergency"`
	PeriodFrom        string `json:"period_from"`
	PeriodTo          string `json:"period_to"`
}
