package transfer

import (
	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// toTransferResponse mapea el agregado a su DTO de respuesta.
func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	resp := &dto.TransferResponse{
		ID:                    t.ID,
		TransferNumber:        t.TransferNumber,
		Status:                string(t.Status),
		Type:                  string(t.Type),
		Priority:              string(t.Priority),
		SourceBranchID:        t.SourceBranchID,
		DestinationBranchID:   t.DestinationBranchID,
		Reason:                t.Reason,
		Notes:                 t.Notes,
		EstimatedCost:         t.EstimatedCost,
		ActualCost:            t.ActualCost,
		DistanceKM:            t.DistanceKM,
		RequestedBy:           t.RequestedBy,
		RequestedAt:           t.RequestedAt,
		ApprovedBy:            t.ApprovedBy,
		ApprovedAt:            t.ApprovedAt,
		ShippedBy:             t.ShippedBy,
		ShippedAt:             t.ShippedAt,
		TrackingInfo:          t.TrackingInfo,
		ReceivedBy:            t.ReceivedBy,
		ReceivedAt:            t.ReceivedAt,
		CancelledBy:           t.CancelledBy,
		CancelledAt:           t.CancelledAt,
		CancelReason:          t.CancelReason,
		EstimatedDeliveryDate: t.EstimatedDeliveryDate,
	}
	for _, item := range t.Items {
		resp.Items = append(resp.Items, dto.TransferItemResponse{
			ID:                     item.ID,
			ProductID:              item.ProductID,
			Quantity:               item.Quantity,
			ReceivedQuantity:       item.ReceivedQuantity,
			UnitCost:               item.UnitCost,
			TotalCost:              item.TotalCost,
			SourceStockBefore:      item.SourceStockBefore,
			SourceStockAfter:       item.SourceStockAfter,
			DestinationStockBefore: item.DestinationStockBefore,
			DestinationStockAfter:  item.DestinationStockAfter,
			ExpiryDate:             item.ExpiryDate,
			BatchNumber:            item.BatchNumber,
		})
	}
	return resp
}

// toHistoryResponse mapea una entrada de bitácora a su DTO.
func toHistoryResponse(e *entity.StatusHistoryEntry) dto.StatusHistoryResponse {
	return dto.StatusHistoryResponse{
		ID:         e.ID,
		TransferID: e.TransferID,
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		ChangedBy:  e.ChangedBy,
		Reason:     e.Reason,
		CreatedAt:  e.CreatedAt,
	}
}
