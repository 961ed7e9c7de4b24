package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	"github.com/jhoicas/traslados-api/pkg/clock"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// WorkflowUseCase ejecuta las transiciones del ciclo de vida de un traslado:
// aprobar/rechazar, despachar, recibir y cancelar. Cada transición corre
// dentro de una transacción con la fila del traslado bloqueada
// (SELECT FOR UPDATE), así que dos transiciones concurrentes sobre el mismo
// traslado se serializan y la segunda detecta el conflicto de estado.
// Toda transición, sin excepción, agrega una entrada a la bitácora.
type WorkflowUseCase struct {
	txRunner  TxRunner
	userRepo  repository.UserRepository
	authority *ApprovalAuthority
	clk       clock.Clock
	log       *logger.Logger
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	txRunner TxRunner,
	userRepo repository.UserRepository,
	authority *ApprovalAuthority,
	clk clock.Clock,
	log *logger.Logger,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		txRunner:  txRunner,
		userRepo:  userRepo,
		authority: authority,
		clk:       clk,
		log:       log.WithComponent("transfer_workflow"),
	}
}

// actor carga el usuario y sus sucursales accesibles.
func (uc *WorkflowUseCase) actor(userID string) (*entity.User, []string, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrUnauthorized
	}
	branches, err := uc.userRepo.GetAccessibleBranches(userID)
	if err != nil {
		return nil, nil, err
	}
	return user, branches, nil
}

// requireBranchAccess exige acceso a la sucursal origen o destino del
// traslado (admin exento).
func requireBranchAccess(user *entity.User, branches []string, t *entity.Transfer) error {
	if user.Role == entity.RoleAdmin {
		return nil
	}
	if containsBranch(branches, t.SourceBranchID) || containsBranch(branches, t.DestinationBranchID) {
		return nil
	}
	return domain.ErrUnauthorized
}

// Approve aprueba (in.IsApproved=true) o rechaza (false) un traslado
// pendiente. La aprobación re-verifica el stock de cada ítem bajo bloqueo de
// fila y reserva; si un solo ítem no alcanza, la aprobación completa se
// aborta y el traslado queda en pending.
func (uc *WorkflowUseCase) Approve(ctx context.Context, userID, transferID string, in dto.ApproveTransferRequest) (*dto.TransferResponse, error) {
	user, branches, err := uc.actor(userID)
	if err != nil {
		return nil, err
	}
	if !in.IsApproved && in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Transfer
	err = uc.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		productRepo repository.ProductRepository,
		historyRepo repository.StatusHistoryRepository,
		_ repository.InventoryMovementRepository,
	) error {
		t, err := transferRepo.GetForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if err := uc.authority.CanApprove(user, branches, t); err != nil {
			return err
		}
		now := uc.clk.Now()

		if !in.IsApproved {
			if !t.Status.CanTransitionTo(entity.StatusRejected) {
				return domain.ErrStateConflict
			}
			t.Status = entity.StatusRejected
			t.CancelReason = in.Reason
			t.UpdatedAt = now
			if err := transferRepo.Update(t); err != nil {
				return err
			}
			result = t
			return appendHistory(historyRepo, t.ID, entity.StatusPending, entity.StatusRejected, userID, in.Reason, now)
		}

		if !t.Status.CanTransitionTo(entity.StatusApproved) {
			return domain.ErrStateConflict
		}
		if err := reserveItems(t, productRepo, transferRepo); err != nil {
			return err
		}
		t.Status = entity.StatusApproved
		t.ApprovedBy = &userID
		t.ApprovedAt = &now
		t.UpdatedAt = now
		if err := transferRepo.Update(t); err != nil {
			return err
		}
		result = t
		return appendHistory(historyRepo, t.ID, entity.StatusPending, entity.StatusApproved, userID, in.Reason, now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", result.ID).
		Str("transfer_number", result.TransferNumber).
		Str("status", string(result.Status)).
		Str("actor", userID).
		Msg("decisión de aprobación aplicada")
	return toTransferResponse(result), nil
}

// Ship despacha un traslado aprobado: pasa a in_transit sin tocar stock y
// emite un movimiento de inventario de salida (cantidad negativa) por cada
// ítem para los consumidores de auditoría y reportes.
func (uc *WorkflowUseCase) Ship(ctx context.Context, userID, transferID string, in dto.ShipTransferRequest) (*dto.TransferResponse, error) {
	user, branches, err := uc.actor(userID)
	if err != nil {
		return nil, err
	}

	var result *entity.Transfer
	err = uc.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		_ repository.ProductRepository,
		historyRepo repository.StatusHistoryRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		t, err := transferRepo.GetForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if err := requireBranchAccess(user, branches, t); err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(entity.StatusInTransit) {
			return domain.ErrStateConflict
		}
		now := uc.clk.Now()

		t.Status = entity.StatusInTransit
		t.ShippedBy = &userID
		t.ShippedAt = &now
		t.TrackingInfo = in.TrackingInfo
		if in.ActualCost != nil {
			t.ActualCost = *in.ActualCost
		} else {
			t.ActualCost = t.EstimatedCost
		}
		t.UpdatedAt = now
		if err := transferRepo.Update(t); err != nil {
			return err
		}

		// Un registro de salida por ítem (cantidad negativa, sucursal origen)
		for _, item := range t.Items {
			mov := &entity.InventoryMovement{
				ID:         uuid.New().String(),
				TransferID: t.ID,
				ProductID:  item.ProductID,
				BranchID:   t.SourceBranchID,
				Type:       entity.MovementTypeOut,
				Quantity:   item.Quantity.Neg(),
				UnitCost:   item.UnitCost,
				TotalCost:  item.TotalCost.Neg(),
				Date:       now,
				CreatedAt:  now,
				CreatedBy:  userID,
			}
			if err := movementRepo.Create(mov); err != nil {
				return err
			}
		}
		result = t
		return appendHistory(historyRepo, t.ID, entity.StatusApproved, entity.StatusInTransit, userID, in.TrackingInfo, now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", result.ID).
		Str("transfer_number", result.TransferNumber).
		Str("actor", userID).
		Msg("traslado despachado")
	return toTransferResponse(result), nil
}

// Receive confirma la recepción en destino. Admite recepción parcial: la
// cantidad recibida de un ítem puede ser menor que la solicitada; el stock
// destino se incrementa solo por lo recibido. Emite un movimiento de entrada
// por cada ítem con cantidad recibida > 0.
func (uc *WorkflowUseCase) Receive(ctx context.Context, userID, transferID string, in dto.ReceiveTransferRequest) (*dto.TransferResponse, error) {
	user, branches, err := uc.actor(userID)
	if err != nil {
		return nil, err
	}

	var result *entity.Transfer
	err = uc.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		productRepo repository.ProductRepository,
		historyRepo repository.StatusHistoryRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		t, err := transferRepo.GetForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if err := requireBranchAccess(user, branches, t); err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(entity.StatusCompleted) {
			return domain.ErrStateConflict
		}

		received, err := receivedQuantities(t, in.Items)
		if err != nil {
			return err
		}
		if err := commitItems(t, received, productRepo, transferRepo); err != nil {
			return err
		}
		now := uc.clk.Now()

		t.Status = entity.StatusCompleted
		t.ReceivedBy = &userID
		t.ReceivedAt = &now
		t.UpdatedAt = now
		if err := transferRepo.Update(t); err != nil {
			return err
		}

		for _, item := range t.Items {
			if !item.ReceivedQuantity.GreaterThan(decimal.Zero) {
				continue
			}
			mov := &entity.InventoryMovement{
				ID:         uuid.New().String(),
				TransferID: t.ID,
				ProductID:  item.ProductID,
				BranchID:   t.DestinationBranchID,
				Type:       entity.MovementTypeIn,
				Quantity:   item.ReceivedQuantity,
				UnitCost:   item.UnitCost,
				TotalCost:  item.ReceivedQuantity.Mul(item.UnitCost),
				Date:       now,
				CreatedAt:  now,
				CreatedBy:  userID,
			}
			if err := movementRepo.Create(mov); err != nil {
				return err
			}
		}
		result = t
		return appendHistory(historyRepo, t.ID, entity.StatusInTransit, entity.StatusCompleted, userID, "", now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", result.ID).
		Str("transfer_number", result.TransferNumber).
		Str("actor", userID).
		Msg("traslado recibido")
	return toTransferResponse(result), nil
}

// Cancel cancela un traslado que aún lo permite (pending o approved).
// Cancelar un traslado aprobado libera la reserva: el stock origen vuelve
// exactamente a su valor previo.
func (uc *WorkflowUseCase) Cancel(ctx context.Context, userID, transferID string, in dto.CancelTransferRequest) (*dto.TransferResponse, error) {
	user, branches, err := uc.actor(userID)
	if err != nil {
		return nil, err
	}
	if in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Transfer
	err = uc.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		productRepo repository.ProductRepository,
		historyRepo repository.StatusHistoryRepository,
		_ repository.InventoryMovementRepository,
	) error {
		t, err := transferRepo.GetForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if err := requireBranchAccess(user, branches, t); err != nil {
			return err
		}
		if !t.CanBeCancelled() {
			return domain.ErrStateConflict
		}
		from := t.Status
		now := uc.clk.Now()

		if from == entity.StatusApproved {
			if err := releaseItems(t, productRepo); err != nil {
				return err
			}
		}
		t.Status = entity.StatusCancelled
		t.CancelledBy = &userID
		t.CancelledAt = &now
		t.CancelReason = in.Reason
		t.UpdatedAt = now
		if err := transferRepo.Update(t); err != nil {
			return err
		}
		result = t
		return appendHistory(historyRepo, t.ID, from, entity.StatusCancelled, userID, in.Reason, now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", result.ID).
		Str("transfer_number", result.TransferNumber).
		Str("actor", userID).
		Str("reason", in.Reason).
		Msg("traslado cancelado")
	return toTransferResponse(result), nil
}

// receivedQuantities valida y resuelve las cantidades recibidas por producto.
// Acumula las violaciones igual que el validador de admisión.
func receivedQuantities(t *entity.Transfer, items []dto.ReceiveItemRequest) (map[string]decimal.Decimal, error) {
	byProduct := make(map[string]*entity.TransferItem, len(t.Items))
	for _, item := range t.Items {
		byProduct[item.ProductID] = item
	}

	received := make(map[string]decimal.Decimal, len(items))
	var violations []string
	for _, in := range items {
		item, ok := byProduct[in.ProductID]
		if !ok {
			violations = append(violations, fmt.Sprintf("producto %s no pertenece al traslado", in.ProductID))
			continue
		}
		if in.ReceivedQuantity.IsNegative() {
			violations = append(violations, fmt.Sprintf("producto %s: la cantidad recibida no puede ser negativa", in.ProductID))
			continue
		}
		if in.ReceivedQuantity.GreaterThan(item.Quantity) {
			violations = append(violations, fmt.Sprintf(
				"producto %s: la cantidad recibida (%s) excede la solicitada (%s)",
				in.ProductID, in.ReceivedQuantity.String(), item.Quantity.String()))
			continue
		}
		received[in.ProductID] = in.ReceivedQuantity
	}
	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations)
	}
	return received, nil
}

// appendHistory agrega una entrada a la bitácora de transiciones.
func appendHistory(historyRepo repository.StatusHistoryRepository, transferID string, from, to entity.TransferStatus, userID, reason string, at time.Time) error {
	return historyRepo.Append(&entity.StatusHistoryEntry{
		ID:         uuid.New().String(),
		TransferID: transferID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  userID,
		Reason:     reason,
		CreatedAt:  at,
	})
}
