package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/pkg/clock"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// EstimatorConfig parámetros del estimador de costo (desde configuración).
type EstimatorConfig struct {
	RatePerKMKG decimal.Decimal
	MinimumCost decimal.Decimal
}

// CreateTransferUseCase admite solicitudes de traslado: validación, cálculo
// de costo y ETA, numeración con reintento ante colisión y persistencia
// transaccional de cabecera, ítems y entrada de historia. Las emergencias
// por debajo del umbral se auto-aprueban en la misma transacción (reserva
// incluida), con el solicitante como aprobador.
type CreateTransferUseCase struct {
	txRunner  TxRunner
	validator *RequestValidator
	authority *ApprovalAuthority
	estimator EstimatorConfig
	clk       clock.Clock
	log       *logger.Logger
}

// NewCreateTransferUseCase construye el caso de uso.
func NewCreateTransferUseCase(
	txRunner TxRunner,
	validator *RequestValidator,
	authority *ApprovalAuthority,
	estimator EstimatorConfig,
	clk clock.Clock,
	log *logger.Logger,
) *CreateTransferUseCase {
	return &CreateTransferUseCase{
		txRunner:  txRunner,
		validator: validator,
		authority: authority,
		estimator: estimator,
		clk:       clk,
		log:       log.WithComponent("transfer_create"),
	}
}

// Create admite una solicitud estándar (o la variante indicada en in.Type).
func (uc *CreateTransferUseCase) Create(ctx context.Context, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	ttype := entity.TypeStandard
	if in.Type != "" {
		ttype = entity.TransferType(in.Type)
		if !ttype.IsValid() {
			return nil, domain.ErrInvalidInput
		}
	}
	priority := entity.PriorityNormal
	if in.Priority != "" {
		priority = entity.TransferPriority(in.Priority)
		if !priority.IsValid() {
			return nil, domain.ErrInvalidInput
		}
	}

	validated, err := uc.validator.ValidateCreate(userID, in)
	if err != nil {
		return nil, err
	}

	now := uc.clk.Now()
	distanceKM := domaintransfer.DistanceKM(validated.Source.Province, validated.Destination.Province)

	t := &entity.Transfer{
		ID:                  uuid.New().String(),
		Status:              entity.StatusPending,
		Type:                ttype,
		Priority:            priority,
		SourceBranchID:      in.SourceBranchID,
		DestinationBranchID: in.DestinationBranchID,
		Reason:              in.Reason,
		Notes:               in.Notes,
		DistanceKM:          decimal.NewFromInt(int64(distanceKM)),
		RequestedBy:         userID,
		RequestedAt:         now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	totalWeight := decimal.Zero
	for _, itemIn := range in.Items {
		product := validated.Products[itemIn.ProductID]
		item := &entity.TransferItem{
			ID:          uuid.New().String(),
			TransferID:  t.ID,
			ProductID:   itemIn.ProductID,
			Quantity:    itemIn.Quantity,
			UnitCost:    product.Cost,
			TotalCost:   itemIn.Quantity.Mul(product.Cost),
			ExpiryDate:  itemIn.ExpiryDate,
			BatchNumber: itemIn.BatchNumber,
		}
		t.Items = append(t.Items, item)
		totalWeight = totalWeight.Add(itemIn.Quantity.Mul(product.WeightKG))
	}

	t.EstimatedCost = domaintransfer.EstimateCost(distanceKM, totalWeight, uc.estimator.RatePerKMKG, uc.estimator.MinimumCost)
	eta := domaintransfer.EstimateDelivery(now, priority, distanceKM)
	t.EstimatedDeliveryDate = &eta

	autoApprove := uc.authority.Policy().AutoApprovable(t)

	if err := uc.persistWithRetry(ctx, t, userID, autoApprove); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("transfer_number", t.TransferNumber).
		Str("status", string(t.Status)).
		Str("source_branch", t.SourceBranchID).
		Str("destination_branch", t.DestinationBranchID).
		Str("requested_by", userID).
		Bool("auto_approved", autoApprove).
		Msg("traslado creado")

	return toTransferResponse(t), nil
}

// CreateBulk admite una solicitud de tipo bulk (carga masiva entre sucursales).
func (uc *CreateTransferUseCase) CreateBulk(ctx context.Context, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	in.Type = string(entity.TypeBulk)
	return uc.Create(ctx, userID, in)
}

// CreateEmergency admite una solicitud de emergencia: tipo y prioridad
// emergency. Si el valor queda por debajo del umbral configurado, sale
// auto-aprobada (aprobador = solicitante).
func (uc *CreateTransferUseCase) CreateEmergency(ctx context.Context, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	in.Type = string(entity.TypeEmergency)
	in.Priority = string(entity.PriorityEmergency)
	return uc.Create(ctx, userID, in)
}

// persistWithRetry asigna número y persiste el agregado. Si el insert choca
// con un número ya emitido (concurrencia en la misma fecha), reintenta con la
// siguiente secuencia.
func (uc *CreateTransferUseCase) persistWithRetry(ctx context.Context, t *entity.Transfer, userID string, autoApprove bool) error {
	day := t.RequestedAt
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		err := uc.txRunner.Run(ctx, func(
			transferRepo repository.TransferRepository,
			productRepo repository.ProductRepository,
			historyRepo repository.StatusHistoryRepository,
			_ repository.InventoryMovementRepository,
		) error {
			lastSeq, err := transferRepo.MaxSequenceForDate(day)
			if err != nil {
				return err
			}
			t.TransferNumber = FormatTransferNumber(day, lastSeq+1+attempt)
			if err := transferRepo.Create(t); err != nil {
				return err
			}
			if err := appendHistory(historyRepo, t.ID, "", entity.StatusPending, userID, "solicitud de traslado creada", t.RequestedAt); err != nil {
				return err
			}
			if !autoApprove {
				return nil
			}
			// Auto-aprobación de emergencia: reserva + transición en la misma tx
			if err := reserveItems(t, productRepo, transferRepo); err != nil {
				return err
			}
			now := t.RequestedAt
			t.Status = entity.StatusApproved
			t.ApprovedBy = &userID
			t.ApprovedAt = &now
			t.UpdatedAt = now
			if err := transferRepo.Update(t); err != nil {
				return err
			}
			return appendHistory(historyRepo, t.ID, entity.StatusPending, entity.StatusApproved, userID, "auto-aprobación de emergencia bajo umbral", now)
		})
		if errors.Is(err, domain.ErrDuplicate) {
			// Otro proceso tomó la secuencia: reintentar con la siguiente
			continue
		}
		return err
	}
	return fmt.Errorf("asignar número de traslado tras %d intentos: %w", maxNumberAttempts, domain.ErrDuplicate)
}
