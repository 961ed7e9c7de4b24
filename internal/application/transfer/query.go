package transfer

import (
	"time"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	"github.com/jhoicas/traslados-api/pkg/clock"
)

// Campos ordenables del listado. Todo lo demás se rechaza como entrada
// inválida (la lista blanca evita inyección por sort_by).
var sortableFields = map[string]bool{
	"requested_at":    true,
	"transfer_number": true,
	"status":          true,
	"priority":        true,
	"estimated_cost":  true,
}

// summaryPeriodDays período del conteo de completados en el resumen.
const summaryPeriodDays = 30

// QueryUseCase lecturas del motor de traslados: detalle, listado filtrado,
// bitácora e indicadores de actividad. Todas las lecturas respetan el alcance
// de sucursales del actor (admin ve todo).
type QueryUseCase struct {
	transferRepo repository.TransferRepository
	historyRepo  repository.StatusHistoryRepository
	userRepo     repository.UserRepository
	clk          clock.Clock
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	transferRepo repository.TransferRepository,
	historyRepo repository.StatusHistoryRepository,
	userRepo repository.UserRepository,
	clk clock.Clock,
) *QueryUseCase {
	return &QueryUseCase{
		transferRepo: transferRepo,
		historyRepo:  historyRepo,
		userRepo:     userRepo,
		clk:          clk,
	}
}

// scope resuelve el alcance del actor: admin ve todo (global=true); el resto
// queda acotado a sus sucursales asignadas.
func (uc *QueryUseCase) scope(userID string) (global bool, branches []string, err error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return false, nil, err
	}
	if user == nil {
		return false, nil, domain.ErrUnauthorized
	}
	if user.Role == entity.RoleAdmin {
		return true, nil, nil
	}
	branches, err = uc.userRepo.GetAccessibleBranches(userID)
	if err != nil {
		return false, nil, err
	}
	return false, branches, nil
}

// GetByID devuelve el traslado completo si el actor tiene alcance sobre
// alguna de sus dos sucursales.
func (uc *QueryUseCase) GetByID(userID, transferID string) (*dto.TransferResponse, error) {
	global, branches, err := uc.scope(userID)
	if err != nil {
		return nil, err
	}
	t, err := uc.transferRepo.GetByID(transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !global && !containsBranch(branches, t.SourceBranchID) && !containsBranch(branches, t.DestinationBranchID) {
		return nil, domain.ErrUnauthorized
	}
	return toTransferResponse(t), nil
}

// List devuelve la página de traslados que cumplen los filtros, acotada al
// alcance del actor.
func (uc *QueryUseCase) List(userID string, in dto.ListTransfersRequest) (*dto.TransferListResponse, error) {
	global, branches, err := uc.scope(userID)
	if err != nil {
		return nil, err
	}

	f := repository.TransferFilter{
		BranchID: in.BranchID,
		Search:   in.Search,
		SortDesc: in.SortDesc,
	}
	if in.Status != "" {
		status := entity.TransferStatus(in.Status)
		if !status.IsValid() {
			return nil, domain.ErrInvalidInput
		}
		f.Status = status
	}
	if in.Type != "" {
		ttype := entity.TransferType(in.Type)
		if !ttype.IsValid() {
			return nil, domain.ErrInvalidInput
		}
		f.Type = ttype
	}
	if in.Priority != "" {
		priority := entity.TransferPriority(in.Priority)
		if !priority.IsValid() {
			return nil, domain.ErrInvalidInput
		}
		f.Priority = priority
	}
	if in.DateFrom != "" {
		from, err := time.Parse("2006-01-02", in.DateFrom)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		f.DateFrom = &from
	}
	if in.DateTo != "" {
		to, err := time.Parse("2006-01-02", in.DateTo)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		// inclusivo hasta el fin del día
		end := to.AddDate(0, 0, 1)
		f.DateTo = &end
	}
	if in.SortBy != "" {
		if !sortableFields[in.SortBy] {
			return nil, domain.ErrInvalidInput
		}
		f.SortBy = in.SortBy
	}

	if !global {
		if in.BranchID != "" && !containsBranch(branches, in.BranchID) {
			return nil, domain.ErrUnauthorized
		}
		f.BranchIDs = branches
		if len(branches) == 0 {
			// Sin sucursales asignadas: nada que listar
			return &dto.TransferListResponse{Transfers: []dto.TransferResponse{}, Page: dto.PageResponse{}}, nil
		}
	}

	in.DefaultPage()
	f.Limit = in.Limit
	f.Offset = in.Offset

	transfers, total, err := uc.transferRepo.List(f)
	if err != nil {
		return nil, err
	}
	resp := &dto.TransferListResponse{
		Transfers: make([]dto.TransferResponse, 0, len(transfers)),
		Page:      dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, t := range transfers {
		resp.Transfers = append(resp.Transfers, *toTransferResponse(t))
	}
	return resp, nil
}

// History devuelve la bitácora completa de un traslado en orden cronológico.
func (uc *QueryUseCase) History(userID, transferID string) ([]dto.StatusHistoryResponse, error) {
	// El chequeo de alcance es el mismo que para el detalle
	if _, err := uc.GetByID(userID, transferID); err != nil {
		return nil, err
	}
	entries, err := uc.historyRepo.ListByTransfer(transferID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, toHistoryResponse(e))
	}
	return result, nil
}

// Summary devuelve los indicadores de actividad: pendientes, en tránsito,
// completados en los últimos 30 días y emergencias, acotados al alcance del
// actor o a una sucursal específica.
func (uc *QueryUseCase) Summary(userID, branchID string) (*dto.ActivitySummaryResponse, error) {
	global, branches, err := uc.scope(userID)
	if err != nil {
		return nil, err
	}
	if !global {
		if branchID != "" && !containsBranch(branches, branchID) {
			return nil, domain.ErrUnauthorized
		}
		if len(branches) == 0 {
			return &dto.ActivitySummaryResponse{}, nil
		}
	}

	now := uc.clk.Now()
	from := now.AddDate(0, 0, -summaryPeriodDays)

	scopeBranches := branches
	if global {
		scopeBranches = nil
	}
	summary, err := uc.transferRepo.Summary(scopeBranches, branchID, from, now)
	if err != nil {
		return nil, err
	}
	return &dto.ActivitySummaryResponse{
		Pending:           summary.Pending,
		InTransit:         summary.InTransit,
		CompletedInPeriod: summary.CompletedInPeriod,
		Emergency:         summary.Emergency,
		PeriodFrom:        from.Format("2006-01-02"),
		PeriodTo:          now.Format("2006-01-02"),
	}, nil
}
