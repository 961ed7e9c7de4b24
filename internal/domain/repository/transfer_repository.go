package repository

import (
	"time"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// TransferFilter criterios de listado de traslados. BranchIDs acota el
// alcance a las sucursales accesibles del actor (origen o destino); BranchID
// filtra por una sucursal específica. Search busca por número de traslado o
// motivo. SortBy se valida contra una lista blanca en el adaptador.
type TransferFilter struct {
	BranchIDs []string
	BranchID  string
	Status    entity.TransferStatus
	Type      entity.TransferType
	Priority  entity.TransferPriority
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int
}

// ActivitySummary conteos de actividad de traslados para un alcance de
// sucursales y un período.
type ActivitySummary struct {
	Pending           int
	InTransit         int
	CompletedInPeriod int
	Emergency         int
}

// TransferRepository persistencia del agregado Transfer (cabecera + ítems).
type TransferRepository interface {
	// Create persiste cabecera e ítems. Devuelve domain.ErrDuplicate si el
	// número de traslado ya existe (colisión de secuencia concurrente).
	Create(t *entity.Transfer) error
	// GetByID carga el agregado completo; nil si no existe.
	GetByID(id string) (*entity.Transfer, error)
	// GetForUpdate carga el agregado y bloquea la fila de cabecera
	// (SELECT FOR UPDATE) para serializar transiciones concurrentes.
	GetForUpdate(id string) (*entity.Transfer, error)
	// Update persiste los campos mutables de la cabecera.
	Update(t *entity.Transfer) error
	// UpdateItem persiste snapshots y cantidad recibida de un ítem.
	UpdateItem(item *entity.TransferItem) error
	// MaxSequenceForDate devuelve la mayor secuencia emitida ese día (0 si ninguna).
	MaxSequenceForDate(day time.Time) (int, error)
	// List devuelve la página filtrada y el total sin paginar.
	List(f TransferFilter) ([]*entity.Transfer, int, error)
	// Summary conteos de actividad. completedFrom/completedTo acotan el
	// período de los traslados completados.
	Summary(branchIDs []string, branchID string, completedFrom, completedTo time.Time) (*ActivitySummary, error)
}

// StatusHistoryRepository bitácora append-only de transiciones.
type StatusHistoryRepository interface {
	Append(e *entity.StatusHistoryEntry) error
	// ListByTransfer devuelve la historia en orden cronológico de inserción.
	ListByTransfer(transferID string) ([]*entity.StatusHistoryEntry, error)
}
