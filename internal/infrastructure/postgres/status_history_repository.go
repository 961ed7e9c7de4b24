package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var _ repository.StatusHistoryRepository = (*StatusHistoryRepo)(nil)

// StatusHistoryRepo bitácora de transiciones sobre PostgreSQL (usable con pool o tx).
type StatusHistoryRepo struct {
	q Querier
}

// NewStatusHistoryRepository construye el adaptador de bitácora. Pasar pool o tx (Querier).
func NewStatusHistoryRepository(q Querier) *StatusHistoryRepo {
	return &StatusHistoryRepo{q: q}
}

// Append persiste una entrada. La tabla no admite UPDATE ni DELETE desde la app.
func (r *StatusHistoryRepo) Append(e *entity.StatusHistoryEntry) error {
	query := `
		INSERT INTO transfer_status_history (id, transfer_id, from_status, to_status, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.TransferID, nullIfEmpty(string(e.FromStatus)), e.ToStatus,
		e.ChangedBy, nullIfEmpty(e.Reason), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

// ListByTransfer devuelve la historia en orden cronológico de inserción.
func (r *StatusHistoryRepo) ListByTransfer(transferID string) ([]*entity.StatusHistoryEntry, error) {
	query := `
		SELECT id, transfer_id, from_status, to_status, changed_by, reason, created_at
		FROM transfer_status_history
		WHERE transfer_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var list []*entity.StatusHistoryEntry
	for rows.Next() {
		var e entity.StatusHistoryEntry
		var fromStatus, reason *string
		if err := rows.Scan(&e.ID, &e.TransferID, &fromStatus, &e.ToStatus, &e.ChangedBy, &reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		if fromStatus != nil {
			e.FromStatus = entity.TransferStatus(*fromStatus)
		}
		if reason != nil {
			e.Reason = *reason
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
