package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, transfer_number, status, type, priority,
	source_branch_id, destination_branch_id, reason, notes,
	estimated_cost, actual_cost, distance_km,
	requested_by, requested_at, approved_by, approved_at,
	shipped_by, shipped_at, tracking_info, received_by, received_at,
	cancelled_by, cancelled_at, cancel_reason, estimated_delivery_date,
	created_at, updated_at`

const transferItemColumns = `id, transfer_id, product_id, quantity, received_quantity,
	unit_cost, total_cost,
	source_stock_before, source_stock_after,
	destination_stock_before, destination_stock_after,
	expiry_date, batch_number`

// TransferRepo implementación de TransferRepository sobre PostgreSQL
// (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste cabecera e ítems. Devuelve domain.ErrDuplicate si el número
// de traslado ya existe (constraint único sobre transfer_number).
func (r *TransferRepo) Create(t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.TransferNumber, t.Status, t.Type, t.Priority,
		t.SourceBranchID, t.DestinationBranchID, t.Reason, nullIfEmpty(t.Notes),
		t.EstimatedCost, t.ActualCost, t.DistanceKM,
		t.RequestedBy, t.RequestedAt, t.ApprovedBy, t.ApprovedAt,
		t.ShippedBy, t.ShippedAt, nullIfEmpty(t.TrackingInfo), t.ReceivedBy, t.ReceivedAt,
		t.CancelledBy, t.CancelledAt, nullIfEmpty(t.CancelReason), t.EstimatedDeliveryDate,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transfer: %w", err)
	}

	itemQuery := `
		INSERT INTO transfer_items (` + transferItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, item := range t.Items {
		_, err := r.q.Exec(context.Background(), itemQuery,
			item.ID, item.TransferID, item.ProductID, item.Quantity, item.ReceivedQuantity,
			item.UnitCost, item.TotalCost,
			item.SourceStockBefore, item.SourceStockAfter,
			item.DestinationStockBefore, item.DestinationStockAfter,
			item.ExpiryDate, nullIfEmpty(item.BatchNumber),
		)
		if err != nil {
			return fmt.Errorf("create transfer item: %w", err)
		}
	}
	return nil
}

// GetByID carga el agregado completo (cabecera + ítems); nil si no existe.
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	return r.getOne(query, id)
}

// GetForUpdate carga el agregado bloqueando la fila de cabecera
// (SELECT FOR UPDATE) para serializar transiciones concurrentes.
func (r *TransferRepo) GetForUpdate(id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id)
}

func (r *TransferRepo) getOne(query, id string) (*entity.Transfer, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadItems(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) loadItems(t *entity.Transfer) error {
	query := `SELECT ` + transferItemColumns + `
		FROM transfer_items WHERE transfer_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, t.ID)
	if err != nil {
		return fmt.Errorf("load transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanTransferItem(rows)
		if err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		t.Items = append(t.Items, item)
	}
	return rows.Err()
}

// Update persiste los campos mutables de la cabecera.
func (r *TransferRepo) Update(t *entity.Transfer) error {
	query := `
		UPDATE transfers SET
			status = $2, actual_cost = $3,
			approved_by = $4, approved_at = $5,
			shipped_by = $6, shipped_at = $7, tracking_info = $8,
			received_by = $9, received_at = $10,
			cancelled_by = $11, cancelled_at = $12, cancel_reason = $13,
			updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		t.ID, t.Status, t.ActualCost,
		t.ApprovedBy, t.ApprovedAt,
		t.ShippedBy, t.ShippedAt, nullIfEmpty(t.TrackingInfo),
		t.ReceivedBy, t.ReceivedAt,
		t.CancelledBy, t.CancelledAt, nullIfEmpty(t.CancelReason),
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItem persiste snapshots y cantidad recibida de un ítem.
func (r *TransferRepo) UpdateItem(item *entity.TransferItem) error {
	query := `
		UPDATE transfer_items SET
			received_quantity = $2,
			source_stock_before = $3, source_stock_after = $4,
			destination_stock_before = $5, destination_stock_after = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, item.ReceivedQuantity,
		item.SourceStockBefore, item.SourceStockAfter,
		item.DestinationStockBefore, item.DestinationStockAfter,
	)
	if err != nil {
		return fmt.Errorf("update transfer item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaxSequenceForDate devuelve la mayor secuencia emitida para números de ese
// día (0 si ninguna). El sufijo NNNN del número es la secuencia.
func (r *TransferRepo) MaxSequenceForDate(day time.Time) (int, error) {
	prefix := "TF-" + day.Format("20060102") + "-%"
	query := `
		SELECT COALESCE(MAX(CAST(RIGHT(transfer_number, 4) AS INTEGER)), 0)
		FROM transfers WHERE transfer_number LIKE $1`
	var max int
	if err := r.q.QueryRow(context.Background(), query, prefix).Scan(&max); err != nil {
		return 0, fmt.Errorf("max sequence for date: %w", err)
	}
	return max, nil
}

// List devuelve la página de traslados que cumplen el filtro y el total sin
// paginar. SortBy llega validado contra la lista blanca del caso de uso.
func (r *TransferRepo) List(f repository.TransferFilter) ([]*entity.Transfer, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1

	if len(f.BranchIDs) > 0 {
		where += fmt.Sprintf(" AND (source_branch_id = ANY($%d) OR destination_branch_id = ANY($%d))", pos, pos)
		args = append(args, f.BranchIDs)
		pos++
	}
	if f.BranchID != "" {
		where += fmt.Sprintf(" AND (source_branch_id = $%d OR destination_branch_id = $%d)", pos, pos)
		args = append(args, f.BranchID)
		pos++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.Priority != "" {
		where += fmt.Sprintf(" AND priority = $%d", pos)
		args = append(args, f.Priority)
		pos++
	}
	if f.DateFrom != nil {
		where += fmt.Sprintf(" AND requested_at >= $%d", pos)
		args = append(args, *f.DateFrom)
		pos++
	}
	if f.DateTo != nil {
		where += fmt.Sprintf(" AND requested_at < $%d", pos)
		args = append(args, *f.DateTo)
		pos++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (transfer_number ILIKE $%d OR reason ILIKE $%d)", pos, pos)
		args = append(args, "%"+f.Search+"%")
		pos++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM transfers` + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "requested_at"
	}
	direction := "ASC"
	if f.SortDesc || f.SortBy == "" {
		direction = "DESC"
	}
	query := `SELECT ` + transferColumns + ` FROM transfers` + where +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortBy, direction, pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, t := range list {
		if err := r.loadItems(t); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// Summary conteos de actividad: pendientes y en tránsito vigentes, completados
// en el período y emergencias vigentes, acotados al alcance de sucursales.
func (r *TransferRepo) Summary(branchIDs []string, branchID string, completedFrom, completedTo time.Time) (*repository.ActivitySummary, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if len(branchIDs) > 0 {
		where += fmt.Sprintf(" AND (source_branch_id = ANY($%d) OR destination_branch_id = ANY($%d))", pos, pos)
		args = append(args, branchIDs)
		pos++
	}
	if branchID != "" {
		where += fmt.Sprintf(" AND (source_branch_id = $%d OR destination_branch_id = $%d)", pos, pos)
		args = append(args, branchID)
		pos++
	}
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'in_transit'),
			COUNT(*) FILTER (WHERE status = 'completed' AND received_at >= $%d AND received_at <= $%d),
			COUNT(*) FILTER (WHERE priority = 'emergency' AND status IN ('pending', 'approved', 'in_transit'))
		FROM transfers`+where, pos, pos+1)
	args = append(args, completedFrom, completedTo)

	var s repository.ActivitySummary
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&s.Pending, &s.InTransit, &s.CompletedInPeriod, &s.Emergency,
	)
	if err != nil {
		return nil, fmt.Errorf("transfer summary: %w", err)
	}
	return &s, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var notes, trackingInfo, cancelReason *string
	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.Status, &t.Type, &t.Priority,
		&t.SourceBranchID, &t.DestinationBranchID, &t.Reason, &notes,
		&t.EstimatedCost, &t.ActualCost, &t.DistanceKM,
		&t.RequestedBy, &t.RequestedAt, &t.ApprovedBy, &t.ApprovedAt,
		&t.ShippedBy, &t.ShippedAt, &trackingInfo, &t.ReceivedBy, &t.ReceivedAt,
		&t.CancelledBy, &t.CancelledAt, &cancelReason, &t.EstimatedDeliveryDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		t.Notes = *notes
	}
	if trackingInfo != nil {
		t.TrackingInfo = *trackingInfo
	}
	if cancelReason != nil {
		t.CancelReason = *cancelReason
	}
	return &t, nil
}

func scanTransferItem(row pgx.Row) (*entity.TransferItem, error) {
	var item entity.TransferItem
	var batchNumber *string
	err := row.Scan(
		&item.ID, &item.TransferID, &item.ProductID, &item.Quantity, &item.ReceivedQuantity,
		&item.UnitCost, &item.TotalCost,
		&item.SourceStockBefore, &item.SourceStockAfter,
		&item.DestinationStockBefore, &item.DestinationStockAfter,
		&item.ExpiryDate, &batchNumber,
	)
	if err != nil {
		return nil, err
	}
	if batchNumber != nil {
		item.BatchNumber = *batchNumber
	}
	return &item, nil
}
