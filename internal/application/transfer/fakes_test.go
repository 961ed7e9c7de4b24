package transfer_test

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Infraestructura en memoria para los tests de casos de uso. El txRunner
// simula la atomicidad real: toma un snapshot del estado antes de ejecutar el
// callback y lo restaura completo si el callback falla, igual que un ROLLBACK.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	transfers    map[string]*entity.Transfer
	takenNumbers map[string]bool // índice único de transfer_number
	products     map[string]*entity.Product
	branches     map[string]*entity.Branch
	users        map[string]*entity.User
	userBranches map[string][]string
	history      []*entity.StatusHistoryEntry
	movements    []*entity.InventoryMovement
}

func newMemStore() *memStore {
	return &memStore{
		transfers:    make(map[string]*entity.Transfer),
		takenNumbers: make(map[string]bool),
		products:     make(map[string]*entity.Product),
		branches:     make(map[string]*entity.Branch),
		users:        make(map[string]*entity.User),
		userBranches: make(map[string][]string),
	}
}

func copyTransfer(t *entity.Transfer) *entity.Transfer {
	c := *t
	c.Items = make([]*entity.TransferItem, len(t.Items))
	for i, item := range t.Items {
		itemCopy := *item
		c.Items[i] = &itemCopy
	}
	return &c
}

// snapshot copia el estado mutable del store.
func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for id, t := range s.transfers {
		snap.transfers[id] = copyTransfer(t)
	}
	for n := range s.takenNumbers {
		snap.takenNumbers[n] = true
	}
	for id, p := range s.products {
		pc := *p
		snap.products[id] = &pc
	}
	snap.branches = s.branches
	snap.users = s.users
	snap.userBranches = s.userBranches
	snap.history = append([]*entity.StatusHistoryEntry(nil), s.history...)
	snap.movements = append([]*entity.InventoryMovement(nil), s.movements...)
	return snap
}

// restore vuelve al estado del snapshot (rollback).
func (s *memStore) restore(snap *memStore) {
	s.transfers = snap.transfers
	s.takenNumbers = snap.takenNumbers
	s.products = snap.products
	s.history = snap.history
	s.movements = snap.movements
}

// ── TransferRepository ────────────────────────────────────────────────────────

type memTransferRepo struct{ s *memStore }

func (r *memTransferRepo) Create(t *entity.Transfer) error {
	if r.s.takenNumbers[t.TransferNumber] {
		return domain.ErrDuplicate
	}
	r.s.takenNumbers[t.TransferNumber] = true
	r.s.transfers[t.ID] = t
	return nil
}

func (r *memTransferRepo) GetByID(id string) (*entity.Transfer, error) {
	return r.s.transfers[id], nil
}

func (r *memTransferRepo) GetForUpdate(id string) (*entity.Transfer, error) {
	return r.s.transfers[id], nil
}

func (r *memTransferRepo) Update(t *entity.Transfer) error {
	if _, ok := r.s.transfers[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.transfers[t.ID] = t
	return nil
}

func (r *memTransferRepo) UpdateItem(item *entity.TransferItem) error {
	t, ok := r.s.transfers[item.TransferID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, existing := range t.Items {
		if existing.ID == item.ID {
			t.Items[i] = item
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memTransferRepo) MaxSequenceForDate(day time.Time) (int, error) {
	prefix := "TF-" + day.Format("20060102") + "-"
	max := 0
	for _, t := range r.s.transfers {
		if !strings.HasPrefix(t.TransferNumber, prefix) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(t.TransferNumber, prefix))
		if err == nil && seq > max {
			max = seq
		}
	}
	return max, nil
}

func (r *memTransferRepo) List(f repository.TransferFilter) ([]*entity.Transfer, int, error) {
	var matched []*entity.Transfer
	for _, t := range r.s.transfers {
		if len(f.BranchIDs) > 0 && !inList(f.BranchIDs, t.SourceBranchID) && !inList(f.BranchIDs, t.DestinationBranchID) {
			continue
		}
		if f.BranchID != "" && t.SourceBranchID != f.BranchID && t.DestinationBranchID != f.BranchID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.DateFrom != nil && t.RequestedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && !t.RequestedAt.Before(*f.DateTo) {
			continue
		}
		if f.Search != "" && !strings.Contains(t.TransferNumber, f.Search) && !strings.Contains(t.Reason, f.Search) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if f.SortDesc || f.SortBy == "" {
			return matched[i].RequestedAt.After(matched[j].RequestedAt)
		}
		return matched[i].RequestedAt.Before(matched[j].RequestedAt)
	})
	total := len(matched)
	if f.Offset > len(matched) {
		return nil, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *memTransferRepo) Summary(branchIDs []string, branchID string, completedFrom, completedTo time.Time) (*repository.ActivitySummary, error) {
	var s repository.ActivitySummary
	for _, t := range r.s.transfers {
		if len(branchIDs) > 0 && !inList(branchIDs, t.SourceBranchID) && !inList(branchIDs, t.DestinationBranchID) {
			continue
		}
		if branchID != "" && t.SourceBranchID != branchID && t.DestinationBranchID != branchID {
			continue
		}
		switch t.Status {
		case entity.StatusPending:
			s.Pending++
		case entity.StatusInTransit:
			s.InTransit++
		case entity.StatusCompleted:
			if t.ReceivedAt != nil && !t.ReceivedAt.Before(completedFrom) && !t.ReceivedAt.After(completedTo) {
				s.CompletedInPeriod++
			}
		}
		if t.Priority == entity.PriorityEmergency &&
			(t.Status == entity.StatusPending || t.Status == entity.StatusApproved || t.Status == entity.StatusInTransit) {
			s.Emergency++
		}
	}
	return &s, nil
}

func inList(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ── StatusHistoryRepository ───────────────────────────────────────────────────

type memHistoryRepo struct{ s *memStore }

func (r *memHistoryRepo) Append(e *entity.StatusHistoryEntry) error {
	r.s.history = append(r.s.history, e)
	return nil
}

func (r *memHistoryRepo) ListByTransfer(transferID string) ([]*entity.StatusHistoryEntry, error) {
	var out []*entity.StatusHistoryEntry
	for _, e := range r.s.history {
		if e.TransferID == transferID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error)      { return r.s.products[id], nil }
func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) { return r.s.products[id], nil }

func (r *memProductRepo) AdjustStock(id string, delta decimal.Decimal) error {
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = p.Stock.Add(delta)
	return nil
}

// ── BranchRepository / UserRepository / InventoryMovementRepository ──────────

type memBranchRepo struct{ s *memStore }

func (r *memBranchRepo) GetByID(id string) (*entity.Branch, error) { return r.s.branches[id], nil }

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByID(id string) (*entity.User, error) { return r.s.users[id], nil }

func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.s.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetAccessibleBranches(userID string) ([]string, error) {
	return r.s.userBranches[userID], nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.InventoryMovement) error {
	r.s.movements = append(r.s.movements, m)
	return nil
}

func (r *memMovementRepo) ListByTransfer(transferID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.TransferID == transferID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	productRepo repository.ProductRepository,
	historyRepo repository.StatusHistoryRepository,
	movementRepo repository.InventoryMovementRepository,
) error) error {
	snap := r.s.snapshot()
	err := fn(&memTransferRepo{r.s}, &memProductRepo{r.s}, &memHistoryRepo{r.s}, &memMovementRepo{r.s})
	if err != nil {
		r.s.restore(snap)
	}
	return err
}

// ── Reloj fijo ────────────────────────────────────────────────────────────────

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time         { return c.now }
func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test con datos semilla
// ──────────────────────────────────────────────────────────────────────────────

const (
	branchMedellin = "suc-medellin"
	branchBogota   = "suc-bogota"
	branchCali     = "suc-cali"
	branchInactiva = "suc-inactiva"

	productCafe     = "prod-cafe"
	productAzucar   = "prod-azucar"
	productPesado   = "prod-pesado"
	productInactivo = "prod-inactivo"

	userAdmin = "user-admin"
	userGG    = "user-gg"    // gerente_general
	userGS    = "user-gs"    // gerente_sucursal con acceso a medellín y bogotá
	userAjeno = "user-ajeno" // gerente_sucursal de otra sucursal
)

type testEnv struct {
	store     *memStore
	clk       *fixedClock
	create    *transfer.CreateTransferUseCase
	workflow  *transfer.WorkflowUseCase
	query     *transfer.QueryUseCase
	validator *transfer.RequestValidator
	authority *transfer.ApprovalAuthority
	policy    transfer.ApprovalPolicy
}

func newTestEnv() *testEnv {
	store := newMemStore()
	clk := &fixedClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}

	store.branches[branchMedellin] = &entity.Branch{ID: branchMedellin, Name: "Sucursal Medellín", Province: "Antioquia", City: "Medellín", IsActive: true}
	store.branches[branchBogota] = &entity.Branch{ID: branchBogota, Name: "Sucursal Bogotá", Province: "Cundinamarca", City: "Bogotá", IsActive: true}
	store.branches[branchCali] = &entity.Branch{ID: branchCali, Name: "Sucursal Cali", Province: "Valle del Cauca", City: "Cali", IsActive: true}
	store.branches[branchInactiva] = &entity.Branch{ID: branchInactiva, Name: "Sucursal Cerrada", Province: "Antioquia", City: "Medellín", IsActive: false}

	store.products[productCafe] = &entity.Product{
		ID: productCafe, SKU: "CAFE-500", Name: "Café 500g", IsActive: true,
		Cost: decimal.NewFromInt(10000), WeightKG: decimal.RequireFromString("0.5"), Stock: decimal.NewFromInt(30),
	}
	store.products[productAzucar] = &entity.Product{
		ID: productAzucar, SKU: "AZUC-1K", Name: "Azúcar 1kg", IsActive: true,
		Cost: decimal.NewFromInt(4000), WeightKG: decimal.NewFromInt(1), Stock: decimal.NewFromInt(11),
	}
	store.products[productPesado] = &entity.Product{
		ID: productPesado, SKU: "ELEC-TV", Name: "Televisor 50\"", IsActive: true,
		Cost: decimal.NewFromInt(100000), WeightKG: decimal.NewFromInt(10), Stock: decimal.NewFromInt(100),
	}
	store.products[productInactivo] = &entity.Product{
		ID: productInactivo, SKU: "DESC-01", Name: "Descontinuado", IsActive: false,
		Cost: decimal.NewFromInt(1000), WeightKG: decimal.NewFromInt(1), Stock: decimal.NewFromInt(5),
	}

	store.users[userAdmin] = &entity.User{ID: userAdmin, Email: "admin@traslados.co", Role: entity.RoleAdmin, Status: "active"}
	store.users[userGG] = &entity.User{ID: userGG, Email: "gg@traslados.co", Role: entity.RoleGerenteGeneral, Status: "active"}
	store.users[userGS] = &entity.User{ID: userGS, Email: "gs@traslados.co", Role: entity.RoleGerenteSucursal, Status: "active"}
	store.users[userAjeno] = &entity.User{ID: userAjeno, Email: "ajeno@traslados.co", Role: entity.RoleGerenteSucursal, Status: "active"}
	store.userBranches[userGG] = []string{branchMedellin, branchBogota}
	store.userBranches[userGS] = []string{branchMedellin, branchBogota}
	store.userBranches[userAjeno] = []string{branchCali}

	policy := transfer.ApprovalPolicy{
		ManagerApprovalThreshold:      decimal.NewFromInt(5000000),
		EmergencyAutoApproveThreshold: decimal.NewFromInt(500000),
	}
	estimator := transfer.EstimatorConfig{
		RatePerKMKG: decimal.RequireFromString("12.5"),
		MinimumCost: decimal.NewFromInt(25000),
	}

	txRunner := &memTxRunner{store}
	transferRepo := &memTransferRepo{store}
	productRepo := &memProductRepo{store}
	branchRepo := &memBranchRepo{store}
	userRepo := &memUserRepo{store}
	historyRepo := &memHistoryRepo{store}

	validator := transfer.NewRequestValidator(branchRepo, productRepo, userRepo, clk)
	authority := transfer.NewApprovalAuthority(policy)
	log := logger.Nop()

	return &testEnv{
		store:     store,
		clk:       clk,
		create:    transfer.NewCreateTransferUseCase(txRunner, validator, authority, estimator, clk, log),
		workflow:  transfer.NewWorkflowUseCase(txRunner, userRepo, authority, clk, log),
		query:     transfer.NewQueryUseCase(transferRepo, historyRepo, userRepo, clk),
		validator: validator,
		authority: authority,
		policy:    policy,
	}
}

func (e *testEnv) stockOf(productID string) decimal.Decimal {
	return e.store.products[productID].Stock
}

func (e *testEnv) historyOf(transferID string) []*entity.StatusHistoryEntry {
	var out []*entity.StatusHistoryEntry
	for _, h := range e.store.history {
		if h.TransferID == transferID {
			out = append(out, h)
		}
	}
	return out
}

func (e *testEnv) movementsOf(transferID string) []*entity.InventoryMovement {
	var out []*entity.InventoryMovement
	for _, m := range e.store.movements {
		if m.TransferID == transferID {
			out = append(out, m)
		}
	}
	return out
}
