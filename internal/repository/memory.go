package repository

import (
	"context"
	"sync"
	"time"

	"stockpass/internal/domain"
)

// MemoryStore is the in-memory product store plus the shared state the
// ticket and status wrappers attach to. Used by tests and local runs.
type MemoryStore struct {
	mu            sync.RWMutex
	productsByKey map[string]domain.Product // key: product_id
	ticketsByID   map[string]domain.Ticket
	ticketNumbers map[string]bool
	statusChecks  []domain.StatusCheck
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productsByKey: make(map[string]domain.Product),
		ticketsByID:   make(map[string]domain.Ticket),
		ticketNumbers: make(map[string]bool),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByKey[p.ProductID]; ok {
		return ErrConflict
	}
	m.productsByKey[p.ProductID] = *p
	return nil
}

func (m *MemoryStore) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByKey[productID]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByKey[p.ProductID]; !ok {
		return ErrNotFound
	}
	m.productsByKey[p.ProductID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, productID string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByKey[productID]; !ok {
		return ErrNotFound
	}
	delete(m.productsByKey, productID)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByKey {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) ReserveStock(ctx context.Context, productID string, qty int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.productsByKey[productID]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	p.PrintedQuantity += qty
	p.UpdatedAt = time.Now().UTC()
	m.productsByKey[productID] = p
	return nil
}

func (m *MemoryStore) SettleRedemption(ctx context.Context, productID string, qty int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.productsByKey[productID]
	if !ok {
		return ErrNotFound
	}
	p.PrintedQuantity -= qty
	if p.PrintedQuantity < 0 {
		p.PrintedQuantity = 0
	}
	p.UpdatedAt = time.Now().UTC()
	m.productsByKey[productID] = p
	return nil
}

// TicketRepository implementation on wrapper type
type MemoryTickets struct{ store *MemoryStore }

func NewMemoryTickets(store *MemoryStore) *MemoryTickets { return &MemoryTickets{store: store} }

var _ TicketRepository = (*MemoryTickets)(nil)

func (mt *MemoryTickets) Create(ctx context.Context, t *domain.Ticket) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	if _, ok := mt.store.ticketsByID[t.ID]; ok {
		return ErrConflict
	}
	if mt.store.ticketNumbers[t.TicketNumber] {
		return ErrConflict
	}
	mt.store.ticketsByID[t.ID] = *t
	mt.store.ticketNumbers[t.TicketNumber] = true
	return nil
}

func (mt *MemoryTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	t, ok := mt.store.ticketsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (mt *MemoryTickets) Update(ctx context.Context, t *domain.Ticket) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	if _, ok := mt.store.ticketsByID[t.ID]; !ok {
		return ErrNotFound
	}
	mt.store.ticketsByID[t.ID] = *t
	return nil
}

func (mt *MemoryTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	out := make([]domain.Ticket, 0, len(mt.store.ticketsByID))
	for _, t := range mt.store.ticketsByID {
		out = append(out, t)
	}
	return out, nil
}

func (mt *MemoryTickets) ListByProduct(ctx context.Context, productID string) ([]domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	out := make([]domain.Ticket, 0)
	for _, t := range mt.store.ticketsByID {
		if t.ProductID == productID {
			out = append(out, t)
		}
	}
	return out, nil
}

// StatusRepository implementation on wrapper type
type MemoryStatus struct{ store *MemoryStore }

func NewMemoryStatus(store *MemoryStore) *MemoryStatus { return &MemoryStatus{store: store} }

var _ StatusRepository = (*MemoryStatus)(nil)

func (ms *MemoryStatus) Create(ctx context.Context, s *domain.StatusCheck) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	ms.store.statusChecks = append(ms.store.statusChecks, *s)
	return nil
}

func (ms *MemoryStatus) List(ctx context.Context) ([]domain.StatusCheck, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	out := make([]domain.StatusCheck, len(ms.store.statusChecks))
	copy(out, ms.store.statusChecks)
	return out, nil
}

// Tx manager using the write lock to emulate a transaction boundary.
// The context is marked so repositories skip their internal locks.
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
