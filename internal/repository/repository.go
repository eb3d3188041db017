package repository

import (
	"context"
	"errors"

	"stockpass/internal/domain"
)

// ErrNotFound is returned when the referenced entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on a duplicate unique key (product_id, ticket_number)
var ErrConflict = errors.New("already exists")

// ErrInsufficientStock is returned when a conditional stock decrement
// would drive stock negative
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductFilter narrows product listings
type ProductFilter struct {
	Status *domain.ProductStatus
}

// ProductRepository keys products by their human-facing product_id
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByProductID(ctx context.Context, productID string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)

	// ReserveStock atomically runs "stock -= qty, printed_quantity += qty
	// where stock >= qty" for one product. Two concurrent reservations must
	// never both pass the check against the same stale stock value.
	ReserveStock(ctx context.Context, productID string, qty int64) error

	// SettleRedemption decrements printed_quantity by qty, floored at zero.
	SettleRedemption(ctx context.Context, productID string, qty int64) error
}

// TicketRepository stores issued tickets; tickets are never deleted
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, t *domain.Ticket) error
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Ticket, error)
}

// StatusRepository stores heartbeat records, append-only
type StatusRepository interface {
	Create(ctx context.Context, s *domain.StatusCheck) error
	List(ctx context.Context) ([]domain.StatusCheck, error)
}

// TxManager runs fn with the atomicity of a single transaction.
// In-memory it is a global write lock, for gorm a DB transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
