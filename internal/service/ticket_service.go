package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"

	"stockpass/internal/domain"
	"stockpass/internal/repository"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("product is inactive")
	ErrAlreadyRedeemed   = errors.New("ticket already redeemed")
)

// TicketService implements the stock/ticket ledger: issuance decrements
// stock up front, redemption only settles printed_quantity and latches
// the ticket. Stock is never re-checked at redemption time.
type TicketService struct {
	products repository.ProductRepository
	tickets  repository.TicketRepository
	tx       repository.TxManager
}

func NewTicketService(products repository.ProductRepository, tickets repository.TicketRepository, tx repository.TxManager) *TicketService {
	return &TicketService{products: products, tickets: tickets, tx: tx}
}

// Issue creates qty tickets against the product, decrementing stock and
// incrementing printed_quantity atomically. All-or-nothing: on any
// failure no ticket is persisted and stock is untouched.
func (s *TicketService) Issue(ctx context.Context, productID string, qty int64) ([]domain.Ticket, error) {
	if productID == "" || qty <= 0 {
		return nil, ErrInvalidInput
	}

	var created []domain.Ticket
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if p.Status != domain.ProductStatusActive {
			return ErrInvalidState
		}
		if err := s.products.ReserveStock(ctx, productID, qty); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return ErrInsufficientStock
			}
			return err
		}

		now := time.Now().UTC()
		created = make([]domain.Ticket, 0, qty)
		for i := int64(0); i < qty; i++ {
			t := domain.Ticket{
				ID:           uuid.NewString(),
				TicketNumber: uuid.NewString()[:8],
				ProductID:    p.ProductID,
				ProductName:  p.Name,
				ProductValue: p.Value,
				Quantity:     1,
				CreatedAt:    now,
			}
			if err := s.tickets.Create(ctx, &t); err != nil {
				return err
			}
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("issued %d ticket(s) for product %s", qty, productID)
	return created, nil
}

// Redeem flips the one-way redeemed latch and settles the product's
// printed_quantity. A ticket whose product was deleted still redeems;
// only the product-side accounting is skipped.
func (s *TicketService) Redeem(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if ticketID == "" {
		return nil, ErrInvalidInput
	}

	var redeemed *domain.Ticket
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		t, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.IsRedeemed {
			return ErrAlreadyRedeemed
		}

		p, err := s.products.GetByProductID(ctx, t.ProductID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// product gone, ticket-level state is independent
		case err != nil:
			return err
		default:
			if p.Status != domain.ProductStatusActive {
				return ErrInvalidState
			}
			if err := s.products.SettleRedemption(ctx, t.ProductID, t.Quantity); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		t.IsRedeemed = true
		t.RedeemedAt = &now
		if err := s.tickets.Update(ctx, t); err != nil {
			return err
		}
		redeemed = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("redeemed ticket %s (%s)", redeemed.ID, redeemed.TicketNumber)
	return redeemed, nil
}

func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if ticketID == "" {
		return nil, ErrInvalidInput
	}
	return s.tickets.GetByID(ctx, ticketID)
}

func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx)
}

func (s *TicketService) ListByProduct(ctx context.Context, productID string) ([]domain.Ticket, error) {
	if productID == "" {
		return nil, ErrInvalidInput
	}
	return s.tickets.ListByProduct(ctx, productID)
}
