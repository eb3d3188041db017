package repository

import (
	"context"
	"testing"

	"stockpass/internal/domain"
)

func TestMemoryStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{ID: "id-1", ProductID: "P1", Name: "A", Value: 10, Stock: 5, Status: domain.ProductStatusActive}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Create(ctx, &domain.Product{ID: "id-2", ProductID: "P1", Name: "B"}); err != ErrConflict {
		t.Fatalf("expected conflict on duplicate product_id, got %v", err)
	}

	got, err := store.GetByProductID(ctx, "P1")
	if err != nil || got.ProductID != "P1" {
		t.Fatalf("get: %v", err)
	}

	p.Value = 12
	if err := store.Update(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.Delete(ctx, "P1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByProductID(ctx, "P1"); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_ReserveStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{ID: "id-1", ProductID: "P1", Name: "A", Value: 10, Stock: 3, Status: domain.ProductStatusActive}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	if err := store.ReserveStock(ctx, "P1", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	got, _ := store.GetByProductID(ctx, "P1")
	if got.Stock != 1 || got.PrintedQuantity != 2 {
		t.Fatalf("stock=%d printed=%d after reserve", got.Stock, got.PrintedQuantity)
	}

	if err := store.ReserveStock(ctx, "P1", 2); err != ErrInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	got, _ = store.GetByProductID(ctx, "P1")
	if got.Stock != 1 || got.PrintedQuantity != 2 {
		t.Fatalf("failed reserve must not mutate: stock=%d printed=%d", got.Stock, got.PrintedQuantity)
	}

	if err := store.ReserveStock(ctx, "missing", 1); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_SettleRedemption_Floor(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{ID: "id-1", ProductID: "P1", Name: "A", Stock: 0, PrintedQuantity: 1, Status: domain.ProductStatusActive}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}
	if err := store.SettleRedemption(ctx, "P1", 5); err != nil {
		t.Fatalf("settle: %v", err)
	}
	got, _ := store.GetByProductID(ctx, "P1")
	if got.PrintedQuantity != 0 {
		t.Fatalf("printed_quantity floored at zero, got %d", got.PrintedQuantity)
	}
}

func TestMemoryTickets_UniqueNumbers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tickets := NewMemoryTickets(store)

	a := domain.Ticket{ID: "t-1", TicketNumber: "aaaa1111", ProductID: "P1", Quantity: 1}
	if err := tickets.Create(ctx, &a); err != nil {
		t.Fatalf("create: %v", err)
	}
	b := domain.Ticket{ID: "t-2", TicketNumber: "aaaa1111", ProductID: "P1", Quantity: 1}
	if err := tickets.Create(ctx, &b); err != ErrConflict {
		t.Fatalf("expected conflict on duplicate ticket_number, got %v", err)
	}

	got, err := tickets.GetByID(ctx, "t-1")
	if err != nil || got.TicketNumber != "aaaa1111" {
		t.Fatalf("get: %v", err)
	}

	byProduct, _ := tickets.ListByProduct(ctx, "P1")
	if len(byProduct) != 1 {
		t.Fatalf("expected 1 ticket for P1, got %d", len(byProduct))
	}
}

func TestMemoryTx_TransactionalReserve(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tx := NewMemoryTx(store)
	tickets := NewMemoryTickets(store)

	p := domain.Product{ID: "id-1", ProductID: "P1", Name: "A", Value: 10, Stock: 5, Status: domain.ProductStatusActive}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	// emulate atomic issuance: reserve then create the ticket
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.ReserveStock(ctx, "P1", 3); err != nil {
			return err
		}
		return tickets.Create(ctx, &domain.Ticket{ID: "t-1", TicketNumber: "n1", ProductID: "P1", Quantity: 1})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	pp, _ := store.GetByProductID(context.Background(), "P1")
	if pp.Stock != 2 || pp.PrintedQuantity != 3 {
		t.Fatalf("stock=%d printed=%d after tx", pp.Stock, pp.PrintedQuantity)
	}
}

func TestList_StatusFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	add := func(id string, st domain.ProductStatus) {
		p := domain.Product{ID: id, ProductID: id, Name: id, Stock: 1, Status: st}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	add("P1", domain.ProductStatusActive)
	add("P2", domain.ProductStatusInactive)
	add("P3", domain.ProductStatusActive)

	all, _ := store.List(ctx, ProductFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}

	active := domain.ProductStatusActive
	list, _ := store.List(ctx, ProductFilter{Status: &active})
	if len(list) != 2 {
		t.Fatalf("expected 2 active, got %d", len(list))
	}
	for _, p := range list {
		if p.Status != active {
			t.Fatalf("status filter fail")
		}
	}
}
