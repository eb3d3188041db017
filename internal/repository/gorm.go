package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"stockpass/internal/domain"
)

// gormTxKey carries the transaction handle through the context so the
// repositories join an enclosing WithTransaction automatically.
type gormTxKey struct{}

func dbFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return base.WithContext(ctx)
}

// GormStore is the persistent product store
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ ProductRepository = (*GormStore)(nil)

// AutoMigrate creates or updates the three tables
func (g *GormStore) AutoMigrate() error {
	return g.db.AutoMigrate(&domain.Product{}, &domain.Ticket{}, &domain.StatusCheck{})
}

func (g *GormStore) Create(ctx context.Context, p *domain.Product) error {
	var count int64
	db := dbFrom(ctx, g.db)
	if err := db.Model(&domain.Product{}).Where("product_id = ?", p.ProductID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	return db.Create(p).Error
}

func (g *GormStore) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	err := dbFrom(ctx, g.db).Where("product_id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *GormStore) Update(ctx context.Context, p *domain.Product) error {
	res := dbFrom(ctx, g.db).Model(&domain.Product{}).Where("product_id = ?", p.ProductID).
		Select("*").Omit("id", "product_id", "created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) Delete(ctx context.Context, productID string) error {
	res := dbFrom(ctx, g.db).Where("product_id = ?", productID).Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	q := dbFrom(ctx, g.db).Model(&domain.Product{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var out []domain.Product
	if err := q.Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ReserveStock is a single conditional UPDATE: the WHERE clause rejects
// overdraw, so concurrent reservations serialize on the row and at most
// floor(stock/qty) of them can succeed.
func (g *GormStore) ReserveStock(ctx context.Context, productID string, qty int64) error {
	res := dbFrom(ctx, g.db).Model(&domain.Product{}).
		Where("product_id = ? AND stock >= ?", productID, qty).
		Updates(map[string]interface{}{
			"stock":            gorm.Expr("stock - ?", qty),
			"printed_quantity": gorm.Expr("printed_quantity + ?", qty),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// distinguish a missing product from an overdrawn one
		if _, err := g.GetByProductID(ctx, productID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (g *GormStore) SettleRedemption(ctx context.Context, productID string, qty int64) error {
	res := dbFrom(ctx, g.db).Model(&domain.Product{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"printed_quantity": gorm.Expr("GREATEST(printed_quantity - ?, 0)", qty),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormTickets is the persistent ticket store
type GormTickets struct{ db *gorm.DB }

func NewGormTickets(db *gorm.DB) *GormTickets { return &GormTickets{db: db} }

var _ TicketRepository = (*GormTickets)(nil)

func (g *GormTickets) Create(ctx context.Context, t *domain.Ticket) error {
	return dbFrom(ctx, g.db).Create(t).Error
}

func (g *GormTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var t domain.Ticket
	err := dbFrom(ctx, g.db).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (g *GormTickets) Update(ctx context.Context, t *domain.Ticket) error {
	res := dbFrom(ctx, g.db).Model(&domain.Ticket{}).Where("id = ?", t.ID).
		Select("*").Omit("id", "ticket_number", "created_at").Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	if err := dbFrom(ctx, g.db).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GormTickets) ListByProduct(ctx context.Context, productID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	if err := dbFrom(ctx, g.db).Where("product_id = ?", productID).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GormStatus is the persistent heartbeat store
type GormStatus struct{ db *gorm.DB }

func NewGormStatus(db *gorm.DB) *GormStatus { return &GormStatus{db: db} }

var _ StatusRepository = (*GormStatus)(nil)

func (g *GormStatus) Create(ctx context.Context, s *domain.StatusCheck) error {
	return dbFrom(ctx, g.db).Create(s).Error
}

func (g *GormStatus) List(ctx context.Context) ([]domain.StatusCheck, error) {
	var out []domain.StatusCheck
	if err := dbFrom(ctx, g.db).Order("timestamp").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GormTx runs fn inside a database transaction; the tx handle rides the
// context so the repositories above pick it up.
type GormTx struct{ db *gorm.DB }

func NewGormTx(db *gorm.DB) *GormTx { return &GormTx{db: db} }

var _ TxManager = (*GormTx)(nil)

func (g *GormTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}
