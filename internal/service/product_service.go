package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"

	"stockpass/internal/domain"
	"stockpass/internal/qr"
	"stockpass/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrEncoderFailure wraps a QR encoder error; the triggering write is
	// aborted entirely, a product is never persisted without its QR pair.
	ErrEncoderFailure = errors.New("qr encoder failure")
)

// ProductService encapsulates product lifecycle rules
type ProductService struct {
	products repository.ProductRepository
	tx       repository.TxManager
}

func NewProductService(products repository.ProductRepository, tx repository.TxManager) *ProductService {
	return &ProductService{products: products, tx: tx}
}

// CreateInput carries the caller-controlled fields of a new product.
// ProductID is optional; an empty one is generated.
type CreateInput struct {
	ProductID string
	Name      string
	Value     float64
	Stock     int64
}

func (s *ProductService) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	if in.Name == "" || in.Value < 0 || in.Stock < 0 {
		return nil, ErrInvalidInput
	}
	productID := in.ProductID
	if productID == "" {
		productID = strings.ToUpper(uuid.NewString()[:8])
	}

	data, image, err := qr.Encode(in.Name, productID, in.Value)
	if err != nil {
		return nil, errors.Join(ErrEncoderFailure, err)
	}

	now := time.Now().UTC()
	p := domain.Product{
		ID:          uuid.NewString(),
		ProductID:   productID,
		Name:        in.Name,
		Value:       in.Value,
		Stock:       in.Stock,
		Status:      domain.ProductStatusActive,
		QRCodeData:  data,
		QRCodeImage: image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	logger.Infof("created product %s (%s)", p.ProductID, p.Name)
	return &p, nil
}

func (s *ProductService) Get(ctx context.Context, productID string) (*domain.Product, error) {
	if productID == "" {
		return nil, ErrInvalidInput
	}
	return s.products.GetByProductID(ctx, productID)
}

// Update applies the patch to the stored product. The QR pair is
// recomputed from the merged view iff name or value is patched.
func (s *ProductService) Update(ctx context.Context, productID string, patch domain.ProductPatch) (*domain.Product, error) {
	if productID == "" {
		return nil, ErrInvalidInput
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, ErrInvalidInput
	}
	if patch.Value != nil && *patch.Value < 0 {
		return nil, ErrInvalidInput
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, ErrInvalidInput
	}
	if patch.PrintedQuantity != nil && *patch.PrintedQuantity < 0 {
		return nil, ErrInvalidInput
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, ErrInvalidInput
	}

	var updated *domain.Product
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Value != nil {
			p.Value = *patch.Value
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if patch.PrintedQuantity != nil {
			p.PrintedQuantity = *patch.PrintedQuantity
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Name != nil || patch.Value != nil {
			data, image, err := qr.Encode(p.Name, p.ProductID, p.Value)
			if err != nil {
				return errors.Join(ErrEncoderFailure, err)
			}
			p.QRCodeData = data
			p.QRCodeImage = image
		}
		p.UpdatedAt = time.Now().UTC()
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the product only. Tickets referencing it are kept.
func (s *ProductService) Delete(ctx context.Context, productID string) error {
	if productID == "" {
		return ErrInvalidInput
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	logger.Infof("deleted product %s", productID)
	return nil
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, f)
}
