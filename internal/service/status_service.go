package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stockpass/internal/domain"
	"stockpass/internal/repository"
)

// StatusService records client heartbeats. Append-only.
type StatusService struct {
	checks repository.StatusRepository
}

func NewStatusService(checks repository.StatusRepository) *StatusService {
	return &StatusService{checks: checks}
}

func (s *StatusService) Record(ctx context.Context, clientName string) (*domain.StatusCheck, error) {
	if clientName == "" {
		return nil, ErrInvalidInput
	}
	check := domain.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.checks.Create(ctx, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

func (s *StatusService) List(ctx context.Context) ([]domain.StatusCheck, error) {
	return s.checks.List(ctx)
}
