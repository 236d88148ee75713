package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// RegisterRequest captures worker intake data. PIN is optional; without one
// the worker cannot log in until an operator assigns it.
type RegisterRequest struct {
	Name              string
	ExternalID        string
	Role              string
	Site              string
	CompanyName       string
	CompanyExternalID string
	Phone             string
	PIN               string
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Worker, error) {
	if req.Name == "" || req.ExternalID == "" {
		return nil, fmt.Errorf("worker registration requires name and external id")
	}
	w := &Worker{
		ID:                uuid.NewString(),
		Name:              req.Name,
		ExternalID:        req.ExternalID,
		Role:              req.Role,
		Site:              req.Site,
		CompanyName:       req.CompanyName,
		CompanyExternalID: req.CompanyExternalID,
		Phone:             req.Phone,
		PIN:               req.PIN,
		CreatedAt:         time.Now(),
	}
	if err := s.store.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Worker, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Worker, error) {
	return s.store.List(ctx)
}
