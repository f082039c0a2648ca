package pharmacy

import (
	"context"
	"errors"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

type Store interface {
	repository.PharmacyRepository
	repository.TestimonialRepository
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListPharmacies(ctx context.Context, filter model.PharmacyFilter) ([]*model.Pharmacy, error) {
	pharmacies, err := s.store.ListPharmacies(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return pharmacies, nil
}

func (s *Service) GetPharmacy(ctx context.Context, id int64) (*model.Pharmacy, error) {
	p, err := s.store.GetPharmacy(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("Pharmacy", err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return p, nil
}

func (s *Service) ListTestimonials(ctx context.Context) ([]*model.Testimonial, error) {
	testimonials, err := s.store.ListTestimonials(ctx)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return testimonials, nil
}
