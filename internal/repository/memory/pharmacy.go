package memory

import (
	"context"
	"strings"

	"github.com/lib/pq"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListPharmacies(ctx context.Context, f model.PharmacyFilter) ([]*model.Pharmacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.pharmacies, func(p *model.Pharmacy) bool {
		if f.Region != "" && p.Region != f.Region {
			return false
		}
		if f.City != "" && !strings.EqualFold(p.City, f.City) {
			return false
		}
		if f.Specialization != "" && !p.HasSpecialization(f.Specialization) {
			return false
		}
		return true
	}), nil
}

func (s *Store) GetPharmacy(ctx context.Context, id int64) (*model.Pharmacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := find(s.pharmacies, func(p *model.Pharmacy) bool { return p.ID == id })
	if p == nil {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) CreatePharmacy(ctx context.Context, pharmacy *model.Pharmacy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pharmacy.ID = s.nextID("pharmacies")
	if pharmacy.Specializations == nil {
		pharmacy.Specializations = pq.StringArray{}
	}
	s.pharmacies = append(s.pharmacies, clone(pharmacy))
	return nil
}

func (s *Store) UpdatePharmacy(ctx context.Context, id int64, update *model.PharmacyUpdate) (*model.Pharmacy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := find(s.pharmacies, func(p *model.Pharmacy) bool { return p.ID == id })
	if p == nil {
		return nil, repository.ErrNotFound
	}
	update.Apply(p)
	return clone(p), nil
}

func (s *Store) ListTestimonials(ctx context.Context) ([]*model.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.testimonials, all[model.Testimonial]), nil
}

func (s *Store) CreateTestimonial(ctx context.Context, testimonial *model.Testimonial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	testimonial.ID = s.nextID("testimonials")
	s.testimonials = append(s.testimonials, clone(testimonial))
	return nil
}
