package postgres

import (
	"context"

	"github.com/lib/pq"

	"github.com/freee021022/onconet/internal/model"
)

func (s *Store) ListPharmacies(ctx context.Context, filter model.PharmacyFilter) ([]*model.Pharmacy, error) {
	var c conditions
	if filter.Region != "" {
		c.add("region = $%d", filter.Region)
	}
	if filter.City != "" {
		c.add("LOWER(city) = LOWER($%d)", filter.City)
	}
	if filter.Specialization != "" {
		c.add("$%d = ANY(specializations)", filter.Specialization)
	}

	pharmacies := make([]*model.Pharmacy, 0)
	if err := s.selectAll(ctx, "list_pharmacies", &pharmacies, "SELECT * FROM pharmacies"+c.where()+" ORDER BY id", c.args...); err != nil {
		return nil, err
	}
	return pharmacies, nil
}

func (s *Store) GetPharmacy(ctx context.Context, id int64) (*model.Pharmacy, error) {
	var p model.Pharmacy
	if err := s.get(ctx, "get_pharmacy", &p, `SELECT * FROM pharmacies WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePharmacy(ctx context.Context, pharmacy *model.Pharmacy) error {
	if pharmacy.Specializations == nil {
		pharmacy.Specializations = pq.StringArray{}
	}
	query := `
		INSERT INTO pharmacies (
			name, address, city, region, phone, specializations,
			rating, review_count, image_url, latitude, longitude
		) VALUES (
			:name, :address, :city, :region, :phone, :specializations,
			:rating, :review_count, :image_url, :latitude, :longitude
		)
		RETURNING *
	`
	return s.insert(ctx, "create_pharmacy", query, pharmacy)
}

func (s *Store) UpdatePharmacy(ctx context.Context, id int64, update *model.PharmacyUpdate) (*model.Pharmacy, error) {
	var p model.Pharmacy
	if err := s.update(ctx, "update_pharmacy", &p, "pharmacies", update.Changes(), false, "id = $1", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListTestimonials(ctx context.Context) ([]*model.Testimonial, error) {
	testimonials := make([]*model.Testimonial, 0)
	if err := s.selectAll(ctx, "list_testimonials", &testimonials, `SELECT * FROM testimonials ORDER BY id`); err != nil {
		return nil, err
	}
	return testimonials, nil
}

func (s *Store) CreateTestimonial(ctx context.Context, testimonial *model.Testimonial) error {
	query := `
		INSERT INTO testimonials (name, role, location, content, rating, image_url)
		VALUES (:name, :role, :location, :content, :rating, :image_url)
		RETURNING *
	`
	return s.insert(ctx, "create_testimonial", query, testimonial)
}
