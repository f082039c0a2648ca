package postgres

import (
	"context"

	"github.com/freee021022/onconet/internal/model"
)

func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.get(ctx, "get_user", &user, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.get(ctx, "get_user_by_username", &user, `SELECT * FROM users WHERE username = $1`, username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.get(ctx, "get_user_by_email", &user, `SELECT * FROM users WHERE LOWER(email) = LOWER($1)`, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser relies on the users_username_key and users_email_key unique
// indexes, so two concurrent registrations cannot both succeed.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			username, email, password, full_name, user_type, is_verified,
			birth_date, specialization, hospital, license_number, studio_address,
			booking_calendar, contacts, reviews, verification_document,
			available_for_second_opinion, calendar_settings, pharmacy_name,
			address, pharmacy_offers, google_maps_link, city, region, phone,
			bio, profile_image
		) VALUES (
			:username, :email, :password, :full_name, :user_type, :is_verified,
			:birth_date, :specialization, :hospital, :license_number, :studio_address,
			:booking_calendar, :contacts, :reviews, :verification_document,
			:available_for_second_opinion, :calendar_settings, :pharmacy_name,
			:address, :pharmacy_offers, :google_maps_link, :city, :region, :phone,
			:bio, :profile_image
		)
		RETURNING *
	`
	return s.insert(ctx, "create_user", query, user)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, update *model.UserUpdate) (*model.User, error) {
	var user model.User
	if err := s.update(ctx, "update_user", &user, "users", update.Changes(), false, "id = $1", id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	var c conditions
	if filter.UserType != "" {
		c.add("user_type = $%d", filter.UserType)
	}
	if filter.AvailableForSecondOpinion != nil {
		c.add("available_for_second_opinion = $%d", *filter.AvailableForSecondOpinion)
	}

	users := make([]*model.User, 0)
	if err := s.selectAll(ctx, "list_users", &users, "SELECT * FROM users"+c.where()+" ORDER BY id", c.args...); err != nil {
		return nil, err
	}
	return users, nil
}
