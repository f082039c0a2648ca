package user

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx/types"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("User", err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return user, nil
}

// UpdateUser changes the profile of id. Only the user may edit their own
// profile.
func (s *Service) UpdateUser(ctx context.Context, actorID, id int64, update *model.UserUpdate) (*model.User, error) {
	if actorID != id {
		return nil, apperrors.Forbidden("You can only update your own profile")
	}
	user, err := s.repo.UpdateUser(ctx, id, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("User", err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return user, nil
}

// ListDoctors returns professional users, optionally only those that accept
// second-opinion requests.
func (s *Service) ListDoctors(ctx context.Context, secondOpinionOnly bool) ([]*model.User, error) {
	filter := model.UserFilter{UserType: model.UserTypeProfessional}
	if secondOpinionOnly {
		available := true
		filter.AvailableForSecondOpinion = &available
	}
	users, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return users, nil
}

// GetDoctorReviews returns the reviews stored on a professional's profile.
// Users that are not professionals are reported as missing doctors.
func (s *Service) GetDoctorReviews(ctx context.Context, id int64) (types.JSONText, error) {
	user, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("Doctor", err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if user.UserType != model.UserTypeProfessional {
		return nil, apperrors.NewNotFound("Doctor", nil)
	}
	if len(user.Reviews) == 0 {
		return types.JSONText("[]"), nil
	}
	return user.Reviews, nil
}
