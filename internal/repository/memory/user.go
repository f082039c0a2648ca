package memory

import (
	"context"
	"strings"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.ID == id })
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.Username == username })
}

// GetUserByEmail matches case-insensitively, like the unique index in the
// relational store.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) findUser(match func(*model.User) bool) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := find(s.users, match)
	if u == nil {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}

	user.ID = s.nextID("users")
	user.CreatedAt = s.now()
	s.users = append(s.users, clone(user))
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, update *model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := find(s.users, func(u *model.User) bool { return u.ID == id })
	if u == nil {
		return nil, repository.ErrNotFound
	}
	update.Apply(u)
	return clone(u), nil
}

func (s *Store) ListUsers(ctx context.Context, f model.UserFilter) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.users, func(u *model.User) bool {
		if f.UserType != "" && u.UserType != f.UserType {
			return false
		}
		if f.AvailableForSecondOpinion != nil && u.AvailableForSecondOpinion != *f.AvailableForSecondOpinion {
			return false
		}
		return true
	}), nil
}
