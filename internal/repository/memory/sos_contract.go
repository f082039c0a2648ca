package memory

import (
	"context"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListSosContracts(ctx context.Context, f model.SosContractFilter) ([]*model.SosContract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.contracts, func(c *model.SosContract) bool {
		if f.PatientID != 0 && c.PatientID != f.PatientID {
			return false
		}
		if f.DoctorID != 0 && c.DoctorID != f.DoctorID {
			return false
		}
		return true
	}), nil
}

func (s *Store) GetSosContract(ctx context.Context, id int64, scope authz.Scope) (*model.SosContract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.scopedContract(id, scope)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (s *Store) CreateSosContract(ctx context.Context, contract *model.SosContract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	contract.ID = s.nextID("sos_contracts")
	contract.IsActive = false
	contract.CreatedAt = now
	contract.UpdatedAt = now
	s.contracts = append(s.contracts, clone(contract))
	return nil
}

func (s *Store) UpdateSosContract(ctx context.Context, id int64, scope authz.Scope, update *model.SosContractUpdate) (*model.SosContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.scopedContract(id, scope)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	update.Apply(c)
	c.UpdatedAt = s.now()
	return clone(c), nil
}

func (s *Store) SetSosContractActive(ctx context.Context, id int64, scope authz.Scope, active bool) (*model.SosContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.scopedContract(id, scope)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	c.IsActive = active
	c.UpdatedAt = s.now()
	return clone(c), nil
}

// scopedContract must be called with the lock held.
func (s *Store) scopedContract(id int64, scope authz.Scope) *model.SosContract {
	return find(s.contracts, func(c *model.SosContract) bool {
		return c.ID == id && scope.PermitsAny(c.PatientID, c.DoctorID)
	})
}
