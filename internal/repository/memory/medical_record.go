package memory

import (
	"context"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListMedicalRecords(ctx context.Context, scope authz.Scope) ([]*model.MedicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.records, func(r *model.MedicalRecord) bool { return scope.Permits(r.PatientID) }), nil
}

func (s *Store) GetMedicalRecord(ctx context.Context, id int64, scope authz.Scope) (*model.MedicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.scopedRecord(id, scope)
	if r == nil {
		return nil, repository.ErrNotFound
	}
	return clone(r), nil
}

func (s *Store) CreateMedicalRecord(ctx context.Context, record *model.MedicalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record.ID = s.nextID("medical_records")
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records = append(s.records, clone(record))
	return nil
}

func (s *Store) UpdateMedicalRecord(ctx context.Context, id int64, scope authz.Scope, update *model.MedicalRecordUpdate) (*model.MedicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.scopedRecord(id, scope)
	if r == nil {
		return nil, repository.ErrNotFound
	}
	update.Apply(r)
	r.UpdatedAt = s.now()
	return clone(r), nil
}

func (s *Store) DeleteMedicalRecord(ctx context.Context, id int64, scope authz.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == id && scope.Permits(r.PatientID) {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// scopedRecord must be called with the lock held.
func (s *Store) scopedRecord(id int64, scope authz.Scope) *model.MedicalRecord {
	return find(s.records, func(r *model.MedicalRecord) bool {
		return r.ID == id && scope.Permits(r.PatientID)
	})
}
