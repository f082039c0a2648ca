package memory

import (
	"context"

	"github.com/lib/pq"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListSecondOpinionRequests(ctx context.Context, f model.SecondOpinionFilter) ([]*model.SecondOpinionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.secondOpinions, func(r *model.SecondOpinionRequest) bool {
		if f.PatientID != 0 && r.PatientID != f.PatientID {
			return false
		}
		if f.DoctorID != 0 && r.DoctorID != f.DoctorID {
			return false
		}
		return true
	}), nil
}

func (s *Store) GetSecondOpinionRequest(ctx context.Context, id int64) (*model.SecondOpinionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := find(s.secondOpinions, func(r *model.SecondOpinionRequest) bool { return r.ID == id })
	if r == nil {
		return nil, repository.ErrNotFound
	}
	return clone(r), nil
}

func (s *Store) CreateSecondOpinionRequest(ctx context.Context, req *model.SecondOpinionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = s.nextID("second_opinion_requests")
	req.Status = model.SecondOpinionPending
	req.CreatedAt = s.now()
	if req.DocumentLinks == nil {
		req.DocumentLinks = pq.StringArray{}
	}
	s.secondOpinions = append(s.secondOpinions, clone(req))
	return nil
}

func (s *Store) UpdateSecondOpinionRequestStatus(ctx context.Context, id int64, status string, from ...string) (*model.SecondOpinionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := find(s.secondOpinions, func(r *model.SecondOpinionRequest) bool { return r.ID == id })
	if r == nil {
		return nil, repository.ErrNotFound
	}
	if len(from) > 0 && !contains(from, r.Status) {
		return nil, repository.ErrInvalidTransition
	}
	r.Status = status
	return clone(r), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
