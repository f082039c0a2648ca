package postgres

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListSecondOpinionRequests(ctx context.Context, filter model.SecondOpinionFilter) ([]*model.SecondOpinionRequest, error) {
	var c conditions
	if filter.PatientID != 0 {
		c.add("patient_id = $%d", filter.PatientID)
	}
	if filter.DoctorID != 0 {
		c.add("doctor_id = $%d", filter.DoctorID)
	}

	requests := make([]*model.SecondOpinionRequest, 0)
	if err := s.selectAll(ctx, "list_second_opinion_requests", &requests, "SELECT * FROM second_opinion_requests"+c.where()+" ORDER BY id", c.args...); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Store) GetSecondOpinionRequest(ctx context.Context, id int64) (*model.SecondOpinionRequest, error) {
	var req model.SecondOpinionRequest
	if err := s.get(ctx, "get_second_opinion_request", &req, `SELECT * FROM second_opinion_requests WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateSecondOpinionRequest ignores req.Status; the column default applies.
func (s *Store) CreateSecondOpinionRequest(ctx context.Context, req *model.SecondOpinionRequest) error {
	if req.DocumentLinks == nil {
		req.DocumentLinks = pq.StringArray{}
	}
	query := `
		INSERT INTO second_opinion_requests (patient_id, doctor_id, diagnosis, description, document_links)
		VALUES (:patient_id, :doctor_id, :diagnosis, :description, :document_links)
		RETURNING *
	`
	return s.insert(ctx, "create_second_opinion_request", query, req)
}

func (s *Store) UpdateSecondOpinionRequestStatus(ctx context.Context, id int64, status string, from ...string) (*model.SecondOpinionRequest, error) {
	var req model.SecondOpinionRequest
	if len(from) == 0 {
		query := `UPDATE second_opinion_requests SET status = $2 WHERE id = $1 RETURNING *`
		if err := s.get(ctx, "update_second_opinion_status", &req, query, id, status); err != nil {
			return nil, err
		}
		return &req, nil
	}

	query := `UPDATE second_opinion_requests SET status = $2 WHERE id = $1 AND status = ANY($3) RETURNING *`
	err := s.get(ctx, "update_second_opinion_status", &req, query, id, status, pq.Array(from))
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// No row matched: either the id is absent or the current status is not
	// an allowed source.
	if _, err := s.GetSecondOpinionRequest(ctx, id); err != nil {
		return nil, err
	}
	return nil, repository.ErrInvalidTransition
}
