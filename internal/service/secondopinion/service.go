package secondopinion

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/freee021022/onconet/internal/email"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

type Store interface {
	repository.SecondOpinionRepository
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

type Service struct {
	store  Store
	mailer email.Service
}

func NewService(store Store, mailer email.Service) *Service {
	return &Service{store: store, mailer: mailer}
}

func (s *Service) ListRequests(ctx context.Context, filter model.SecondOpinionFilter) ([]*model.SecondOpinionRequest, error) {
	requests, err := s.store.ListSecondOpinionRequests(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return requests, nil
}

func (s *Service) GetRequest(ctx context.Context, id int64) (*model.SecondOpinionRequest, error) {
	req, err := s.store.GetSecondOpinionRequest(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("Request", err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return req, nil
}

// CreateRequest files a pending request from a patient to a professional
// and notifies the doctor. The notification is best effort.
func (s *Service) CreateRequest(ctx context.Context, in *model.CreateSecondOpinionRequest) (*model.SecondOpinionRequest, error) {
	patient, err := s.lookup(ctx, in.PatientID, "patientId", "patient does not exist")
	if err != nil {
		return nil, err
	}
	doctor, err := s.lookup(ctx, in.DoctorID, "doctorId", "doctor does not exist")
	if err != nil {
		return nil, err
	}
	if !doctor.IsProfessional() {
		return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: "doctorId", Message: "user is not a professional"})
	}

	req := &model.SecondOpinionRequest{
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		Diagnosis:     in.Diagnosis,
		Description:   in.Description,
		DocumentLinks: append(pq.StringArray{}, in.DocumentLinks...),
		Status:        model.SecondOpinionPending,
	}
	if err := s.store.CreateSecondOpinionRequest(ctx, req); err != nil {
		return nil, apperrors.NewInternal(err)
	}

	if err := s.mailer.SendSecondOpinionRequested(ctx, doctor, patient, req); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("request_id", req.ID).Msg("failed to notify doctor of second opinion request")
	}
	return req, nil
}

// UpdateStatus moves a request to status. Moves not allowed from the
// current status are rejected as conflicts.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*model.SecondOpinionRequest, error) {
	req, err := s.store.UpdateSecondOpinionRequestStatus(ctx, id, status, model.SecondOpinionSources(status)...)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewNotFound("Request", err)
	case errors.Is(err, repository.ErrInvalidTransition):
		return nil, apperrors.NewConflict("Cannot change request status to "+status, err)
	case err != nil:
		return nil, apperrors.NewInternal(err)
	}
	return req, nil
}

func (s *Service) lookup(ctx context.Context, id int64, field, message string) (*model.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: field, Message: message})
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return user, nil
}
