package medical

import (
	"context"
	"errors"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	"github.com/freee021022/onconet/internal/service/audit"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

const resourceName = "Medical record"

// Service exposes a patient's medical records to that patient only. Every
// store call carries the caller's owner scope, so a record id alone never
// reaches another patient's data.
type Service struct {
	repo    repository.MedicalRecordRepository
	auditor *audit.Service
}

func NewService(repo repository.MedicalRecordRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
	}
}

// ListMedicalRecords returns the records of patientID, which must be the
// caller.
func (s *Service) ListMedicalRecords(ctx context.Context, actorID, patientID int64) ([]*model.MedicalRecord, error) {
	scope := authz.Owner(actorID)
	if !scope.Permits(patientID) {
		s.auditor.Log(ctx, actorID, model.AuditActionList, model.AuditResourceMedicalRecord, 0, model.AuditStatusDenied)
		return nil, apperrors.Forbidden("Access denied")
	}

	records, err := s.repo.ListMedicalRecords(ctx, scope)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionList, model.AuditResourceMedicalRecord, 0, model.AuditStatusSuccess)
	return records, nil
}

// GetMedicalRecord reads one record. A record owned by someone else is
// reported as not found.
func (s *Service) GetMedicalRecord(ctx context.Context, actorID, id, patientID int64) (*model.MedicalRecord, error) {
	scope, err := s.scopeFor(ctx, actorID, patientID, model.AuditActionRead, id)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetMedicalRecord(ctx, id, scope)
	if err != nil {
		return nil, s.mapError(ctx, actorID, model.AuditActionRead, id, err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionRead, model.AuditResourceMedicalRecord, id, model.AuditStatusSuccess)
	return record, nil
}

// CreateMedicalRecord stores a record for the caller.
func (s *Service) CreateMedicalRecord(ctx context.Context, actorID int64, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	if !authz.Owner(actorID).Permits(req.PatientID) {
		s.auditor.Log(ctx, actorID, model.AuditActionCreate, model.AuditResourceMedicalRecord, 0, model.AuditStatusDenied)
		return nil, apperrors.Forbidden("Access denied")
	}
	if req.Date == nil || req.Date.IsZero() {
		return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: "date", Message: "date is required"})
	}

	record := req.NewRecord()
	if err := s.repo.CreateMedicalRecord(ctx, record); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionCreate, model.AuditResourceMedicalRecord, record.ID, model.AuditStatusSuccess)
	return record, nil
}

// UpdateMedicalRecord applies a partial update to one of the caller's
// records.
func (s *Service) UpdateMedicalRecord(ctx context.Context, actorID, id int64, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error) {
	scope, err := s.scopeFor(ctx, actorID, req.PatientID, model.AuditActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if req.Date != nil && req.Date.IsZero() {
		return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: "date", Message: "date must not be empty"})
	}

	record, err := s.repo.UpdateMedicalRecord(ctx, id, scope, &req.MedicalRecordUpdate)
	if err != nil {
		return nil, s.mapError(ctx, actorID, model.AuditActionUpdate, id, err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionUpdate, model.AuditResourceMedicalRecord, id, model.AuditStatusSuccess)
	return record, nil
}

// DeleteMedicalRecord removes one of the caller's records.
func (s *Service) DeleteMedicalRecord(ctx context.Context, actorID, id, patientID int64) error {
	scope, err := s.scopeFor(ctx, actorID, patientID, model.AuditActionDelete, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteMedicalRecord(ctx, id, scope); err != nil {
		return s.mapError(ctx, actorID, model.AuditActionDelete, id, err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionDelete, model.AuditResourceMedicalRecord, id, model.AuditStatusSuccess)
	return nil
}

// scopeFor checks that the claimed owner is the caller. Id-addressed
// operations report a mismatch as not found.
func (s *Service) scopeFor(ctx context.Context, actorID, patientID int64, action string, id int64) (authz.Scope, error) {
	scope := authz.Owner(actorID)
	if !scope.Permits(patientID) {
		s.auditor.Log(ctx, actorID, action, model.AuditResourceMedicalRecord, id, model.AuditStatusDenied)
		return authz.Scope{}, apperrors.NewNotFound(resourceName, repository.ErrNotFound)
	}
	return scope, nil
}

func (s *Service) mapError(ctx context.Context, actorID int64, action string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		s.auditor.Log(ctx, actorID, action, model.AuditResourceMedicalRecord, id, model.AuditStatusDenied)
		return apperrors.NewNotFound(resourceName, err)
	}
	return apperrors.NewInternal(err)
}
