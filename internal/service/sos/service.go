package sos

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/email"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	"github.com/freee021022/onconet/internal/service/audit"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

const resourceName = "SOS contract"

type Store interface {
	repository.SosContractRepository
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetMedicalRecord(ctx context.Context, id int64, scope authz.Scope) (*model.MedicalRecord, error)
}

// Service manages emergency sharing contracts between a patient and a
// professional. Single-contract operations are scoped to the caller as a
// participant; the patient owns the terms and the doctor uses them.
type Service struct {
	store   Store
	mailer  email.Service
	auditor *audit.Service
	now     func() time.Time
}

func NewService(store Store, mailer email.Service, auditor *audit.Service) *Service {
	return &Service{
		store:   store,
		mailer:  mailer,
		auditor: auditor,
		now:     time.Now,
	}
}

// ListContracts lists the contracts of one participant, who must be the
// caller.
func (s *Service) ListContracts(ctx context.Context, actorID int64, filter model.SosContractFilter) ([]*model.SosContract, error) {
	var participant int64
	switch {
	case filter.PatientID != 0:
		participant = filter.PatientID
		filter.DoctorID = 0
	case filter.DoctorID != 0:
		participant = filter.DoctorID
	default:
		return nil, apperrors.NewBadRequest("Patient ID or Doctor ID required", nil)
	}
	if !authz.Owner(actorID).Permits(participant) {
		return nil, apperrors.Forbidden("Access denied")
	}

	contracts, err := s.store.ListSosContracts(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return contracts, nil
}

func (s *Service) GetContract(ctx context.Context, actorID, id int64) (*model.SosContract, error) {
	contract, err := s.store.GetSosContract(ctx, id, authz.Owner(actorID))
	if err != nil {
		return nil, mapError(err)
	}
	return contract, nil
}

// CreateContract records a new inactive contract from the calling patient
// to a professional. Every shared record must belong to the patient.
func (s *Service) CreateContract(ctx context.Context, actorID int64, req *model.CreateSosContractRequest) (*model.SosContract, error) {
	patient, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("Authentication required")
		}
		return nil, apperrors.NewInternal(err)
	}
	if patient.UserType != model.UserTypePatient {
		return nil, apperrors.Forbidden("Only patients can create SOS contracts")
	}

	doctor, err := s.store.GetUser(ctx, req.DoctorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternal(err)
	}
	if doctor == nil || !doctor.IsProfessional() {
		return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: "doctorId", Message: "doctor does not exist or is not a professional"})
	}
	if err := s.checkSharedRecords(ctx, actorID, req.SharedRecordIDs); err != nil {
		return nil, err
	}

	contract := req.NewContract(actorID, s.now().UTC())
	if err := s.store.CreateSosContract(ctx, contract); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionCreate, model.AuditResourceSosContract, contract.ID, model.AuditStatusSuccess)

	if err := s.mailer.SendSosContractCreated(ctx, doctor, patient, contract); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("contract_id", contract.ID).Msg("failed to notify doctor of SOS contract")
	}
	return contract, nil
}

// UpdateContract lets the patient change the terms. Setting consent stamps
// or clears the consent date.
func (s *Service) UpdateContract(ctx context.Context, actorID, id int64, update *model.SosContractUpdate) (*model.SosContract, error) {
	if _, err := s.patientContract(ctx, actorID, id, model.AuditActionUpdate); err != nil {
		return nil, err
	}
	if update.SharedRecordIDs != nil {
		if err := s.checkSharedRecords(ctx, actorID, *update.SharedRecordIDs); err != nil {
			return nil, err
		}
	}
	update.ConsentDate = nil
	if update.ConsentGiven != nil && *update.ConsentGiven {
		now := s.now().UTC()
		update.ConsentDate = &now
	}

	contract, err := s.store.UpdateSosContract(ctx, id, authz.Owner(actorID), update)
	if err != nil {
		return nil, mapError(err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionUpdate, model.AuditResourceSosContract, id, model.AuditStatusSuccess)
	return contract, nil
}

// Activate turns the contract on. Only the patient may do so; repeating it
// is a no-op.
func (s *Service) Activate(ctx context.Context, actorID, id int64) (*model.SosContract, error) {
	if _, err := s.patientContract(ctx, actorID, id, model.AuditActionActivate); err != nil {
		return nil, err
	}
	contract, err := s.store.SetSosContractActive(ctx, id, authz.Owner(actorID), true)
	if err != nil {
		return nil, mapError(err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionActivate, model.AuditResourceSosContract, id, model.AuditStatusSuccess)
	return contract, nil
}

// Deactivate turns the contract off. Either participant may do so.
func (s *Service) Deactivate(ctx context.Context, actorID, id int64) (*model.SosContract, error) {
	contract, err := s.store.SetSosContractActive(ctx, id, authz.Owner(actorID), false)
	if err != nil {
		return nil, mapError(err)
	}
	s.auditor.Log(ctx, actorID, model.AuditActionRevoke, model.AuditResourceSosContract, id, model.AuditStatusSuccess)
	return contract, nil
}

// EmergencyAccess returns the patient and the shared records to the
// contract's doctor. The contract must be active, consented to and not
// expired. Shared records deleted since are skipped.
func (s *Service) EmergencyAccess(ctx context.Context, actorID, id int64) (*model.EmergencyAccess, error) {
	contract, err := s.store.GetSosContract(ctx, id, authz.Owner(actorID))
	if err != nil {
		return nil, mapError(err)
	}

	deny := func(msg string) error {
		s.auditor.Log(ctx, actorID, model.AuditActionAccess, model.AuditResourceSosContract, id, model.AuditStatusDenied)
		return apperrors.Forbidden(msg)
	}
	switch {
	case contract.DoctorID != actorID:
		return nil, deny("Only the contract doctor can access shared records")
	case !contract.IsActive:
		return nil, deny("SOS contract is not active")
	case !contract.ConsentGiven:
		return nil, deny("Patient consent has not been given")
	case contract.Expired(s.now()):
		return nil, deny("SOS contract has expired")
	}

	patient, err := s.store.GetUser(ctx, contract.PatientID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	owner := authz.Owner(contract.PatientID)
	records := make([]*model.MedicalRecord, 0, len(contract.SharedRecordIDs))
	for _, recordID := range contract.SharedRecordIDs {
		record, err := s.store.GetMedicalRecord(ctx, recordID, owner)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}
		records = append(records, record)
	}

	s.auditor.Log(ctx, actorID, model.AuditActionAccess, model.AuditResourceSosContract, id, model.AuditStatusSuccess)
	return &model.EmergencyAccess{
		Contract: contract,
		Patient:  patient,
		Records:  records,
	}, nil
}

// patientContract loads a contract the caller participates in and checks
// that the caller is its patient.
func (s *Service) patientContract(ctx context.Context, actorID, id int64, action string) (*model.SosContract, error) {
	contract, err := s.store.GetSosContract(ctx, id, authz.Owner(actorID))
	if err != nil {
		return nil, mapError(err)
	}
	if contract.PatientID != actorID {
		s.auditor.Log(ctx, actorID, action, model.AuditResourceSosContract, id, model.AuditStatusDenied)
		return nil, apperrors.Forbidden("Only the patient can change this contract")
	}
	return contract, nil
}

func (s *Service) checkSharedRecords(ctx context.Context, patientID int64, ids []int64) error {
	owner := authz.Owner(patientID)
	for _, id := range ids {
		_, err := s.store.GetMedicalRecord(ctx, id, owner)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidation(apperrors.FieldViolation{Field: "sharedRecordIds", Message: "record does not belong to the patient"})
		}
		if err != nil {
			return apperrors.NewInternal(err)
		}
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resourceName, err)
	}
	return apperrors.NewInternal(err)
}
