package postgres

import (
	"context"

	"github.com/lib/pq"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

// participantClause matches a contract whose patient or doctor is $2.
const participantClause = "id = $1 AND (patient_id = $2 OR doctor_id = $2)"

func (s *Store) ListSosContracts(ctx context.Context, filter model.SosContractFilter) ([]*model.SosContract, error) {
	var c conditions
	if filter.PatientID != 0 {
		c.add("patient_id = $%d", filter.PatientID)
	}
	if filter.DoctorID != 0 {
		c.add("doctor_id = $%d", filter.DoctorID)
	}

	contracts := make([]*model.SosContract, 0)
	if err := s.selectAll(ctx, "list_sos_contracts", &contracts, "SELECT * FROM sos_contracts"+c.where()+" ORDER BY id", c.args...); err != nil {
		return nil, err
	}
	return contracts, nil
}

func (s *Store) GetSosContract(ctx context.Context, id int64, scope authz.Scope) (*model.SosContract, error) {
	if !scope.Valid() {
		return nil, repository.ErrNotFound
	}
	var c model.SosContract
	if err := s.get(ctx, "get_sos_contract", &c, "SELECT * FROM sos_contracts WHERE "+participantClause, id, scope.OwnerID); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateSosContract always inserts an inactive contract.
func (s *Store) CreateSosContract(ctx context.Context, contract *model.SosContract) error {
	if contract.SharedRecordIDs == nil {
		contract.SharedRecordIDs = pq.Int64Array{}
	}
	query := `
		INSERT INTO sos_contracts (
			patient_id, doctor_id, contract_type, emergency_type, access_level,
			shared_record_ids, is_active, expires_at, consent_given, consent_date,
			emergency_notes
		) VALUES (
			:patient_id, :doctor_id, :contract_type, :emergency_type, :access_level,
			:shared_record_ids, FALSE, :expires_at, :consent_given, :consent_date,
			:emergency_notes
		)
		RETURNING *
	`
	return s.insert(ctx, "create_sos_contract", query, contract)
}

func (s *Store) UpdateSosContract(ctx context.Context, id int64, scope authz.Scope, update *model.SosContractUpdate) (*model.SosContract, error) {
	if !scope.Valid() {
		return nil, repository.ErrNotFound
	}
	var c model.SosContract
	if err := s.update(ctx, "update_sos_contract", &c, "sos_contracts", update.Changes(), true, participantClause, id, scope.OwnerID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SetSosContractActive(ctx context.Context, id int64, scope authz.Scope, active bool) (*model.SosContract, error) {
	if !scope.Valid() {
		return nil, repository.ErrNotFound
	}
	changes := []model.Change{{Column: "is_active", Value: active}}
	var c model.SosContract
	if err := s.update(ctx, "set_sos_contract_active", &c, "sos_contracts", changes, true, participantClause, id, scope.OwnerID); err != nil {
		return nil, err
	}
	return &c, nil
}
