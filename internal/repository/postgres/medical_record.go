package postgres

import (
	"context"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

// Every statement below filters on patient_id as well as id so that a
// record is invisible outside its owner's scope.

func (s *Store) ListMedicalRecords(ctx context.Context, scope authz.Scope) ([]*model.MedicalRecord, error) {
	records := make([]*model.MedicalRecord, 0)
	if !scope.Valid() {
		return records, nil
	}
	if err := s.selectAll(ctx, "list_medical_records", &records, `SELECT * FROM medical_records WHERE patient_id = $1 ORDER BY id`, scope.OwnerID); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) GetMedicalRecord(ctx context.Context, id int64, scope authz.Scope) (*model.MedicalRecord, error) {
	if !scope.Valid() {
		return nil, repository.ErrNotFound
	}
	var r model.MedicalRecord
	if err := s.get(ctx, "get_medical_record", &r, `SELECT * FROM medical_records WHERE id = $1 AND patient_id = $2`, id, scope.OwnerID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateMedicalRecord(ctx context.Context, record *model.MedicalRecord) error {
	if record.Documents == nil {
		record.Documents = pq.StringArray{}
	}
	if len(record.Medications) == 0 {
		record.Medications = types.JSONText("[]")
	}
	query := `
		INSERT INTO medical_records (
			patient_id, record_type, title, description, date, doctor_name,
			hospital_name, medications, documents, is_private
		) VALUES (
			:patient_id, :record_type, :title, :description, :date, :doctor_name,
			:hospital_name, :medications, :documents, :is_private
		)
		RETURNING *
	`
	return s.insert(ctx, "create_medical_record", query, record)
}

func (s *Store) UpdateMedicalRecord(ctx context.Context, id int64, scope authz.Scope, update *model.MedicalRecordUpdate) (*model.MedicalRecord, error) {
	if !scope.Valid() {
		return nil, repository.ErrNotFound
	}
	var r model.MedicalRecord
	if err := s.update(ctx, "update_medical_record", &r, "medical_records", update.Changes(), true,
		"id = $1 AND patient_id = $2", id, scope.OwnerID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) DeleteMedicalRecord(ctx context.Context, id int64, scope authz.Scope) error {
	if !scope.Valid() {
		return repository.ErrNotFound
	}
	n, err := s.exec(ctx, "delete_medical_record", `DELETE FROM medical_records WHERE id = $1 AND patient_id = $2`, id, scope.OwnerID)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
