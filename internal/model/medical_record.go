package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Medical record types
const (
	RecordTypeDiagnosis  = "diagnosis"
	RecordTypeTreatment  = "treatment"
	RecordTypeMedication = "medication"
	RecordTypeTestResult = "test_result"
	RecordTypeVisit      = "visit"
)

// MedicalRecord belongs to exactly one patient and is only ever addressed
// together with that patient's id.
type MedicalRecord struct {
	ID           int64          `json:"id" db:"id"`
	PatientID    int64          `json:"patientId" db:"patient_id"`
	RecordType   string         `json:"recordType" db:"record_type"`
	Title        string         `json:"title" db:"title"`
	Description  string         `json:"description" db:"description"`
	Date         Date           `json:"date" db:"date"`
	DoctorName   *string        `json:"doctorName" db:"doctor_name"`
	HospitalName *string        `json:"hospitalName" db:"hospital_name"`
	Medications  types.JSONText `json:"medications" db:"medications"`
	Documents    pq.StringArray `json:"documents" db:"documents"`
	IsPrivate    bool           `json:"isPrivate" db:"is_private"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}

type CreateMedicalRecordRequest struct {
	PatientID    int64          `json:"patientId" binding:"required,gt=0"`
	RecordType   string         `json:"recordType" binding:"required,oneof=diagnosis treatment medication test_result visit"`
	Title        string         `json:"title" binding:"required"`
	Description  string         `json:"description" binding:"required"`
	Date         *Date          `json:"date" binding:"required"`
	DoctorName   *string        `json:"doctorName"`
	HospitalName *string        `json:"hospitalName"`
	Medications  types.JSONText `json:"medications"`
	Documents    []string       `json:"documents" binding:"omitempty,dive,required"`
	IsPrivate    *bool          `json:"isPrivate"`
}

// NewRecord builds the record to insert. Records are private unless the
// request says otherwise.
func (r *CreateMedicalRecordRequest) NewRecord() *MedicalRecord {
	private := true
	if r.IsPrivate != nil {
		private = *r.IsPrivate
	}
	medications := r.Medications
	if len(medications) == 0 {
		medications = types.JSONText("[]")
	}
	return &MedicalRecord{
		PatientID:    r.PatientID,
		RecordType:   r.RecordType,
		Title:        r.Title,
		Description:  r.Description,
		Date:         *r.Date,
		DoctorName:   r.DoctorName,
		HospitalName: r.HospitalName,
		Medications:  medications,
		Documents:    append(pq.StringArray{}, r.Documents...),
		IsPrivate:    private,
	}
}

// UpdateMedicalRecordRequest carries the owner id alongside the changes.
type UpdateMedicalRecordRequest struct {
	PatientID int64 `json:"patientId" binding:"required,gt=0"`
	MedicalRecordUpdate
}

// MedicalRecordUpdate lists the mutable record fields. Nil means unchanged.
type MedicalRecordUpdate struct {
	RecordType   *string        `json:"recordType" binding:"omitempty,oneof=diagnosis treatment medication test_result visit"`
	Title        *string        `json:"title" binding:"omitempty,min=1"`
	Description  *string        `json:"description" binding:"omitempty,min=1"`
	Date         *Date          `json:"date"`
	DoctorName   *string        `json:"doctorName"`
	HospitalName *string        `json:"hospitalName"`
	Medications  types.JSONText `json:"medications"`
	Documents    *[]string      `json:"documents"`
	IsPrivate    *bool          `json:"isPrivate"`
}

// Apply copies the set fields of u onto r.
func (u *MedicalRecordUpdate) Apply(r *MedicalRecord) {
	setString(&r.RecordType, u.RecordType)
	setString(&r.Title, u.Title)
	setString(&r.Description, u.Description)
	if u.Date != nil {
		r.Date = *u.Date
	}
	setOptional(&r.DoctorName, u.DoctorName)
	setOptional(&r.HospitalName, u.HospitalName)
	setJSON(&r.Medications, u.Medications)
	if u.Documents != nil {
		r.Documents = append(pq.StringArray{}, *u.Documents...)
	}
	if u.IsPrivate != nil {
		r.IsPrivate = *u.IsPrivate
	}
}

// Changes lists the column assignments for the set fields of u.
func (u *MedicalRecordUpdate) Changes() []Change {
	var c changeSet
	c.str("record_type", u.RecordType)
	c.str("title", u.Title)
	c.str("description", u.Description)
	c.add("date", u.Date != nil, u.Date)
	c.str("doctor_name", u.DoctorName)
	c.str("hospital_name", u.HospitalName)
	c.add("medications", len(u.Medications) > 0, u.Medications)
	if u.Documents != nil {
		c.add("documents", true, pq.StringArray(*u.Documents))
	}
	c.add("is_private", u.IsPrivate != nil, u.IsPrivate)
	return c
}
