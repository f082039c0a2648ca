package model

import (
	"time"

	"github.com/lib/pq"
)

// SOS contract enumerations
const (
	ContractTypeSOS          = "sos"
	ContractTypeEmergency    = "emergency"
	ContractTypeConsultation = "consultation"

	AccessLevelFull     = "full"
	AccessLevelLimited  = "limited"
	AccessLevelViewOnly = "view_only"
)

// SosContract grants a professional emergency access to a subset of a
// patient's medical records. New contracts start inactive.
type SosContract struct {
	ID              int64         `json:"id" db:"id"`
	PatientID       int64         `json:"patientId" db:"patient_id"`
	DoctorID        int64         `json:"doctorId" db:"doctor_id"`
	ContractType    string        `json:"contractType" db:"contract_type"`
	EmergencyType   *string       `json:"emergencyType" db:"emergency_type"`
	AccessLevel     string        `json:"accessLevel" db:"access_level"`
	SharedRecordIDs pq.Int64Array `json:"sharedRecordIds" db:"shared_record_ids"`
	IsActive        bool          `json:"isActive" db:"is_active"`
	ExpiresAt       *time.Time    `json:"expiresAt" db:"expires_at"`
	ConsentGiven    bool          `json:"consentGiven" db:"consent_given"`
	ConsentDate     *time.Time    `json:"consentDate" db:"consent_date"`
	EmergencyNotes  *string       `json:"emergencyNotes" db:"emergency_notes"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the contract has an expiry at or before now.
func (c *SosContract) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Shares reports whether recordID is one of the shared records.
func (c *SosContract) Shares(recordID int64) bool {
	for _, id := range c.SharedRecordIDs {
		if id == recordID {
			return true
		}
	}
	return false
}

// CreateSosContractRequest omits patientId (the session user) and isActive.
type CreateSosContractRequest struct {
	DoctorID        int64      `json:"doctorId" binding:"required,gt=0"`
	ContractType    string     `json:"contractType" binding:"omitempty,oneof=sos emergency consultation"`
	EmergencyType   *string    `json:"emergencyType" binding:"omitempty,oneof=oncological general urgent"`
	AccessLevel     string     `json:"accessLevel" binding:"omitempty,oneof=full limited view_only"`
	SharedRecordIDs []int64    `json:"sharedRecordIds" binding:"omitempty,dive,gt=0"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	ConsentGiven    bool       `json:"consentGiven"`
	EmergencyNotes  *string    `json:"emergencyNotes"`
}

// NewContract builds the contract to insert for patientID.
func (r *CreateSosContractRequest) NewContract(patientID int64, now time.Time) *SosContract {
	contractType := r.ContractType
	if contractType == "" {
		contractType = ContractTypeSOS
	}
	accessLevel := r.AccessLevel
	if accessLevel == "" {
		accessLevel = AccessLevelFull
	}
	c := &SosContract{
		PatientID:       patientID,
		DoctorID:        r.DoctorID,
		ContractType:    contractType,
		EmergencyType:   r.EmergencyType,
		AccessLevel:     accessLevel,
		SharedRecordIDs: append(pq.Int64Array{}, r.SharedRecordIDs...),
		ExpiresAt:       r.ExpiresAt,
		ConsentGiven:    r.ConsentGiven,
		EmergencyNotes:  r.EmergencyNotes,
	}
	if r.ConsentGiven {
		c.ConsentDate = &now
	}
	return c
}

// SosContractFilter selects contracts by participant; exactly one of the
// ids is expected to be set.
type SosContractFilter struct {
	PatientID int64
	DoctorID  int64
}

// EmergencyAccess is the payload returned to a doctor using a contract.
type EmergencyAccess struct {
	Contract *SosContract     `json:"contract"`
	Patient  *User            `json:"patient"`
	Records  []*MedicalRecord `json:"records"`
}

// SosContractUpdate lists the terms a patient may change after creation.
// Nil means unchanged; ClearExpiry makes the contract open-ended again.
// Activation has its own operation.
type SosContractUpdate struct {
	EmergencyType   *string    `json:"emergencyType" binding:"omitempty,oneof=oncological general urgent"`
	AccessLevel     *string    `json:"accessLevel" binding:"omitempty,oneof=full limited view_only"`
	SharedRecordIDs *[]int64   `json:"sharedRecordIds" binding:"omitempty,dive,gt=0"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	ClearExpiry     bool       `json:"clearExpiry" binding:"excluded_with=ExpiresAt"`
	ConsentGiven    *bool      `json:"consentGiven"`
	EmergencyNotes  *string    `json:"emergencyNotes"`

	// ConsentDate is stamped by the service when consent changes.
	ConsentDate *time.Time `json:"-"`
}

// Apply copies the set fields of u onto c.
func (u *SosContractUpdate) Apply(c *SosContract) {
	setOptional(&c.EmergencyType, u.EmergencyType)
	setString(&c.AccessLevel, u.AccessLevel)
	if u.SharedRecordIDs != nil {
		c.SharedRecordIDs = append(pq.Int64Array{}, *u.SharedRecordIDs...)
	}
	if u.ExpiresAt != nil {
		v := *u.ExpiresAt
		c.ExpiresAt = &v
	}
	if u.ClearExpiry {
		c.ExpiresAt = nil
	}
	if u.ConsentGiven != nil {
		c.ConsentGiven = *u.ConsentGiven
		c.ConsentDate = u.ConsentDate
	}
	setOptional(&c.EmergencyNotes, u.EmergencyNotes)
}

// Changes lists the column assignments for the set fields of u.
func (u *SosContractUpdate) Changes() []Change {
	var c changeSet
	c.str("emergency_type", u.EmergencyType)
	c.str("access_level", u.AccessLevel)
	if u.SharedRecordIDs != nil {
		c.add("shared_record_ids", true, pq.Int64Array(*u.SharedRecordIDs))
	}
	c.add("expires_at", u.ExpiresAt != nil, u.ExpiresAt)
	c.add("expires_at", u.ClearExpiry, (*time.Time)(nil))
	if u.ConsentGiven != nil {
		c.add("consent_given", true, *u.ConsentGiven)
		c.add("consent_date", true, u.ConsentDate)
	}
	c.str("emergency_notes", u.EmergencyNotes)
	return c
}
