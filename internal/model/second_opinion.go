package model

import (
	"time"

	"github.com/lib/pq"
)

// Second-opinion request statuses
const (
	SecondOpinionPending   = "pending"
	SecondOpinionAccepted  = "accepted"
	SecondOpinionRejected  = "rejected"
	SecondOpinionCompleted = "completed"
	SecondOpinionCancelled = "cancelled"
)

// secondOpinionTransitions maps a status to the statuses reachable from it.
var secondOpinionTransitions = map[string][]string{
	SecondOpinionPending:  {SecondOpinionAccepted, SecondOpinionRejected, SecondOpinionCancelled},
	SecondOpinionAccepted: {SecondOpinionCompleted, SecondOpinionCancelled},
}

// SecondOpinionSources returns the statuses from which to may be reached,
// including to itself so that repeating an update is a no-op.
func SecondOpinionSources(to string) []string {
	sources := []string{to}
	for from, targets := range secondOpinionTransitions {
		for _, t := range targets {
			if t == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

type SecondOpinionRequest struct {
	ID            int64          `json:"id" db:"id"`
	PatientID     int64          `json:"patientId" db:"patient_id"`
	DoctorID      int64          `json:"doctorId" db:"doctor_id"`
	Diagnosis     string         `json:"diagnosis" db:"diagnosis"`
	Description   string         `json:"description" db:"description"`
	DocumentLinks pq.StringArray `json:"documentLinks" db:"document_links"`
	Status        string         `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
}

// CreateSecondOpinionRequest has no status field; new requests are pending.
type CreateSecondOpinionRequest struct {
	PatientID     int64    `json:"patientId" binding:"required,gt=0"`
	DoctorID      int64    `json:"doctorId" binding:"required,gt=0"`
	Diagnosis     string   `json:"diagnosis" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	DocumentLinks []string `json:"documentLinks" binding:"omitempty,dive,required"`
}

type UpdateSecondOpinionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending accepted rejected completed cancelled"`
}

// SecondOpinionFilter narrows listings; zero values mean no filter.
type SecondOpinionFilter struct {
	PatientID int64
	DoctorID  int64
}
