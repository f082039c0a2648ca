package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	"github.com/freee021022/onconet/internal/repository/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return NewStore()
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := storetest.CreateUser(t, s, "copy", model.UserTypePatient)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	got.Username = "mutated"

	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy", again.Username)
}

func TestStoreReturnsDetachedSlicesAndPointers(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	patient := storetest.CreateUser(t, s, "owner", model.UserTypePatient)
	doctor := "Dr. Verdi"

	rec := &model.MedicalRecord{
		PatientID:   patient.ID,
		RecordType:  model.RecordTypeVisit,
		Title:       "Follow-up",
		Description: "Routine",
		Date:        model.NewDate(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)),
		DoctorName:  &doctor,
		Medications: types.JSONText(`[]`),
		Documents:   pq.StringArray{"scan.pdf"},
	}
	require.NoError(t, s.CreateMedicalRecord(ctx, rec))

	scope := authz.Owner(patient.ID)
	got, err := s.GetMedicalRecord(ctx, rec.ID, scope)
	require.NoError(t, err)
	got.Documents[0] = "tampered.pdf"
	*got.DoctorName = "Dr. Nobody"

	listed, err := s.ListMedicalRecords(ctx, scope)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Medications[0] = '{'

	again, err := s.GetMedicalRecord(ctx, rec.ID, scope)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"scan.pdf"}, again.Documents)
	assert.Equal(t, "Dr. Verdi", *again.DoctorName)
	assert.Equal(t, "[]", string(again.Medications))
}

func TestStoreClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return fixed }))
	u := storetest.CreateUser(t, s, "clock", model.UserTypePatient)
	assert.Equal(t, fixed, u.CreatedAt)
}
