package secondopinion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository/memory"
	"github.com/freee021022/onconet/internal/repository/storetest"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

type recordingMailer struct {
	requested []*model.SecondOpinionRequest
	err       error
}

func (m *recordingMailer) SendSecondOpinionRequested(_ context.Context, _, _ *model.User, req *model.SecondOpinionRequest) error {
	m.requested = append(m.requested, req)
	return m.err
}

func (m *recordingMailer) SendSosContractCreated(context.Context, *model.User, *model.User, *model.SosContract) error {
	return nil
}

func (m *recordingMailer) SendCustom(context.Context, string, string, string) error {
	return nil
}

func TestRequestLifecycle(t *testing.T) {
	store := memory.NewStore()
	mailer := &recordingMailer{}
	svc := NewService(store, mailer)
	ctx := context.Background()
	patient := storetest.CreateUser(t, store, "patient", model.UserTypePatient)
	doctor := storetest.CreateUser(t, store, "doctor", model.UserTypeProfessional)

	req, err := svc.CreateRequest(ctx, &model.CreateSecondOpinionRequest{
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		Diagnosis:   "Carcinoma",
		Description: "Looking for a second opinion",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SecondOpinionPending, req.Status)
	assert.NotNil(t, req.DocumentLinks)
	assert.Len(t, mailer.requested, 1)

	accepted, err := svc.UpdateStatus(ctx, req.ID, model.SecondOpinionAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.SecondOpinionAccepted, accepted.Status)

	_, err = svc.UpdateStatus(ctx, req.ID, model.SecondOpinionAccepted)
	require.NoError(t, err, "repeating a status is allowed")

	_, err = svc.UpdateStatus(ctx, req.ID, model.SecondOpinionPending)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.UpdateStatus(ctx, req.ID, model.SecondOpinionCompleted)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, req.ID, model.SecondOpinionCancelled)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.UpdateStatus(ctx, 999, model.SecondOpinionAccepted)
	assert.Equal(t, "Request not found", apperrors.From(err).Message)

	list, err := svc.ListRequests(ctx, model.SecondOpinionFilter{DoctorID: doctor.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateRequestValidatesParticipants(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, &recordingMailer{})
	ctx := context.Background()
	patient := storetest.CreateUser(t, store, "patient", model.UserTypePatient)
	other := storetest.CreateUser(t, store, "other", model.UserTypePatient)

	_, err := svc.CreateRequest(ctx, &model.CreateSecondOpinionRequest{PatientID: 42, DoctorID: other.ID, Diagnosis: "d", Description: "d"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.CreateRequest(ctx, &model.CreateSecondOpinionRequest{PatientID: patient.ID, DoctorID: other.ID, Diagnosis: "d", Description: "d"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.GetRequest(ctx, 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestNotificationFailureDoesNotFailCreate(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, &recordingMailer{err: errors.New("smtp down")})
	patient := storetest.CreateUser(t, store, "patient", model.UserTypePatient)
	doctor := storetest.CreateUser(t, store, "doctor", model.UserTypeProfessional)

	_, err := svc.CreateRequest(context.Background(), &model.CreateSecondOpinionRequest{PatientID: patient.ID, DoctorID: doctor.ID, Diagnosis: "d", Description: "d"})
	assert.NoError(t, err)
}
