package user

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository/memory"
	"github.com/freee021022/onconet/internal/repository/storetest"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

func TestGetUserNotFound(t *testing.T) {
	svc := NewService(memory.NewStore())
	_, err := svc.GetUser(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "User not found", apperrors.From(err).Message)
}

func TestUpdateUserOwnProfileOnly(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := context.Background()
	alice := storetest.CreateUser(t, store, "alice", model.UserTypePatient)
	bob := storetest.CreateUser(t, store, "bob", model.UserTypePatient)

	bio := "hello"
	_, err := svc.UpdateUser(ctx, bob.ID, alice.ID, &model.UserUpdate{Bio: &bio})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	updated, err := svc.UpdateUser(ctx, alice.ID, alice.ID, &model.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", *updated.Bio)
}

func TestListDoctors(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := context.Background()
	storetest.CreateUser(t, store, "patient", model.UserTypePatient)
	doc := storetest.CreateUser(t, store, "doc", model.UserTypeProfessional)
	storetest.CreateUser(t, store, "doc2", model.UserTypeProfessional)

	yes := true
	_, err := store.UpdateUser(ctx, doc.ID, &model.UserUpdate{AvailableForSecondOpinion: &yes})
	require.NoError(t, err)

	all, err := svc.ListDoctors(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := svc.ListDoctors(ctx, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, doc.ID, available[0].ID)
}

func TestGetDoctorReviews(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := context.Background()
	patient := storetest.CreateUser(t, store, "patient", model.UserTypePatient)
	doc := storetest.CreateUser(t, store, "doc", model.UserTypeProfessional)
	reviewed := &model.User{
		Username: "reviewed",
		Email:    "reviewed@example.com",
		Password: "hash",
		FullName: "Reviewed",
		UserType: model.UserTypeProfessional,
		Reviews:  types.JSONText(`[{"rating":5,"comment":"Molto professionale"}]`),
	}
	require.NoError(t, store.CreateUser(ctx, reviewed))

	got, err := svc.GetDoctorReviews(ctx, reviewed.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"rating":5,"comment":"Molto professionale"}]`, string(got))

	got, err = svc.GetDoctorReviews(ctx, doc.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))

	for _, id := range []int64{patient.ID, 999} {
		_, err = svc.GetDoctorReviews(ctx, id)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.Equal(t, "Doctor not found", apperrors.From(err).Message)
	}
}
