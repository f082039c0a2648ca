package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository/memory"
	"github.com/freee021022/onconet/internal/service/audit"
	"github.com/freee021022/onconet/internal/session"
	apperrors "github.com/freee021022/onconet/pkg/errors"
	"github.com/freee021022/onconet/pkg/security"
)

func newService(t *testing.T) (*Service, *memory.Store, *session.Manager) {
	t.Helper()
	store := memory.NewStore()
	sessions := session.NewManager(session.NewMemoryStore(), "secret", time.Hour)
	svc := NewService(store, security.NewBcryptHasher(bcrypt.MinCost), sessions, audit.NewService(store))
	return svc, store, sessions
}

func register(t *testing.T, svc *Service, username, email string) *model.User {
	t.Helper()
	user, token, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "password1",
		FullName: "Alice Bianchi",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func TestRegister(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	user := register(t, svc, "alice", "alice@x.com")
	assert.Equal(t, model.UserTypePatient, user.UserType)
	assert.True(t, user.IsVerified)

	stored, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password1")))
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "alice", "alice@x.com")

	_, _, err := svc.Register(ctx, &model.RegisterRequest{Username: "alice", Email: "other@x.com", Password: "password1", FullName: "A"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Equal(t, "Username already taken", apperrors.From(err).Message)

	_, _, err = svc.Register(ctx, &model.RegisterRequest{Username: "alice2", Email: "alice@x.com", Password: "password1", FullName: "A"})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", apperrors.From(err).Message)
}

func TestRegisterProfessionalIsUnverified(t *testing.T) {
	svc, _, _ := newService(t)
	user, _, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "drrossi", Email: "rossi@x.com", Password: "password1", FullName: "Dr Rossi",
		UserType: model.UserTypeProfessional,
	})
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
}

func TestLogin(t *testing.T) {
	svc, _, sessions := newService(t)
	ctx := context.Background()
	alice := register(t, svc, "alice", "alice@x.com")

	_, _, err := svc.Login(ctx, "alice", "wrong-password")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	_, _, err = svc.Login(ctx, "nobody", "password1")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	assert.Equal(t, "Invalid credentials", apperrors.From(err).Message)

	_, _, err = svc.Login(ctx, "", "")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	user, token, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	s, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, s.UserID)

	require.NoError(t, svc.Logout(ctx, alice.ID, token))
	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLoginIsAudited(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	alice := register(t, svc, "alice", "alice@x.com")

	_, _, err := svc.Login(ctx, "alice", "wrong-password")
	require.Error(t, err)

	events, err := store.ListAuditEvents(ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.AuditActionLogin, events[0].Action)
	assert.Equal(t, model.AuditStatusDenied, events[0].Status)
}
