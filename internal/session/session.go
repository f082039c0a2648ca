// Package session keeps server-side login sessions. The client holds a
// signed token naming the session; the session record itself lives in a
// Store, so logging out revokes the token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("invalid session token")
)

const issuer = "onconet"

type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store persists sessions until their TTL runs out.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start creates a session for userID and returns the token naming it.
func (m *Manager) Start(ctx context.Context, userID int64) (string, *Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, s, nil
}

func (m *Manager) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Resolve returns the live session named by token. Tokens whose session
// was ended are rejected with ErrNotFound even if still signed and unexpired.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Load(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if strconv.FormatInt(s.UserID, 10) != claims.Subject {
		return nil, ErrInvalidToken
	}
	return s, nil
}

// End deletes the session named by token. Ending an unknown or malformed
// token is not an error.
func (m *Manager) End(ctx context.Context, token string) error {
	claims, err := m.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
