package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

type clientKey struct{}

// Client identifies where a request came from.
type Client struct {
	IPAddress string
	UserAgent string
}

// WithClient attaches the caller's address and user agent to ctx so audit
// events can record them without the services knowing about HTTP.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

func clientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Log records an audit event. A failure to write it is logged and never
// fails the caller's operation. resourceID zero means none.
func (s *Service) Log(ctx context.Context, userID int64, action, resource string, resourceID int64, status string) {
	client := clientFrom(ctx)
	event := &model.AuditEvent{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		Status:    status,
		CreatedAt: s.now().UTC(),
	}
	if resourceID != 0 {
		event.ResourceID = &resourceID
	}

	if err := s.repo.CreateAuditEvent(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Int64("user_id", userID).
			Str("action", action).
			Str("resource", resource).
			Msg("failed to write audit event")
	}
}

// List returns the newest events of userID first.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]*model.AuditEvent, error) {
	return s.repo.ListAuditEvents(ctx, userID, limit)
}

// Cleanup removes events created before cutoff.
func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteAuditEventsBefore(ctx, before)
}
