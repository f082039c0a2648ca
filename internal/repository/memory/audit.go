package memory

import (
	"context"
	"time"

	"github.com/freee021022/onconet/internal/model"
)

func (s *Store) CreateAuditEvent(ctx context.Context, event *model.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.nextID("audit_events")
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.auditEvents = append(s.auditEvents, clone(event))
	return nil
}

// ListAuditEvents returns the newest events first.
func (s *Store) ListAuditEvents(ctx context.Context, userID int64, limit int) ([]*model.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.AuditEvent, 0)
	for i := len(s.auditEvents) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if e := s.auditEvents[i]; e.UserID == userID {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

func (s *Store) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.auditEvents[:0]
	var removed int64
	for _, e := range s.auditEvents {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.auditEvents = kept
	return removed, nil
}
