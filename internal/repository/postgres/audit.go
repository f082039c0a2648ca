package postgres

import (
	"context"
	"time"

	"github.com/freee021022/onconet/internal/model"
)

func (s *Store) CreateAuditEvent(ctx context.Context, event *model.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO audit_events (
			user_id, action, resource, resource_id, ip_address, user_agent,
			status, created_at
		) VALUES (
			:user_id, :action, :resource, :resource_id, :ip_address, :user_agent,
			:status, :created_at
		)
		RETURNING *
	`
	return s.insert(ctx, "create_audit_event", query, event)
}

// ListAuditEvents returns the newest events first. A limit of zero or less
// means no limit.
func (s *Store) ListAuditEvents(ctx context.Context, userID int64, limit int) ([]*model.AuditEvent, error) {
	query := `SELECT * FROM audit_events WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	events := make([]*model.AuditEvent, 0)
	if err := s.selectAll(ctx, "list_audit_events", &events, query, args...); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, "delete_audit_events", `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
}
