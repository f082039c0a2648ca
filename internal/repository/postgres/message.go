package postgres

import (
	"context"

	"github.com/freee021022/onconet/internal/model"
)

func (s *Store) ListMessages(ctx context.Context, userID int64) ([]*model.Message, error) {
	messages := make([]*model.Message, 0)
	if err := s.selectAll(ctx, "list_messages", &messages, `SELECT * FROM messages WHERE receiver_id = $1 ORDER BY id`, userID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Store) ListConversation(ctx context.Context, user1ID, user2ID int64) ([]*model.Message, error) {
	query := `
		SELECT * FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY id
	`
	messages := make([]*model.Message, 0)
	if err := s.selectAll(ctx, "list_conversation", &messages, query, user1ID, user2ID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	if err := s.get(ctx, "get_message", &msg, `SELECT * FROM messages WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES (:sender_id, :receiver_id, :content)
		RETURNING *
	`
	return s.insert(ctx, "create_message", query, msg)
}

func (s *Store) MarkMessageAsRead(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	if err := s.get(ctx, "mark_message_as_read", &msg, `UPDATE messages SET is_read = TRUE WHERE id = $1 RETURNING *`, id); err != nil {
		return nil, err
	}
	return &msg, nil
}
