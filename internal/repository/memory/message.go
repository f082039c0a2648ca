package memory

import (
	"context"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

func (s *Store) ListMessages(ctx context.Context, userID int64) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.messages, func(m *model.Message) bool { return m.ReceiverID == userID }), nil
}

func (s *Store) ListConversation(ctx context.Context, user1ID, user2ID int64) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filter(s.messages, func(m *model.Message) bool {
		return (m.SenderID == user1ID && m.ReceiverID == user2ID) ||
			(m.SenderID == user2ID && m.ReceiverID == user1ID)
	}), nil
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := find(s.messages, func(m *model.Message) bool { return m.ID == id })
	if m == nil {
		return nil, repository.ErrNotFound
	}
	return clone(m), nil
}

func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID("messages")
	msg.IsRead = false
	msg.CreatedAt = s.now()
	s.messages = append(s.messages, clone(msg))
	return nil
}

func (s *Store) MarkMessageAsRead(ctx context.Context, id int64) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := find(s.messages, func(m *model.Message) bool { return m.ID == id })
	if m == nil {
		return nil, repository.ErrNotFound
	}
	m.IsRead = true
	return clone(m), nil
}
