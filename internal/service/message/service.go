package message

import (
	"context"
	"errors"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

type Store interface {
	repository.MessageRepository
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Inbox returns the messages received by userID.
func (s *Service) Inbox(ctx context.Context, userID int64) ([]*model.Message, error) {
	messages, err := s.store.ListMessages(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return messages, nil
}

func (s *Service) Conversation(ctx context.Context, user1ID, user2ID int64) ([]*model.Message, error) {
	messages, err := s.store.ListConversation(ctx, user1ID, user2ID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return messages, nil
}

// Send stores an unread message between two existing users.
func (s *Service) Send(ctx context.Context, req *model.CreateMessageRequest) (*model.Message, error) {
	if err := s.requireUser(ctx, req.SenderID, "senderId"); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, req.ReceiverID, "receiverId"); err != nil {
		return nil, err
	}

	msg := &model.Message{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return msg, nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) (*model.Message, error) {
	msg, err := s.store.MarkMessageAsRead(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("Message", err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return msg, nil
}

func (s *Service) requireUser(ctx context.Context, id int64, field string) error {
	_, err := s.store.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewValidation(apperrors.FieldViolation{Field: field, Message: "user does not exist"})
	}
	if err != nil {
		return apperrors.NewInternal(err)
	}
	return nil
}
