package message

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository/memory"
	"github.com/freee021022/onconet/internal/repository/storetest"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

func TestConversationScenario(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := context.Background()
	u1 := storetest.CreateUser(t, store, "u1", model.UserTypePatient)
	u2 := storetest.CreateUser(t, store, "u2", model.UserTypeProfessional)
	u3 := storetest.CreateUser(t, store, "u3", model.UserTypePatient)

	send := func(from, to *model.User, content string) *model.Message {
		msg, err := svc.Send(ctx, &model.CreateMessageRequest{SenderID: from.ID, ReceiverID: to.ID, Content: content})
		require.NoError(t, err)
		return msg
	}
	first := send(u1, u2, "a")
	send(u2, u1, "b")
	send(u3, u1, "c")

	conv, err := svc.Conversation(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "a", conv[0].Content)
	assert.Equal(t, "b", conv[1].Content)

	inbox, err := svc.Inbox(ctx, u1.ID)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	assert.False(t, first.IsRead)
	read, err := svc.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = svc.MarkRead(ctx, 999)
	assert.Equal(t, "Message not found", apperrors.From(err).Message)
}

func TestSendRequiresExistingUsers(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	u1 := storetest.CreateUser(t, store, "u1", model.UserTypePatient)

	_, err := svc.Send(context.Background(), &model.CreateMessageRequest{SenderID: u1.ID, ReceiverID: 77, Content: "hi"})
	require.Error(t, err)
	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, "receiverId", appErr.Violations[0].Field)
}
