package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/habyx/internal/domain"
)

func TestMessageService_Send(t *testing.T) {
	ctx := context.Background()
	me, other := uuid.New(), uuid.New()

	msgs := new(MockMessageRepository)
	users := new(MockUserRepository)
	svc := NewMessageService(msgs, users)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	_, err := svc.Send(ctx, me, me, "hi")
	assert.ErrorIs(t, err, ErrCannotMessageSelf)

	ghost := uuid.New()
	users.On("GetByID", ctx, ghost).Return(nil, nil)
	_, err = svc.Send(ctx, me, ghost, "hi")
	assert.ErrorIs(t, err, ErrUserNotFound)

	users.On("GetByID", ctx, other).Return(&domain.User{ID: other}, nil)
	msgs.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)

	msg, err := svc.Send(ctx, me, other, "hello")
	require.NoError(t, err)
	assert.Equal(t, me, msg.SenderID)
	assert.Equal(t, other, msg.ReceiverID)
	assert.False(t, msg.IsRead)
	assert.Equal(t, []string{"message"}, notifier.events)
}

func TestMessageService_ConversationPaging(t *testing.T) {
	ctx := context.Background()
	me, other := uuid.New(), uuid.New()

	page := make([]domain.Message, 3)
	for i := range page {
		page[i] = domain.Message{ID: uuid.New(), Content: string(rune('a' + i))}
	}

	msgs := new(MockMessageRepository)
	msgs.On("ListConversation", ctx, me, other, (*uuid.UUID)(nil), 3).Return(page, nil)
	msgs.On("ListConversation", ctx, me, other, (*uuid.UUID)(nil), 51).Return(nil, nil)
	svc := NewMessageService(msgs, new(MockUserRepository))

	resp, err := svc.Conversation(ctx, me, other, nil, 2)
	require.NoError(t, err)
	assert.True(t, resp.HasMore)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "b", resp.Messages[0].Content)
	assert.Equal(t, "c", resp.Messages[1].Content)

	resp, err = svc.Conversation(ctx, me, other, nil, 500)
	require.NoError(t, err)
	assert.False(t, resp.HasMore)
	assert.NotNil(t, resp.Messages)
}

func TestMessageService_MarkRead(t *testing.T) {
	ctx := context.Background()
	sender, receiver := uuid.New(), uuid.New()
	id := uuid.New()

	msgs := new(MockMessageRepository)
	msgs.On("GetByID", ctx, id).Return(&domain.Message{ID: id, SenderID: sender, ReceiverID: receiver}, nil)
	msgs.On("MarkRead", ctx, id).Return(nil)
	svc := NewMessageService(msgs, new(MockUserRepository))

	assert.ErrorIs(t, svc.MarkRead(ctx, sender, id), ErrNotMessageReceiver)
	assert.NoError(t, svc.MarkRead(ctx, receiver, id))
	msgs.AssertCalled(t, "MarkRead", ctx, id)

	missing := uuid.New()
	msgs.On("GetByID", ctx, missing).Return(nil, nil)
	assert.ErrorIs(t, svc.MarkRead(ctx, receiver, missing), ErrMessageNotFound)
}
