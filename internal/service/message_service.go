package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/events"
	"github.com/vedran77/habyx/internal/repository"
)

var (
	ErrCannotMessageSelf  = errors.New("cannot send a message to yourself")
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotMessageReceiver = errors.New("only the receiver can mark a message as read")
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	publisher   Publisher
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *MessageService) SetPublisher(p Publisher) {
	s.publisher = p
}

type MessageListResponse struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

func (s *MessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	if senderID == receiverID {
		return nil, ErrCannotMessageSelf
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}
	publish(ctx, s.publisher, events.MessageSent, msg)

	return msg, nil
}

// Conversation returns a page of messages between the two users, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID uuid.UUID, before *uuid.UUID, limit int) (*MessageListResponse, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	messages, err := s.messageRepo.ListConversation(ctx, userID, otherID, before, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[len(messages)-limit:]
	}

	if messages == nil {
		messages = []domain.Message{}
	}

	return &MessageListResponse{
		Messages: messages,
		HasMore:  hasMore,
	}, nil
}

func (s *MessageService) MarkRead(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.ReceiverID != userID {
		return ErrNotMessageReceiver
	}
	if msg.IsRead {
		return nil
	}
	return s.messageRepo.MarkRead(ctx, messageID)
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}
