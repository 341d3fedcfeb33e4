package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/repository"
	"github.com/satvik8373/Rentieo/internal/infrastructure/ratelimit"
	"github.com/satvik8373/Rentieo/internal/subscription"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

const maxMessageLength = 2000

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	rateLimiter RateLimiter
	now         func() time.Time
}

func NewChatUseCase(chatRepo repository.ChatRepository, rateLimiter RateLimiter) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

type SendMessageInput struct {
	RoomID   string
	SenderID string
	Message  string
	Type     entity.MessageType
}

func (uc *ChatUseCase) CreateOrGetRoom(ctx context.Context, userID, otherUserID, listingID string) (*entity.ChatRoom, error) {
	if userID == "" || otherUserID == "" {
		return nil, errors.BadRequest("Both participants are required", nil)
	}
	if userID == otherUserID {
		return nil, errors.BadRequest("Cannot start a chat with yourself", nil)
	}
	if err := uc.checkRate(userID, ratelimit.ActionOpenRoom); err != nil {
		return nil, err
	}

	roomID, err := uc.chatRepo.CreateOrGetRoom(ctx, userID, otherUserID, listingID)
	if err != nil {
		return nil, err
	}
	return uc.chatRepo.GetRoom(ctx, roomID)
}

// SendMessage appends the message and then refreshes the room preview. The
// two writes are not atomic: once the message is stored the call succeeds,
// and a failed preview update only leaves lastMessage stale.
func (uc *ChatUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.ChatMessage, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" {
		return nil, errors.BadRequest("Message cannot be empty", nil)
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, errors.BadRequest(fmt.Sprintf("Message must be at most %d characters", maxMessageLength), nil)
	}
	if err := uc.checkRate(input.SenderID, ratelimit.ActionSendMessage); err != nil {
		return nil, err
	}

	room, err := uc.chatRepo.GetRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(input.SenderID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}

	msgType := input.Type
	if msgType == "" {
		msgType = entity.MessageTypeText
	}
	message := &entity.ChatMessage{
		SenderID:  input.SenderID,
		Message:   text,
		Timestamp: uc.now(),
		Type:      msgType,
	}

	if _, err := uc.chatRepo.AddMessage(ctx, room.ID, message); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.UpdateRoomPreview(ctx, room.ID, text, message.Timestamp); err != nil {
		logger.Warn("Message %s stored but preview of room %s not updated: %v", message.ID, room.ID, err)
	}

	return message, nil
}

func (uc *ChatUseCase) WatchRooms(ctx context.Context, userID string, opts ...subscription.Option) (*subscription.Subscription[*entity.ChatRoom], error) {
	return uc.chatRepo.WatchRooms(ctx, userID, opts...)
}

// WatchMessages requires the caller to be a participant of the room.
func (uc *ChatUseCase) WatchMessages(ctx context.Context, roomID, userID string, opts ...subscription.Option) (*subscription.Subscription[*entity.ChatMessage], error) {
	room, err := uc.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}
	return uc.chatRepo.WatchMessages(ctx, roomID, opts...)
}

func (uc *ChatUseCase) checkRate(userID, action string) error {
	if uc.rateLimiter == nil {
		return nil
	}
	if ok, wait := uc.rateLimiter.Allow(userID, action); !ok {
		seconds := int(math.Ceil(wait.Seconds()))
		return errors.TooManyRequests(fmt.Sprintf("Too many requests. Please wait %d seconds", seconds), nil)
	}
	return nil
}
