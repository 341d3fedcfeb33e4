package repository

import (
	"context"
	"time"

	"github.com/satvik8373/Rentieo/internal/adapter/mapper"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/repository"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/subscription"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

const chatsCollection = "chats"

type chatRepository struct {
	store service.DocumentStore
	now   func() time.Time
}

func NewChatRepository(store service.DocumentStore) repository.ChatRepository {
	return &chatRepository{
		store: store,
		now:   time.Now,
	}
}

func roomPath(roomID string) string {
	return chatsCollection + "/" + roomID
}

func messagesCollection(roomID string) string {
	return roomPath(roomID) + "/messages"
}

// CreateOrGetRoom is a compare-and-create on the deterministic room id. Two
// concurrent callers may both write; they write the same key, so the second
// write overwrites the first instead of producing a duplicate room.
func (r *chatRepository) CreateOrGetRoom(ctx context.Context, userA, userB, listingID string) (string, error) {
	roomID := entity.RoomID(userA, userB, listingID)

	_, err := r.store.Get(ctx, roomPath(roomID))
	if err == nil {
		return roomID, nil
	}
	if appErr := storeError(err, "Chat room", "Failed to get chat room"); !errors.IsNotFound(appErr) {
		return "", appErr
	}

	now := r.now()
	room := &entity.ChatRoom{
		ID:              roomID,
		Participants:    entity.SortedParticipants(userA, userB),
		ListingID:       listingID,
		LastMessageTime: now,
		CreatedAt:       now,
	}
	if err := r.store.Set(ctx, roomPath(roomID), mapper.EncodeChatRoom(room), false); err != nil {
		return "", storeError(err, "Chat room", "Failed to create chat room")
	}

	logger.Info("Created chat room %s", roomID)
	return roomID, nil
}

func (r *chatRepository) GetRoom(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	doc, err := r.store.Get(ctx, roomPath(roomID))
	if err != nil {
		return nil, storeError(err, "Chat room", "Failed to get chat room")
	}
	return mapper.DecodeChatRoom(doc.Data, doc.ID), nil
}

func (r *chatRepository) AddMessage(ctx context.Context, roomID string, message *entity.ChatMessage) (string, error) {
	id, err := r.store.Add(ctx, messagesCollection(roomID), mapper.EncodeChatMessage(message))
	if err != nil {
		return "", storeError(err, "Chat room", "Failed to send message")
	}
	message.ID = id
	return id, nil
}

func (r *chatRepository) UpdateRoomPreview(ctx context.Context, roomID, lastMessage string, at time.Time) error {
	err := r.store.Update(ctx, roomPath(roomID), map[string]interface{}{
		"lastMessage":     lastMessage,
		"lastMessageTime": at,
	})
	return storeError(err, "Chat room", "Failed to update chat room")
}

func (r *chatRepository) WatchRooms(ctx context.Context, userID string, opts ...subscription.Option) (*subscription.Subscription[*entity.ChatRoom], error) {
	q := service.NewQuery(chatsCollection).
		Where("participants", service.OpArrayContains, userID).
		Order("lastMessageTime", service.Desc)

	opts = append([]subscription.Option{subscription.WithName("rooms:" + userID)}, opts...)
	sub, err := subscription.Subscribe(ctx, r.store, q, mapper.DecodeChatRoom, opts...)
	if err != nil {
		return nil, storeError(err, "Chat rooms", "Failed to subscribe to chat rooms")
	}
	return sub, nil
}

func (r *chatRepository) WatchMessages(ctx context.Context, roomID string, opts ...subscription.Option) (*subscription.Subscription[*entity.ChatMessage], error) {
	q := service.NewQuery(messagesCollection(roomID)).Order("timestamp", service.Desc)

	opts = append([]subscription.Option{subscription.WithName("messages:" + roomID)}, opts...)
	sub, err := subscription.Subscribe(ctx, r.store, q, mapper.DecodeChatMessage, opts...)
	if err != nil {
		return nil, storeError(err, "Chat messages", "Failed to subscribe to messages")
	}
	return sub, nil
}
