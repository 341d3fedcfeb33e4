package repository

import (
	"context"
	"time"

	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/subscription"
)

type ChatRepository interface {
	// CreateOrGetRoom converges both participants on the room keyed by
	// entity.RoomID and only writes when that room is absent.
	CreateOrGetRoom(ctx context.Context, userA, userB, listingID string) (string, error)
	GetRoom(ctx context.Context, roomID string) (*entity.ChatRoom, error)
	AddMessage(ctx context.Context, roomID string, message *entity.ChatMessage) (string, error)
	UpdateRoomPreview(ctx context.Context, roomID, lastMessage string, at time.Time) error

	WatchRooms(ctx context.Context, userID string, opts ...subscription.Option) (*subscription.Subscription[*entity.ChatRoom], error)
	WatchMessages(ctx context.Context, roomID string, opts ...subscription.Option) (*subscription.Subscription[*entity.ChatMessage], error)
}
