package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satvik8373/Rentieo/internal/adapter/repository"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/infrastructure/memstore"
	"github.com/satvik8373/Rentieo/internal/infrastructure/ratelimit"
	"github.com/satvik8373/Rentieo/pkg/errors"
)

func newChatFixture(t *testing.T) (*ChatUseCase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	uc := NewChatUseCase(repository.NewChatRepository(store), ratelimit.NewRateLimiter(nil))
	return uc, store
}

func TestCreateOrGetRoom_Validation(t *testing.T) {
	uc, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := uc.CreateOrGetRoom(ctx, "u1", "", "l1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.CreateOrGetRoom(ctx, "u1", "u1", "l1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCreateOrGetRoom_ReturnsRoom(t *testing.T) {
	uc, store := newChatFixture(t)
	ctx := context.Background()

	room, err := uc.CreateOrGetRoom(ctx, "u2", "u1", "listing42")
	require.NoError(t, err)
	assert.Equal(t, "u1_u2_listing42", room.ID)
	assert.Equal(t, []string{"u1", "u2"}, room.Participants)

	again, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "listing42")
	require.NoError(t, err)
	assert.Equal(t, room.ID, again.ID)
	assert.Equal(t, 1, store.Count("chats"))
}

func TestSendMessage_WritesMessageAndPreview(t *testing.T) {
	uc, store := newChatFixture(t)
	ctx := context.Background()

	room, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "l1")
	require.NoError(t, err)

	msg, err := uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: "  hello "})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, entity.MessageTypeText, msg.Type)

	docs := store.Documents("chats/" + room.ID + "/messages")
	require.Len(t, docs, 1)
	assert.Equal(t, "u1", docs[0].Data["senderId"])
	assert.Equal(t, "hello", docs[0].Data["message"])

	doc, err := store.Get(ctx, "chats/"+room.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Data["lastMessage"])
}

func TestSendMessage_PreviewFailureIsNotFatal(t *testing.T) {
	uc, store := newChatFixture(t)
	ctx := context.Background()

	room, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "l1")
	require.NoError(t, err)

	store.SetFault(func(op memstore.Op, path string) error {
		if op == memstore.OpUpdate {
			return service.ErrUnavailable
		}
		return nil
	})

	msg, err := uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u2", Message: "still here"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)

	store.SetFault(nil)
	assert.Len(t, store.Documents("chats/"+room.ID+"/messages"), 1)
	doc, err := store.Get(ctx, "chats/"+room.ID)
	require.NoError(t, err)
	assert.Equal(t, "", doc.Data["lastMessage"])
}

func TestSendMessage_MessageFailureReturnsError(t *testing.T) {
	uc, store := newChatFixture(t)
	ctx := context.Background()

	room, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "l1")
	require.NoError(t, err)
	store.SetFault(func(op memstore.Op, path string) error {
		if op == memstore.OpAdd {
			return service.ErrUnavailable
		}
		return nil
	})

	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: "lost"})
	assert.True(t, errors.Is(err, "UNAVAILABLE"))
}

func TestSendMessage_Rules(t *testing.T) {
	uc, _ := newChatFixture(t)
	ctx := context.Background()

	room, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "l1")
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: "   "})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "intruder", Message: "hi"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: "missing", SenderID: "u1", Message: "hi"})
	assert.True(t, errors.IsNotFound(err))
}

func TestSendMessage_LengthCountsCharacters(t *testing.T) {
	uc, _ := newChatFixture(t)
	ctx := context.Background()

	room, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "l1")
	require.NoError(t, err)

	// 2000 three-byte runes fit even though they take 6000 bytes.
	atLimit := strings.Repeat("€", maxMessageLength)
	msg, err := uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: atLimit})
	require.NoError(t, err)
	assert.Equal(t, atLimit, msg.Message)

	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: atLimit + "€"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessage_RateLimited(t *testing.T) {
	uc, _ := newChatFixture(t)
	uc.rateLimiter = ratelimit.NewRateLimiter(map[string]ratelimit.Limit{
		ratelimit.ActionSendMessage: ratelimit.PerMinute(2),
	})
	ctx := context.Background()

	room, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "l1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: "hi"})
		require.NoError(t, err)
	}
	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: "hi"})
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestWatchMessages_NewestFirst(t *testing.T) {
	uc, _ := newChatFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	uc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	room, err := uc.CreateOrGetRoom(ctx, "u1", "u2", "l1")
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u1", Message: "first"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, SenderID: "u2", Message: "second"})
	require.NoError(t, err)

	_, err = uc.WatchMessages(ctx, room.ID, "intruder")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	sub, err := uc.WatchMessages(ctx, room.ID, "u1")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case msgs := <-sub.Updates():
		require.Len(t, msgs, 2)
		assert.Equal(t, "second", msgs[0].Message)
		assert.Equal(t, "first", msgs[1].Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
	}
}
