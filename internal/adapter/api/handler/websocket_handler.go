package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/domain/repository"
	ws "github.com/satvik8373/Rentieo/internal/infrastructure/websocket"
	"github.com/satvik8373/Rentieo/internal/subscription"
	"github.com/satvik8373/Rentieo/internal/usecase"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
	"github.com/satvik8373/Rentieo/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
	baseCtx   context.Context
}

// NewWebSocketHandler upgrades authenticated requests. Connections live
// until the client leaves or baseCtx ends.
func NewWebSocketHandler(baseCtx context.Context, wsManager *ws.Manager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		baseCtx:   baseCtx,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(h.baseCtx, userID, conn)
	if !h.wsManager.RegisterClient(client) {
		conn.Close()
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}

// LiveFeeds opens the snapshot feeds a WebSocket client may subscribe to.
type LiveFeeds struct {
	chatUseCase    *usecase.ChatUseCase
	listingUseCase *usecase.ListingUseCase
	userRepo       repository.UserRepository
}

func NewLiveFeeds(chatUseCase *usecase.ChatUseCase, listingUseCase *usecase.ListingUseCase, userRepo repository.UserRepository) *LiveFeeds {
	return &LiveFeeds{
		chatUseCase:    chatUseCase,
		listingUseCase: listingUseCase,
		userRepo:       userRepo,
	}
}

func (f *LiveFeeds) OpenFeed(ctx context.Context, client *ws.Client, feed, id string) error {
	key := ws.FeedKey(feed, id)
	opts := []subscription.Option{
		subscription.WithName(client.UserID + "/" + key),
		subscription.WithErrorHandler(func(err error) {
			client.SendError(feed, key, "Live updates interrupted")
		}),
	}

	switch feed {
	case ws.FeedRooms:
		sub, err := f.chatUseCase.WatchRooms(ctx, client.UserID, opts...)
		if err != nil {
			return err
		}
		ws.Attach(client, feed, id, sub)

	case ws.FeedMessages:
		if id == "" {
			return errors.BadRequest("Room id is required", nil)
		}
		sub, err := f.chatUseCase.WatchMessages(ctx, id, client.UserID, opts...)
		if err != nil {
			return err
		}
		ws.Attach(client, feed, id, sub)

	case ws.FeedListings:
		sub, err := f.listingUseCase.WatchActive(ctx, opts...)
		if err != nil {
			return err
		}
		ws.Attach(client, feed, id, sub)

	case ws.FeedMyListings:
		sub, err := f.listingUseCase.WatchByUser(ctx, client.UserID, opts...)
		if err != nil {
			return err
		}
		ws.Attach(client, feed, id, sub)

	case ws.FeedAdminListings:
		user, err := f.userRepo.GetByID(ctx, client.UserID)
		if err != nil || !user.IsAdmin() {
			return errors.Forbidden("Admin privileges required", nil)
		}
		sub, err := f.listingUseCase.WatchAll(ctx, opts...)
		if err != nil {
			return err
		}
		ws.Attach(client, feed, id, sub)

	default:
		return errors.BadRequest("Unknown feed", nil)
	}
	return nil
}
