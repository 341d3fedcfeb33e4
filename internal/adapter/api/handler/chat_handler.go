package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/usecase"
	"github.com/satvik8373/Rentieo/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createChatRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	ListingID   string `json:"listing_id"`
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=TEXT IMAGE VIDEO text image video"`
}

// CreateOrGetRoom returns the room shared by the caller and the recipient,
// creating it on first contact.
func (h *ChatHandler) CreateOrGetRoom(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req createChatRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	room, err := h.chatUseCase.CreateOrGetRoom(c.Request().Context(), uid, req.RecipientID, req.ListingID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, room)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.chatUseCase.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		RoomID:   c.Param("id"),
		SenderID: uid,
		Message:  req.Message,
		Type:     entity.ParseMessageType(req.Type),
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}
