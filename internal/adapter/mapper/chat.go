package mapper

import (
	"github.com/satvik8373/Rentieo/internal/domain/entity"
)

func DecodeChatRoom(record map[string]interface{}, id string) *entity.ChatRoom {
	return &entity.ChatRoom{
		ID:              id,
		Participants:    StringSlice(record, "participants"),
		ListingID:       String(record, "listingId", ""),
		LastMessage:     String(record, "lastMessage", ""),
		LastMessageTime: Time(record, "lastMessageTime"),
		CreatedAt:       Time(record, "createdAt"),
	}
}

// EncodeChatRoom omits the id; it is the document key.
func EncodeChatRoom(room *entity.ChatRoom) map[string]interface{} {
	return map[string]interface{}{
		"participants":    stringsOrEmpty(room.Participants),
		"listingId":       room.ListingID,
		"lastMessage":     room.LastMessage,
		"lastMessageTime": room.LastMessageTime,
		"createdAt":       room.CreatedAt,
	}
}

func DecodeChatMessage(record map[string]interface{}, id string) *entity.ChatMessage {
	return &entity.ChatMessage{
		ID:        id,
		SenderID:  String(record, "senderId", ""),
		Message:   String(record, "message", ""),
		Timestamp: Time(record, "timestamp"),
		Type:      entity.ParseMessageType(String(record, "type", "text")),
	}
}

func EncodeChatMessage(msg *entity.ChatMessage) map[string]interface{} {
	msgType := msg.Type
	if msgType == "" {
		msgType = entity.MessageTypeText
	}
	return map[string]interface{}{
		"senderId":  msg.SenderID,
		"message":   msg.Message,
		"timestamp": msg.Timestamp,
		"type":      enumName(string(msgType)),
	}
}
