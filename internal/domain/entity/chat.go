package entity

import (
	"sort"
	"strings"
	"time"
)

type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeVideo MessageType = "VIDEO"
)

var messageTypes = []MessageType{MessageTypeText, MessageTypeImage, MessageTypeVideo}

// ParseMessageType matches case-insensitively and falls back to TEXT.
func ParseMessageType(value string) MessageType {
	for _, t := range messageTypes {
		if strings.EqualFold(string(t), value) {
			return t
		}
	}
	return MessageTypeText
}

type ChatRoom struct {
	ID              string    `json:"id"`
	Participants    []string  `json:"participants"`
	ListingID       string    `json:"listing_id,omitempty"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type ChatMessage struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"sender_id"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
}

// SortedParticipants returns the two user ids in ascending order.
func SortedParticipants(userA, userB string) []string {
	participants := []string{userA, userB}
	sort.Strings(participants)
	return participants
}

// RoomID derives the deterministic chat room id for a pair of users and a
// listing. The result does not depend on argument order, so both sides of a
// conversation resolve to the same document.
func RoomID(userA, userB, listingID string) string {
	p := SortedParticipants(userA, userB)
	return p[0] + "_" + p[1] + "_" + listingID
}
