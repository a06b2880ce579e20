// Package domain contains core concepts of the pair-chat system.
// This file defines Message records and their lifecycle rules.
// A message is created once, then only `IsDeleted` and `ReadAt`
// may change, each monotonically and at most once.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// Message is the persisted chat record exchanged between two identities.
// The same shape is serialized on disk and on the wire.
type Message struct {
	ID         uuid.UUID   `json:"id"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
	Type       MessageType `json:"type"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	IsDeleted  bool        `json:"isDeleted"`
	ReadAt     *time.Time  `json:"readAt,omitempty"`
}

// Read reports whether the message has been read.
func (m Message) Read() bool {
	return m.ReadAt != nil
}
