package models

import (
	"time"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

func (t MessageType) IsValid() bool {
	return t == MessageTypeText || t == MessageTypeImage || t == MessageTypeFile
}

type Message struct {
	ID          string        `json:"id" bson:"_id"`
	BookingID   string        `json:"bookingId" bson:"booking_id"`
	SenderID    string        `json:"senderId" bson:"sender_id"`
	Content     string        `json:"content" bson:"content"`
	MessageType MessageType   `json:"messageType" bson:"message_type"`
	FileURL     string        `json:"fileUrl,omitempty" bson:"file_url,omitempty"`
	FileName    string        `json:"fileName,omitempty" bson:"file_name,omitempty"`
	FileSize    int64         `json:"fileSize,omitempty" bson:"file_size,omitempty"`
	IsRead      bool          `json:"isRead" bson:"is_read"`
	ReadBy      []ReadReceipt `json:"readBy" bson:"read_by"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
}

type ReadReceipt struct {
	UserID string    `json:"userId" bson:"user_id"`
	ReadAt time.Time `json:"readAt" bson:"read_at"`
}

// Preview is the text shown as a booking's last message.
func (m *Message) Preview() string {
	switch m.MessageType {
	case MessageTypeImage:
		return "📷 Image"
	case MessageTypeFile:
		if m.FileName != "" {
			return "📎 " + m.FileName
		}
		return "📎 File"
	default:
		return m.Content
	}
}
