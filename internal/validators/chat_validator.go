package validators

import (
	"strings"

	"unipool/internal/models"
)

type MessageCreateRequest struct {
	BookingID   string `json:"bookingId" validate:"required,entity_id"`
	SenderID    string `json:"senderId" validate:"required,entity_id"`
	Content     string `json:"content" validate:"max=2000"`
	MessageType string `json:"messageType" validate:"omitempty,message_type"`
	FileURL     string `json:"fileUrl" validate:"omitempty,url"`
	FileName    string `json:"fileName" validate:"omitempty,max=255"`
	FileSize    int64  `json:"fileSize" validate:"omitempty,min=0"`
}

type MarkReadRequest struct {
	BookingID string `json:"bookingId" validate:"required,entity_id"`
	UserID    string `json:"userId" validate:"required,entity_id"`
}

func ValidateMessageCreate(req *MessageCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.MessageType == "" {
		req.MessageType = string(models.MessageTypeText)
	}

	// Text messages need content, attachments need a file
	switch models.MessageType(req.MessageType) {
	case models.MessageTypeText:
		if strings.TrimSpace(req.Content) == "" {
			errors = append(errors, ValidationError{Field: "content", Tag: "required", Message: "content is required"})
		}
	case models.MessageTypeImage, models.MessageTypeFile:
		if req.FileURL == "" {
			errors = append(errors, ValidationError{Field: "fileUrl", Tag: "required", Message: "fileUrl is required for attachments"})
		}
	}

	return errors
}
