package interfaces

import (
	"context"

	"unipool/internal/models"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessagesByBooking(ctx context.Context, bookingID string) ([]*models.Message, error)
	MarkMessagesRead(ctx context.Context, bookingID, userID string) (int64, error)
}
