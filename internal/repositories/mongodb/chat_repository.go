package mongodb

import (
	"context"
	"fmt"
	"time"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messagesCollection = "messages"

type chatRepository struct {
	collection *mongo.Collection
}

func NewChatRepository(db *mongo.Database) interfaces.ChatRepository {
	return &chatRepository{
		collection: db.Collection(messagesCollection),
	}
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.CreatedAt = time.Now().UTC()
	if message.ReadBy == nil {
		message.ReadBy = []models.ReadReceipt{}
	}

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *chatRepository) GetMessagesByBooking(ctx context.Context, bookingID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*models.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

// MarkMessagesRead marks every message in the booking not sent by userID as
// read and records a receipt for userID once.
func (r *chatRepository) MarkMessagesRead(ctx context.Context, bookingID, userID string) (int64, error) {
	filter := bson.M{
		"booking_id":      bookingID,
		"sender_id":       bson.M{"$ne": userID},
		"read_by.user_id": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$set":  bson.M{"is_read": true},
		"$push": bson.M{"read_by": models.ReadReceipt{UserID: userID, ReadAt: time.Now().UTC()}},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}

	return result.ModifiedCount, nil
}
