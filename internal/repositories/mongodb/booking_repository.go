package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"
	"unipool/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bookingsCollection = "bookings"

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection(bookingsCollection),
	}
}

// Basic CRUD operations
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// Listing
func (r *bookingRepository) ListByPassenger(ctx context.Context, passengerID string, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{"passenger_id": passengerID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*models.Booking, 0, params.GetLimit())
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, total, nil
}

func (r *bookingRepository) ListByRide(ctx context.Context, rideID string, statuses ...models.BookingStatus) ([]*models.Booking, error) {
	filter := bson.M{"ride_id": rideID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find ride bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*models.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// Status operations
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}}

	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrConditionNotMet
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return &booking, nil
}

// RejectSeatHolding rejects every pending or accepted booking on a ride.
func (r *bookingRepository) RejectSeatHolding(ctx context.Context, rideID string) (int64, error) {
	filter := bson.M{
		"ride_id": rideID,
		"status":  bson.M{"$in": models.SeatHoldingStatuses},
	}
	update := bson.M{"$set": bson.M{
		"status":     models.BookingStatusRejected,
		"updated_at": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reject ride bookings: %w", err)
	}

	return result.ModifiedCount, nil
}

// Aggregates
func (r *bookingRepository) TallyByRides(ctx context.Context, rideIDs []string) (map[string]*interfaces.RideBookingTally, error) {
	tallies := make(map[string]*interfaces.RideBookingTally, len(rideIDs))
	if len(rideIDs) == 0 {
		return tallies, nil
	}

	isAccepted := bson.M{"$eq": bson.A{"$status", models.BookingStatusAccepted}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ride_id": bson.M{"$in": rideIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$ride_id",
			"bookings":       bson.M{"$sum": 1},
			"accepted":       bson.M{"$sum": bson.M{"$cond": bson.A{isAccepted, 1, 0}}},
			"seats_accepted": bson.M{"$sum": bson.M{"$cond": bson.A{isAccepted, "$seats_booked", 0}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var tally interfaces.RideBookingTally
		if err := cursor.Decode(&tally); err != nil {
			return nil, fmt.Errorf("failed to decode booking tally: %w", err)
		}
		tallies[tally.RideID] = &tally
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return tallies, nil
}

// Chat metadata
func (r *bookingRepository) RecordMessage(ctx context.Context, id string, snapshot *models.MessageSnapshot, receiverID string) error {
	update := bson.M{
		"$set": bson.M{"last_message": snapshot},
		"$inc": bson.M{"unread_count." + receiverID: 1},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record booking message: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
	}

	return nil
}

func (r *bookingRepository) ResetUnread(ctx context.Context, id, userID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"unread_count." + userID: 0}})
	if err != nil {
		return fmt.Errorf("failed to reset unread count: %w", err)
	}

	return nil
}
