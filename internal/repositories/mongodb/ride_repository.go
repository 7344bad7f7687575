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

const ridesCollection = "rides"

type rideRepository struct {
	collection *mongo.Collection
}

func NewRideRepository(db *mongo.Database) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection(ridesCollection),
	}
}

// Basic CRUD operations
func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	if ride.ID == "" {
		ride.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ride.CreatedAt = now
	ride.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, ride); err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ride %s: %w", id, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("ride %s: %w", id, utils.ErrNotFound)
	}

	return nil
}

// Listing
func (r *rideRepository) List(ctx context.Context, filter interfaces.RideFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	query := bson.M{}
	if filter.DriverID != "" {
		query["driver_id"] = filter.DriverID
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if search := params.GetSearchFilter([]string{"source_address", "dest_address"}); len(search) > 0 {
		for k, v := range search {
			query[k] = v
		}
	}

	return r.findRidesWithFilter(ctx, query, params)
}

func (r *rideRepository) ListByDriver(ctx context.Context, driverID string) ([]*models.Ride, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"driver_id": driverID}, options.Find().SetSort(bson.D{{Key: "departure_time", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list driver rides: %w", err)
	}
	defer cursor.Close(ctx)

	rides := make([]*models.Ride, 0)
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rides: %w", err)
	}

	return rides, nil
}

// Seat ledger

// ReserveSeats decrements seats_available only while it is still at least
// seats and the ride is open for booking. The guard and the decrement are a
// single document update, so concurrent callers cannot oversell.
func (r *rideRepository) ReserveSeats(ctx context.Context, id string, seats int) (*models.Ride, error) {
	filter := bson.M{
		"_id":             id,
		"is_active":       true,
		"status":          models.RideStatusScheduled,
		"seats_available": bson.M{"$gte": seats},
	}
	update := bson.M{
		"$inc": bson.M{"seats_available": -seats},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	return r.findOneAndUpdate(ctx, filter, update, "reserve seats")
}

// ReleaseSeats increments seats_available unless that would exceed seats_total.
func (r *rideRepository) ReleaseSeats(ctx context.Context, id string, seats int) (*models.Ride, error) {
	filter := bson.M{
		"_id": id,
		"$expr": bson.M{
			"$lte": bson.A{bson.M{"$add": bson.A{"$seats_available", seats}}, "$seats_total"},
		},
	}
	update := bson.M{
		"$inc": bson.M{"seats_available": seats},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	return r.findOneAndUpdate(ctx, filter, update, "release seats")
}

// Lifecycle
func (r *rideRepository) UpdateStatus(ctx context.Context, id string, from, to models.RideStatus) (*models.Ride, error) {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if to == models.RideStatusCompleted {
		set["is_active"] = false
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, "update ride status")
}

func (r *rideRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) (*models.Ride, error) {
	update := bson.M{"$set": bson.M{
		"current_lat": lat,
		"current_lng": lng,
		"updated_at":  time.Now().UTC(),
	}}

	ride, err := r.findOneAndUpdate(ctx, bson.M{"_id": id}, update, "update ride location")
	if errors.Is(err, interfaces.ErrConditionNotMet) {
		return nil, fmt.Errorf("ride %s: %w", id, utils.ErrNotFound)
	}
	return ride, err
}

// Helper methods
func (r *rideRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, op string) (*models.Ride, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrConditionNotMet
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return &ride, nil
}

func (r *rideRepository) findRidesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	rides := make([]*models.Ride, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, 0, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}

	return rides, total, nil
}
