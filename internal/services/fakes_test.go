package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"
	"unipool/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txKey struct{}

// memStore is an in-memory database. Transactions hold the store lock for
// their whole duration and restore a snapshot when fn fails, which gives the
// same all-or-nothing behaviour as a Mongo transaction.
//
// With interleave set, transactions no longer serialize: every repository
// call locks on its own and ride reads yield, so only the conditional
// updates keep concurrent callers apart.
type memStore struct {
	mu         sync.Mutex
	interleave bool
	seq      int
	rides    map[string]*models.Ride
	bookings map[string]*models.Booking
	messages []*models.Message
	reviews  []*models.Review

	failBookingCreate error
	commits           int
	aborts            int
}

func newMemStore() *memStore {
	return &memStore{
		rides:    make(map[string]*models.Ride),
		bookings: make(map[string]*models.Booking),
	}
}

func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type memSnapshot struct {
	rides    map[string]*models.Ride
	bookings map[string]*models.Booking
	messages []*models.Message
	reviews  []*models.Review
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		rides:    make(map[string]*models.Ride, len(s.rides)),
		bookings: make(map[string]*models.Booking, len(s.bookings)),
		messages: append([]*models.Message(nil), s.messages...),
		reviews:  append([]*models.Review(nil), s.reviews...),
	}
	for id, r := range s.rides {
		snap.rides[id] = copyRide(r)
	}
	for id, b := range s.bookings {
		snap.bookings[id] = copyBooking(b)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.rides = snap.rides
	s.bookings = snap.bookings
	s.messages = snap.messages
	s.reviews = snap.reviews
}

func copyRide(r *models.Ride) *models.Ride {
	c := *r
	return &c
}

func copyBooking(b *models.Booking) *models.Booking {
	c := *b
	if b.UnreadCount != nil {
		c.UnreadCount = make(map[string]int, len(b.UnreadCount))
		for k, v := range b.UnreadCount {
			c.UnreadCount[k] = v
		}
	}
	if b.LastMessage != nil {
		lm := *b.LastMessage
		c.LastMessage = &lm
	}
	return &c
}

// Test helpers

func (s *memStore) addRide(t *testing.T, driverID string, seats int) *models.Ride {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	ride := &models.Ride{
		ID:             s.nextID("ride"),
		DriverID:       driverID,
		SourceAddress:  "FAST NUCES",
		DestAddress:    "Blue Area",
		DepartureTime:  time.Now().Add(time.Duration(s.seq) * time.Hour),
		SeatsTotal:     seats,
		SeatsAvailable: seats,
		CostPerSeat:    250,
		IsActive:       true,
		Status:         models.RideStatusScheduled,
	}
	s.rides[ride.ID] = copyRide(ride)
	return ride
}

func (s *memStore) ride(t *testing.T, id string) *models.Ride {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rides[id]
	require.True(t, ok, "ride %s missing", id)
	return copyRide(r)
}

func (s *memStore) booking(t *testing.T, id string) *models.Booking {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	require.True(t, ok, "booking %s missing", id)
	return copyBooking(b)
}

func (s *memStore) mutateRide(id string, fn func(r *models.Ride)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rides[id])
}

// assertConservation checks seats_total - seats_available equals the seats
// held by pending and accepted bookings.
func (s *memStore) assertConservation(t *testing.T, rideID string) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	ride := s.rides[rideID]
	held := 0
	for _, b := range s.bookings {
		if b.RideID == rideID && b.Status.HoldsSeats() {
			held += b.SeatsBooked
		}
	}
	assert.GreaterOrEqual(t, ride.SeatsAvailable, 0)
	assert.LessOrEqual(t, ride.SeatsAvailable, ride.SeatsTotal)
	assert.Equal(t, ride.SeatsTotal-ride.SeatsAvailable, held, "ride %s out of balance", rideID)
}

// Transaction manager

type memTxManager struct {
	store *memStore
}

func (m *memTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.store.interleave {
		return m.interleaved(ctx, fn)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		m.store.aborts++
		return err
	}
	m.store.commits++
	return nil
}

// interleaved runs fn without the store lock. It cannot roll back, so it only
// suits callers whose failures happen before their first write.
func (m *memTxManager) interleaved(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err != nil {
		m.store.aborts++
		return err
	}
	m.store.commits++
	return nil
}

// Rides

type memRideRepo struct {
	store *memStore
}

func (r *memRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	defer r.store.lock(ctx)()
	if ride.ID == "" {
		ride.ID = r.store.nextID("ride")
	}
	ride.CreatedAt = time.Now().UTC()
	ride.UpdatedAt = ride.CreatedAt
	r.store.rides[ride.ID] = copyRide(ride)
	return nil
}

func (r *memRideRepo) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	ride, err := r.getByID(ctx, id)
	if r.store.interleave {
		runtime.Gosched()
	}
	return ride, err
}

func (r *memRideRepo) getByID(ctx context.Context, id string) (*models.Ride, error) {
	defer r.store.lock(ctx)()
	ride, ok := r.store.rides[id]
	if !ok {
		return nil, fmt.Errorf("ride %s: %w", id, utils.ErrNotFound)
	}
	return copyRide(ride), nil
}

func (r *memRideRepo) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.rides[id]; !ok {
		return fmt.Errorf("ride %s: %w", id, utils.ErrNotFound)
	}
	delete(r.store.rides, id)
	return nil
}

func (r *memRideRepo) List(ctx context.Context, filter interfaces.RideFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	defer r.store.lock(ctx)()
	rides := make([]*models.Ride, 0)
	for _, ride := range r.store.rides {
		if filter.DriverID != "" && ride.DriverID != filter.DriverID {
			continue
		}
		if filter.ActiveOnly && !ride.IsActive {
			continue
		}
		rides = append(rides, copyRide(ride))
	}
	sort.Slice(rides, func(i, j int) bool { return rides[i].DepartureTime.Before(rides[j].DepartureTime) })
	return rides, int64(len(rides)), nil
}

func (r *memRideRepo) ListByDriver(ctx context.Context, driverID string) ([]*models.Ride, error) {
	rides, _, err := r.List(ctx, interfaces.RideFilter{DriverID: driverID}, nil)
	return rides, err
}

func (r *memRideRepo) ReserveSeats(ctx context.Context, id string, seats int) (*models.Ride, error) {
	defer r.store.lock(ctx)()
	ride, ok := r.store.rides[id]
	if !ok || !ride.IsActive || ride.Status != models.RideStatusScheduled || ride.SeatsAvailable < seats {
		return nil, interfaces.ErrConditionNotMet
	}
	ride.SeatsAvailable -= seats
	return copyRide(ride), nil
}

func (r *memRideRepo) ReleaseSeats(ctx context.Context, id string, seats int) (*models.Ride, error) {
	defer r.store.lock(ctx)()
	ride, ok := r.store.rides[id]
	if !ok || ride.SeatsAvailable+seats > ride.SeatsTotal {
		return nil, interfaces.ErrConditionNotMet
	}
	ride.SeatsAvailable += seats
	return copyRide(ride), nil
}

func (r *memRideRepo) UpdateStatus(ctx context.Context, id string, from, to models.RideStatus) (*models.Ride, error) {
	defer r.store.lock(ctx)()
	ride, ok := r.store.rides[id]
	if !ok || ride.Status != from {
		return nil, interfaces.ErrConditionNotMet
	}
	ride.Status = to
	if to == models.RideStatusCompleted {
		ride.IsActive = false
	}
	return copyRide(ride), nil
}

func (r *memRideRepo) UpdateLocation(ctx context.Context, id string, lat, lng float64) (*models.Ride, error) {
	defer r.store.lock(ctx)()
	ride, ok := r.store.rides[id]
	if !ok {
		return nil, fmt.Errorf("ride %s: %w", id, utils.ErrNotFound)
	}
	ride.CurrentLat, ride.CurrentLng = &lat, &lng
	ride.UpdatedAt = time.Now().UTC()
	return copyRide(ride), nil
}

// Bookings

type memBookingRepo struct {
	store *memStore
}

func (r *memBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	defer r.store.lock(ctx)()
	if r.store.failBookingCreate != nil {
		return r.store.failBookingCreate
	}
	if booking.ID == "" {
		booking.ID = r.store.nextID("booking")
	}
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	r.store.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	defer r.store.lock(ctx)()
	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
	}
	return copyBooking(booking), nil
}

func (r *memBookingRepo) ListByPassenger(ctx context.Context, passengerID string, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	defer r.store.lock(ctx)()
	bookings := make([]*models.Booking, 0)
	for _, b := range r.store.bookings {
		if b.PassengerID == passengerID {
			bookings = append(bookings, copyBooking(b))
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, int64(len(bookings)), nil
}

func (r *memBookingRepo) ListByRide(ctx context.Context, rideID string, statuses ...models.BookingStatus) ([]*models.Booking, error) {
	defer r.store.lock(ctx)()
	bookings := make([]*models.Booking, 0)
	for _, b := range r.store.bookings {
		if b.RideID != rideID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, b.Status) {
			continue
		}
		bookings = append(bookings, copyBooking(b))
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func containsStatus(statuses []models.BookingStatus, status models.BookingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *memBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	defer r.store.lock(ctx)()
	booking, ok := r.store.bookings[id]
	if !ok || booking.Status != from {
		return nil, interfaces.ErrConditionNotMet
	}
	booking.Status = to
	booking.UpdatedAt = time.Now().UTC()
	return copyBooking(booking), nil
}

func (r *memBookingRepo) RejectSeatHolding(ctx context.Context, rideID string) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, b := range r.store.bookings {
		if b.RideID == rideID && b.Status.HoldsSeats() {
			b.Status = models.BookingStatusRejected
			n++
		}
	}
	return n, nil
}

func (r *memBookingRepo) TallyByRides(ctx context.Context, rideIDs []string) (map[string]*interfaces.RideBookingTally, error) {
	defer r.store.lock(ctx)()
	tallies := make(map[string]*interfaces.RideBookingTally)
	wanted := make(map[string]bool, len(rideIDs))
	for _, id := range rideIDs {
		wanted[id] = true
	}
	for _, b := range r.store.bookings {
		if !wanted[b.RideID] {
			continue
		}
		tally, ok := tallies[b.RideID]
		if !ok {
			tally = &interfaces.RideBookingTally{RideID: b.RideID}
			tallies[b.RideID] = tally
		}
		tally.Bookings++
		if b.Status == models.BookingStatusAccepted {
			tally.Accepted++
			tally.SeatsAccepted += int64(b.SeatsBooked)
		}
	}
	return tallies, nil
}

func (r *memBookingRepo) RecordMessage(ctx context.Context, id string, snapshot *models.MessageSnapshot, receiverID string) error {
	defer r.store.lock(ctx)()
	booking, ok := r.store.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s: %w", id, utils.ErrNotFound)
	}
	s := *snapshot
	booking.LastMessage = &s
	if booking.UnreadCount == nil {
		booking.UnreadCount = make(map[string]int)
	}
	booking.UnreadCount[receiverID]++
	return nil
}

func (r *memBookingRepo) ResetUnread(ctx context.Context, id, userID string) error {
	defer r.store.lock(ctx)()
	if booking, ok := r.store.bookings[id]; ok && booking.UnreadCount != nil {
		booking.UnreadCount[userID] = 0
	}
	return nil
}

// Chat

type memChatRepo struct {
	store *memStore
}

func (r *memChatRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	defer r.store.lock(ctx)()
	if message.ID == "" {
		message.ID = r.store.nextID("message")
	}
	message.CreatedAt = time.Now().UTC()
	c := *message
	r.store.messages = append(r.store.messages, &c)
	return nil
}

func (r *memChatRepo) GetMessagesByBooking(ctx context.Context, bookingID string) ([]*models.Message, error) {
	defer r.store.lock(ctx)()
	messages := make([]*models.Message, 0)
	for _, m := range r.store.messages {
		if m.BookingID == bookingID {
			c := *m
			messages = append(messages, &c)
		}
	}
	return messages, nil
}

func (r *memChatRepo) MarkMessagesRead(ctx context.Context, bookingID, userID string) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, m := range r.store.messages {
		if m.BookingID != bookingID || m.SenderID == userID || readBy(m, userID) {
			continue
		}
		m.IsRead = true
		m.ReadBy = append(m.ReadBy, models.ReadReceipt{UserID: userID, ReadAt: time.Now().UTC()})
		n++
	}
	return n, nil
}

func readBy(m *models.Message, userID string) bool {
	for _, receipt := range m.ReadBy {
		if receipt.UserID == userID {
			return true
		}
	}
	return false
}

// Reviews

type memReviewRepo struct {
	store *memStore
}

func (r *memReviewRepo) Create(ctx context.Context, review *models.Review) error {
	defer r.store.lock(ctx)()
	for _, existing := range r.store.reviews {
		if existing.RideID == review.RideID && existing.ReviewerID == review.ReviewerID && existing.RevieweeID == review.RevieweeID {
			return interfaces.ErrDuplicate
		}
	}
	if review.ID == "" {
		review.ID = r.store.nextID("review")
	}
	review.CreatedAt = time.Now().UTC()
	c := *review
	r.store.reviews = append(r.store.reviews, &c)
	return nil
}

func (r *memReviewRepo) GetByReviewee(ctx context.Context, revieweeID string, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	defer r.store.lock(ctx)()
	reviews := make([]*models.Review, 0)
	for i := len(r.store.reviews) - 1; i >= 0; i-- {
		if r.store.reviews[i].RevieweeID == revieweeID {
			c := *r.store.reviews[i]
			reviews = append(reviews, &c)
		}
	}
	return reviews, int64(len(reviews)), nil
}

func (r *memReviewRepo) GetRatingSummary(ctx context.Context, revieweeID string) (*models.RatingSummary, error) {
	defer r.store.lock(ctx)()
	summary := &models.RatingSummary{}
	total := 0
	for _, review := range r.store.reviews {
		if review.RevieweeID == revieweeID {
			total += review.Rating
			summary.Count++
		}
	}
	if summary.Count > 0 {
		summary.Average = float64(total) / float64(summary.Count)
	}
	return summary, nil
}

// Notifications

type notification struct {
	Channel string
	Event   string
	Data    interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) Notify(ctx context.Context, channel, event string, data interface{}) {
	n.NotifyMany(ctx, []string{channel}, event, data)
}

func (n *recordingNotifier) NotifyMany(ctx context.Context, channels []string, event string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, channel := range channels {
		n.events = append(n.events, notification{Channel: channel, Event: event, Data: data})
	}
}

func (n *recordingNotifier) Wait() {}

func (n *recordingNotifier) channels(event string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var channels []string
	for _, e := range n.events {
		if e.Event == event {
			channels = append(channels, e.Channel)
		}
	}
	return channels
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// Fixture wiring

type fixture struct {
	store    *memStore
	rides    *memRideRepo
	bookings *memBookingRepo
	chat     *memChatRepo
	reviews  *memReviewRepo
	tx       *memTxManager
	notifier *recordingNotifier
}

func newFixture() *fixture {
	store := newMemStore()
	return &fixture{
		store:    store,
		rides:    &memRideRepo{store: store},
		bookings: &memBookingRepo{store: store},
		chat:     &memChatRepo{store: store},
		reviews:  &memReviewRepo{store: store},
		tx:       &memTxManager{store: store},
		notifier: &recordingNotifier{},
	}
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind, appErr.Message)
}
