package services

import (
	"context"
	"testing"

	"unipool/internal/models"
	"unipool/internal/utils"
	"unipool/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(t *testing.T) (*fixture, ChatService, *models.Booking) {
	t.Helper()
	f := newFixture()
	ride := f.store.addRide(t, "driver-1", 3)
	booking, err := newBookingService(f).CreateBooking(context.Background(), ride.ID, "passenger-1", 1)
	require.NoError(t, err)

	svc := NewChatService(f.chat, f.bookings, f.rides, f.tx, f.notifier, logger.NewNop())
	return f, svc, booking
}

func TestSendMessageUpdatesReceiverUnread(t *testing.T) {
	ctx := context.Background()
	f, svc, booking := newChatFixture(t)

	msg, err := svc.SendMessage(ctx, &models.Message{
		BookingID: booking.ID,
		SenderID:  "passenger-1",
		Content:   "At the main gate",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessageTypeText, msg.MessageType)
	assert.NotEmpty(t, msg.ID)

	_, err = svc.SendMessage(ctx, &models.Message{
		BookingID:   booking.ID,
		SenderID:    "driver-1",
		MessageType: models.MessageTypeImage,
		FileURL:     "https://cdn.example.com/car.jpg",
	})
	require.NoError(t, err)

	stored := f.store.booking(t, booking.ID)
	assert.Equal(t, 1, stored.UnreadCount["driver-1"])
	assert.Equal(t, 1, stored.UnreadCount["passenger-1"])
	require.NotNil(t, stored.LastMessage)
	assert.Equal(t, "📷 Image", stored.LastMessage.Content)
	assert.Equal(t, "driver-1", stored.LastMessage.SenderID)

	assert.Equal(t, []string{
		models.BookingChannel(booking.ID),
		models.BookingChannel(booking.ID),
	}, f.notifier.channels(models.EventMessage))
}

func TestSendMessageRejectsOutsiders(t *testing.T) {
	ctx := context.Background()
	f, svc, booking := newChatFixture(t)
	before := f.notifier.count()

	_, err := svc.SendMessage(ctx, &models.Message{BookingID: booking.ID, SenderID: "stranger", Content: "hi"})
	assertKind(t, err, utils.KindForbidden)

	_, err = svc.SendMessage(ctx, &models.Message{BookingID: "booking-missing", SenderID: "driver-1", Content: "hi"})
	assertKind(t, err, utils.KindNotFound)

	_, err = svc.SendMessage(ctx, &models.Message{BookingID: booking.ID, SenderID: "driver-1", MessageType: "video"})
	assertKind(t, err, utils.KindValidation)

	assert.Empty(t, f.store.messages)
	assert.Nil(t, f.store.booking(t, booking.ID).LastMessage)
	assert.Equal(t, before, f.notifier.count())
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	f, svc, booking := newChatFixture(t)

	for _, content := range []string{"one", "two"} {
		_, err := svc.SendMessage(ctx, &models.Message{BookingID: booking.ID, SenderID: "passenger-1", Content: content})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.store.booking(t, booking.ID).UnreadCount["driver-1"])

	marked, err := svc.MarkRead(ctx, booking.ID, "driver-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)
	assert.Zero(t, f.store.booking(t, booking.ID).UnreadCount["driver-1"])
	assert.Len(t, f.notifier.channels(models.EventMessagesRead), 1)

	marked, err = svc.MarkRead(ctx, booking.ID, "driver-1")
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Len(t, f.notifier.channels(models.EventMessagesRead), 1)

	messages, err := svc.GetMessages(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Content)
	assert.True(t, messages[0].IsRead)
}
