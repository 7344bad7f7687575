package services

import (
	"context"

	"unipool/internal/models"
	"unipool/internal/repositories/interfaces"
	"unipool/internal/utils"
	"unipool/pkg/logger"
)

type ChatService interface {
	SendMessage(ctx context.Context, message *models.Message) (*models.Message, error)
	GetMessages(ctx context.Context, bookingID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, bookingID, userID string) (int64, error)
}

type chatService struct {
	chatRepo    interfaces.ChatRepository
	bookingRepo interfaces.BookingRepository
	rideRepo    interfaces.RideRepository
	txManager   interfaces.TransactionManager
	notifier    NotificationService
	logger      *logger.Logger
}

func NewChatService(
	chatRepo interfaces.ChatRepository,
	bookingRepo interfaces.BookingRepository,
	rideRepo interfaces.RideRepository,
	txManager interfaces.TransactionManager,
	notifier NotificationService,
	logger *logger.Logger,
) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

// SendMessage stores a message from one party of a booking and bumps the
// other party's unread counter together with it.
func (s *chatService) SendMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if message.MessageType == "" {
		message.MessageType = models.MessageTypeText
	}
	if !message.MessageType.IsValid() {
		return nil, utils.NewValidationError("Message type must be one of text, image, file")
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, message.BookingID)
		if err != nil {
			return translateError(err, utils.ResourceBooking)
		}
		ride, err := s.rideRepo.GetByID(txCtx, booking.RideID)
		if err != nil {
			return translateError(err, utils.ResourceRide)
		}

		var receiverID string
		switch message.SenderID {
		case ride.DriverID:
			receiverID = booking.PassengerID
		case booking.PassengerID:
			receiverID = ride.DriverID
		default:
			return utils.NewForbiddenError("Only the driver and the passenger can chat on a booking")
		}

		message.IsRead = false
		if err := s.chatRepo.CreateMessage(txCtx, message); err != nil {
			return err
		}

		snapshot := &models.MessageSnapshot{
			Content:     message.Preview(),
			SenderID:    message.SenderID,
			MessageType: message.MessageType,
			Timestamp:   message.CreatedAt,
		}
		return s.bookingRepo.RecordMessage(txCtx, booking.ID, snapshot, receiverID)
	})
	if err != nil {
		return nil, translateError(err, utils.ResourceBooking)
	}

	s.notifier.Notify(ctx, models.BookingChannel(message.BookingID), models.EventMessage, message)

	return message, nil
}

func (s *chatService) GetMessages(ctx context.Context, bookingID string) ([]*models.Message, error) {
	messages, err := s.chatRepo.GetMessagesByBooking(ctx, bookingID)
	if err != nil {
		return nil, utils.AsAppError(err)
	}
	return messages, nil
}

// MarkRead marks the other party's messages as read by userID and clears
// userID's unread counter.
func (s *chatService) MarkRead(ctx context.Context, bookingID, userID string) (int64, error) {
	marked, err := s.chatRepo.MarkMessagesRead(ctx, bookingID, userID)
	if err != nil {
		return 0, utils.AsAppError(err)
	}

	if err := s.bookingRepo.ResetUnread(ctx, bookingID, userID); err != nil {
		return 0, utils.AsAppError(err)
	}

	if marked > 0 {
		s.notifier.Notify(ctx, models.BookingChannel(bookingID), models.EventMessagesRead, map[string]interface{}{
			"bookingId": bookingID,
			"userId":    userID,
			"count":     marked,
		})
	}

	return marked, nil
}
