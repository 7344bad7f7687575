package services

import (
	"strings"
	"time"

	"unipool/internal/models"
	"unipool/internal/utils"
)

type RealtimeTokenResponse struct {
	*utils.RealtimeToken
	Channels []string `json:"channels"`
}

// RealtimeAuthService issues and verifies websocket tokens.
type RealtimeAuthService interface {
	IssueToken(userID string) (*RealtimeTokenResponse, error)
	VerifyRealtimeToken(token string) (string, error)
}

type realtimeAuthService struct {
	secret string
	issuer string
	ttl    time.Duration
}

func NewRealtimeAuthService(secret, issuer string, ttl time.Duration) RealtimeAuthService {
	return &realtimeAuthService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

func (s *realtimeAuthService) IssueToken(userID string) (*RealtimeTokenResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, utils.NewValidationErrorWithDetails(utils.ErrValidationFailed, map[string]string{
			"userId": "userId is required",
		})
	}

	token, err := utils.GenerateRealtimeToken(userID, s.issuer, s.secret, s.ttl)
	if err != nil {
		return nil, utils.NewInternalError("Failed to issue realtime token", err)
	}

	return &RealtimeTokenResponse{
		RealtimeToken: token,
		Channels: []string{
			models.DriverChannel(userID),
			models.PassengerChannel(userID),
		},
	}, nil
}

func (s *realtimeAuthService) VerifyRealtimeToken(token string) (string, error) {
	claims, err := utils.ValidateRealtimeToken(token, s.issuer, s.secret)
	if err != nil {
		return "", utils.NewUnauthenticatedError("Invalid realtime token")
	}
	return claims.Subject, nil
}
