package handlers

import (
	"unipool/internal/models"
	"unipool/internal/services"
	"unipool/internal/utils"
	"unipool/internal/validators"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// SendMessage posts a message on a booking's chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req validators.MessageCreateRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateMessageCreate(&req)) {
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), &models.Message{
		BookingID:   req.BookingID,
		SenderID:    req.SenderID,
		Content:     validators.SanitizeInput(req.Content),
		MessageType: models.MessageType(req.MessageType),
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Message sent successfully", message)
}

// GetMessages returns a booking's chat, oldest first
func (h *ChatHandler) GetMessages(c *gin.Context) {
	messages, err := h.chatService.GetMessages(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages retrieved successfully", map[string]interface{}{
		"messages": messages,
	}, &utils.Meta{Count: len(messages)})
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	var req validators.MarkReadRequest
	if !decodeJSON(c, &req) {
		return
	}
	if validationFailed(c, validators.ValidateStruct(&req)) {
		return
	}

	marked, err := h.chatService.MarkRead(c.Request.Context(), req.BookingID, req.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Messages marked as read", map[string]interface{}{
		"success": true,
		"marked":  marked,
	})
}
