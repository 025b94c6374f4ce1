package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragbase/internal/app"
	"ragbase/internal/apperr"
	"ragbase/internal/transport/http/response"
)

// ChatHandler serves the public widget surface. Requests are scoped by the
// assistant's opaque public id, not by a tenant session.
type ChatHandler struct {
	chatService *app.ChatService
}

type ChatRequest struct {
	ConversationID string `json:"conversation_id" binding:"max=36"`
	VisitorID      string `json:"visitor_id" binding:"max=64"`
	Query          string `json:"query" binding:"required,max=4096"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	assistantPublicID := c.Param("publicID")
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.Chat(c.Request.Context(), app.ChatInput{
		AssistantPublicID:    assistantPublicID,
		ConversationPublicID: req.ConversationID,
		VisitorID:            req.VisitorID,
		Query:                req.Query,
	})
	if err != nil {
		h.writeError(c, err, "chat failed")
		return
	}

	response.OK(c, gin.H{
		"conversation_id": result.ConversationPublicID,
		"answer":          result.Answer,
		"sources":         result.Sources,
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	messages, err := h.chatService.History(c.Param("publicID"), c.Query("conversation_id"), 0)
	if err != nil {
		h.writeError(c, err, "fetch history failed")
		return
	}

	views := make([]gin.H, 0, len(messages))
	for _, msg := range messages {
		views = append(views, gin.H{
			"role":       msg.Role,
			"content":    msg.Content,
			"sources":    msg.SourceList(),
			"created_at": msg.CreatedAt,
		})
	}
	response.OK(c, views)
}

// writeError maps domain errors to status codes. Provider and internal
// failures never leak their raw message to the public surface.
func (h *ChatHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case apperr.IsNotFound(err):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case apperr.IsConfiguration(err):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeInvalidConfig, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
