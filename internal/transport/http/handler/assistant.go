package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragbase/internal/app"
	"ragbase/internal/ragconfig"
	"ragbase/internal/transport/http/response"
)

type AssistantHandler struct {
	assistantService *app.AssistantService
}

type CreateAssistantRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=128"`
	SystemPrompt string `json:"system_prompt" binding:"max=4096"`
}

type UpdateAssistantRequest struct {
	Name         string `json:"name" binding:"max=128"`
	SystemPrompt string `json:"system_prompt" binding:"max=4096"`
}

func NewAssistantHandler(assistantService *app.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

func (h *AssistantHandler) Create(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req CreateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	assistant, err := h.assistantService.Create(app.CreateAssistantInput{
		TenantID:     tenantID,
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create assistant failed")
		}
		return
	}
	response.OK(c, assistant)
}

func (h *AssistantHandler) List(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	assistants, err := h.assistantService.List(tenantID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list assistants failed")
		return
	}
	response.OK(c, assistants)
}

func (h *AssistantHandler) Get(c *gin.Context) {
	tenantID, assistantID, ok := h.scope(c)
	if !ok {
		return
	}
	assistant, err := h.assistantService.Get(tenantID, assistantID)
	if err != nil {
		h.writeError(c, err, "fetch assistant failed")
		return
	}
	response.OK(c, assistant)
}

func (h *AssistantHandler) Update(c *gin.Context) {
	tenantID, assistantID, ok := h.scope(c)
	if !ok {
		return
	}
	var req UpdateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	assistant, err := h.assistantService.Update(app.UpdateAssistantInput{
		TenantID:     tenantID,
		AssistantID:  assistantID,
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		h.writeError(c, err, "update assistant failed")
		return
	}
	response.OK(c, assistant)
}

func (h *AssistantHandler) Delete(c *gin.Context) {
	tenantID, assistantID, ok := h.scope(c)
	if !ok {
		return
	}
	if err := h.assistantService.Delete(tenantID, assistantID); err != nil {
		h.writeError(c, err, "delete assistant failed")
		return
	}
	response.OK(c, gin.H{"deleted": assistantID})
}

func (h *AssistantHandler) GetConfig(c *gin.Context) {
	tenantID, assistantID, ok := h.scope(c)
	if !ok {
		return
	}
	cfg, err := h.assistantService.GetConfig(tenantID, assistantID)
	if err != nil {
		h.writeError(c, err, "fetch configuration failed")
		return
	}
	response.OK(c, cfg)
}

// ValidateConfig dry-runs the validator; nothing is persisted.
func (h *AssistantHandler) ValidateConfig(c *gin.Context) {
	tenantID, assistantID, ok := h.scope(c)
	if !ok {
		return
	}
	var cfg ragconfig.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid configuration payload")
		return
	}
	result, err := h.assistantService.ValidateConfig(tenantID, assistantID, cfg)
	if err != nil {
		h.writeError(c, err, "validate configuration failed")
		return
	}
	response.OK(c, result)
}

// SaveConfig persists the configuration only when it validates cleanly; the
// validation result is returned in both cases.
func (h *AssistantHandler) SaveConfig(c *gin.Context) {
	tenantID, assistantID, ok := h.scope(c)
	if !ok {
		return
	}
	var cfg ragconfig.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid configuration payload")
		return
	}
	result, err := h.assistantService.SaveConfig(tenantID, assistantID, cfg)
	if err != nil {
		h.writeError(c, err, "save configuration failed")
		return
	}
	if !result.IsValid {
		response.ErrorWithData(c, http.StatusUnprocessableEntity, response.CodeInvalidConfig, "configuration rejected", result)
		return
	}
	response.OK(c, result)
}

func (h *AssistantHandler) scope(c *gin.Context) (tenantID, assistantID uint, ok bool) {
	tenantID, ok = getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return 0, 0, false
	}
	assistantID, err := parseUintParam(c, "id")
	if err != nil || assistantID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid assistant id")
		return 0, 0, false
	}
	return tenantID, assistantID, true
}

func (h *AssistantHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrAssistantNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
