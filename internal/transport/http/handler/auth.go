package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ragbase/internal/app"
	"ragbase/internal/model"
	"ragbase/internal/transport/http/middleware"
	"ragbase/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=128"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type CredentialsRequest struct {
	ParseAPIKey  string `json:"parse_api_key" binding:"max=256"`
	OpenAIAPIKey string `json:"openai_api_key" binding:"max=256"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Register(app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "register failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token":  result.Token,
		"tenant": tenantView(result.Tenant),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token":  result.Token,
		"tenant": tenantView(result.Tenant),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	tenant, err := h.authService.GetTenantByID(tenantID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch current tenant failed")
		return
	}
	if tenant == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "tenant not found")
		return
	}

	response.OK(c, tenantView(tenant))
}

// UpdateCredentials stores sealed provider keys. Plaintext keys never appear
// in any response.
func (h *AuthHandler) UpdateCredentials(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	tenant, err := h.authService.UpdateCredentials(tenantID, app.CredentialsInput{
		ParseAPIKey:  req.ParseAPIKey,
		OpenAIAPIKey: req.OpenAIAPIKey,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update credentials failed")
		}
		return
	}

	response.OK(c, tenantView(tenant))
}

// tenantView exposes credential presence flags, never the sealed values.
func tenantView(tenant *model.Tenant) gin.H {
	return gin.H{
		"id":             tenant.ID,
		"name":           tenant.Name,
		"email":          tenant.Email,
		"has_parse_key":  tenant.HasParseKey(),
		"has_openai_key": tenant.HasOpenAIKey(),
	}
}

func getTenantIDFromContext(c *gin.Context) (uint, bool) {
	tenantIDAny, exists := c.Get(middleware.ContextTenantIDKey)
	if !exists {
		return 0, false
	}
	tenantID, ok := tenantIDAny.(uint)
	return tenantID, ok
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	s := c.Param(key)
	u, err := strconv.ParseUint(s, 10, 64)
	return uint(u), err
}
