package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "ragbase/internal/app"
	"ragbase/internal/bootstrap"
	"ragbase/internal/repository"
	"ragbase/internal/transport/http/handler"
	"ragbase/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	tenantRepo := repository.NewTenantRepository(app.MySQL)
	assistantRepo := repository.NewAssistantRepository(app.MySQL)
	convRepo := repository.NewConversationRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		tenantRepo,
		app.Sealer,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	assistantService := appsvc.NewAssistantService(assistantRepo, tenantRepo, app.Configs)
	chatService := appsvc.NewChatService(
		assistantRepo,
		tenantRepo,
		convRepo,
		app.Configs,
		app.Store,
		app.ProviderClient,
		app.ProviderClient,
		app.EmbedCache,
		app.Sealer,
		app.Config.Providers,
		app.Config.Chat,
	)

	authHandler := handler.NewAuthHandler(authService)
	assistantHandler := handler.NewAssistantHandler(assistantService)
	documentHandler := handler.NewDocumentHandler(app.Ingestion)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)
	authGroup.GET("/me", authJWT, authHandler.Me)
	authGroup.PUT("/credentials", authJWT, authHandler.UpdateCredentials)

	assistants := v1.Group("/assistants")
	assistants.Use(authJWT)
	assistants.POST("", assistantHandler.Create)
	assistants.GET("", assistantHandler.List)
	assistants.GET("/:id", assistantHandler.Get)
	assistants.PUT("/:id", assistantHandler.Update)
	assistants.DELETE("/:id", assistantHandler.Delete)
	assistants.GET("/:id/config", assistantHandler.GetConfig)
	assistants.PUT("/:id/config", assistantHandler.SaveConfig)
	assistants.POST("/:id/config/validate", assistantHandler.ValidateConfig)
	assistants.POST("/:id/documents", documentHandler.Upload)
	assistants.GET("/:id/documents", documentHandler.List)

	documents := v1.Group("/documents")
	documents.Use(authJWT)
	documents.DELETE("/:docID", documentHandler.Delete)

	tasks := v1.Group("/tasks")
	tasks.Use(authJWT)
	tasks.GET("/:taskID", documentHandler.TaskStatus)

	public := v1.Group("/public/assistants/:publicID")
	public.POST("/chat", chatHandler.Chat)
	public.GET("/history", chatHandler.History)

	return router
}
