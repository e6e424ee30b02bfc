package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docqa/internal/ai"
	appsvc "docqa/internal/app"
	"docqa/internal/bootstrap"
	"docqa/internal/cache"
	"docqa/internal/extract"
	"docqa/internal/platform/rabbitmq"
	"docqa/internal/rag"
	"docqa/internal/repository"
	"docqa/internal/session"
	"docqa/internal/transport/http/handler"
	"docqa/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config

	userRepo := repository.NewUserRepository(app.MySQL)
	tokenRepo := repository.NewTokenRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	convRepo := repository.NewConversationRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		tokenRepo,
		time.Duration(cfg.Auth.TokenTTLDays)*24*time.Hour,
	)

	llmClient := ai.NewOpenAICompatibleClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})
	generator := appsvc.NewLLMGenerator(llmClient, time.Duration(cfg.RAG.GenerateTimeoutSeconds)*time.Second)
	embedder := appsvc.NewLLMEmbedder(llmClient, time.Duration(cfg.RAG.EmbedTimeoutSeconds)*time.Second)
	engine := rag.NewEngine(generator, cfg.RAG.TopK, cfg.RAG.PreviewCount, cfg.RAG.PreviewChars)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	publisher := rabbitmq.NewConversationPublisher(app.MQConn, cfg.RabbitMQ.ConversationPersistQueue)

	ragService := appsvc.NewRAGService(
		session.NewRegistry(),
		docRepo,
		convRepo,
		publisher,
		historyCache,
		embedder,
		engine,
		extract.NewWebExtractor(time.Duration(cfg.RAG.FetchTimeoutSeconds)*time.Second),
		appsvc.RAGOptions{
			ChunkSize:    cfg.RAG.ChunkSize,
			ChunkOverlap: cfg.RAG.ChunkOverlap,
			FetchTimeout: time.Duration(cfg.RAG.FetchTimeoutSeconds) * time.Second,
		},
	)

	authHandler := handler.NewAuthHandler(authService)
	ragHandler := handler.NewRAGHandler(ragService, int64(cfg.RAG.MaxUploadBytes))

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", middleware.TokenAuth(authService), authHandler.Logout)
	authGroup.GET("/me", middleware.TokenAuth(authService), authHandler.Me)

	docGroup := v1.Group("")
	docGroup.Use(middleware.TokenAuth(authService))
	docGroup.GET("/status", ragHandler.Status)
	docGroup.POST("/upload", ragHandler.Upload)
	docGroup.POST("/ask", ragHandler.Ask)
	docGroup.GET("/history", ragHandler.History)
	docGroup.DELETE("/clear", ragHandler.Clear)

	return router
}
