// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"atriumcrm-service/internal/config"
	"atriumcrm-service/internal/db"
	clientHandler "atriumcrm-service/internal/handlers/client"
	dedupeHandler "atriumcrm-service/internal/handlers/dedupe"
	"atriumcrm-service/internal/middleware"
	"atriumcrm-service/internal/pkg/ratelimit"
	"atriumcrm-service/internal/pkg/token"
	"atriumcrm-service/internal/repository/postgres"
	clientsvc "atriumcrm-service/internal/service/client"
	"atriumcrm-service/internal/service/dedupe"
	"atriumcrm-service/internal/ws"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start(ctx context.Context) error {
	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(s.cfg.DatabaseURL, s.cfg.MigrationsDir); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("[POSTGRES] database ready")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	log.Println("[REDIS] connected successfully")

	// ----- Token Manager & Rate Limiter -----
	if s.cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	tokenManager := token.NewManager(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTTTL)
	limiter := ratelimit.NewLimiter(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	clientRepo := postgres.NewClientRepository(pool)
	phoneRepo := postgres.NewContactNumberRepository(pool)
	caseRepo := postgres.NewCaseRepository(pool)
	noteRepo := postgres.NewNoteRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	leadRepo := postgres.NewLeadReferenceRepository(pool)

	entityStore := postgres.NewEntityStore(dbWrapper, clientRepo, phoneRepo, caseRepo, noteRepo, docRepo, leadRepo)

	// ----- WebSocket Hub -----
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	clientService := clientsvc.NewClientService(dbWrapper, clientRepo, phoneRepo, caseRepo, noteRepo, docRepo, leadRepo, hub, logger)
	detector := dedupe.NewDetector(entityStore, logger)
	merger := dedupe.NewMerger(entityStore, hub, logger)

	// ----- Handlers -----
	clientHandlerInst := clientHandler.NewClientHandler(clientService)
	dedupeHandlerInst := dedupeHandler.NewDedupeHandler(detector, merger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(tokenManager)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.CORSOrigins),
	)

	// ----- Router -----
	handlers := &Handlers{
		ClientHandler:  clientHandlerInst,
		DedupeHandler:  dedupeHandlerInst,
		Hub:            hub,
		AuthMiddleware: authMiddleware,
		MergeLimiter: middleware.RateLimit(
			limiter,
			"merge",
			s.cfg.MergeRateLimit,
			s.cfg.MergeRateWindow,
			logger,
		),
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
