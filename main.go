package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devmatch/config"
	"devmatch/pkg/logger"
	"devmatch/routes"
	"devmatch/services"
	"devmatch/socket"

	socketio "github.com/googollee/go-socket.io"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		slog.Error("❌ Failed to load config", "err", err)
		os.Exit(1)
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		slog.Error("❌ Failed to create logger", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize DynamoDB client and service
	log.Info("Initializing DynamoDB client...", "region", cfg.AWS.Region)
	awsCfg, err := services.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Error("❌ AWS config", "err", err)
		os.Exit(1)
	}
	dynamoService := &services.DynamoService{
		Client: services.InitializeDynamoDBClient(awsCfg, cfg),
		Log:    *log,
	}
	log.Info("DynamoDB client initialized.")

	// Initialize Services
	s3Service := services.NewS3Service(awsCfg, cfg, *log)
	userProfileService := &services.UserProfileService{
		Dynamo: dynamoService,
		Table:  cfg.Tables.Users,
		Photos: s3Service,
		Log:    *log,
	}
	sessionService := &services.SessionService{
		Dynamo:   dynamoService,
		Profiles: userProfileService,
		Table:    cfg.Tables.Sessions,
		TTL:      cfg.Session.TTL,
		Log:      *log,
	}
	requestService := &services.RequestService{
		Dynamo:   dynamoService,
		Profiles: userProfileService,
		Table:    cfg.Tables.Requests,
		Log:      *log,
	}
	feedService := &services.FeedService{
		Dynamo:    dynamoService,
		Profiles:  userProfileService,
		Requests:  requestService,
		BatchSize: cfg.Feed.BatchSize,
		Log:       *log,
	}
	chatService := &services.ChatService{
		Dynamo:   dynamoService,
		Profiles: userProfileService,
		Requests: requestService,
		Table:    cfg.Tables.Messages,
		Log:      *log,
	}

	// Push channel
	var redis *socketio.RedisAdapterOptions
	if cfg.Redis.Addr != "" {
		redis = &socketio.RedisAdapterOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password}
	}
	socketServer, err := socket.NewSocketServer(sessionService, chatService, *log, redis)
	if err != nil {
		log.Error("❌ Socket.IO server", "err", err)
		os.Exit(1)
	}
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Error("❌ Socket.IO server stopped", "err", err)
		}
	}()
	defer socketServer.Close()

	// Initialize the router
	r := mux.NewRouter()
	r.PathPrefix("/socket.io/").Handler(socketServer)

	// Register routes
	routes.RegisterRoutes(r)
	routes.RegisterUserProfileRoutes(r, sessionService, sessionService, userProfileService, *log)
	routes.RegisterMatchRoutes(r, sessionService, feedService, requestService, *log)
	routes.RegisterChatRoutes(r, sessionService, chatService, *log)
	routes.RegisterS3Routes(r, sessionService, s3Service, *log)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("⚠️ Shutdown", "err", err)
		}
	}()

	// Start the HTTP server
	log.Info("🚀 Starting server", "port", cfg.Server.Port, "env", cfg.Server.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("❌ Server error", "err", err)
		os.Exit(1)
	}
}
