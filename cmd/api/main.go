package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/vitalmed/exam-bookings/internal/chatbot"
	"github.com/vitalmed/exam-bookings/internal/http/handlers"
	"github.com/vitalmed/exam-bookings/internal/notify"
	"github.com/vitalmed/exam-bookings/internal/repo/postgres"
	"github.com/vitalmed/exam-bookings/internal/scheduling"
	"github.com/vitalmed/exam-bookings/internal/session"
	"github.com/vitalmed/exam-bookings/pkg/config"
	"github.com/vitalmed/exam-bookings/pkg/database"
	"github.com/vitalmed/exam-bookings/pkg/events"
	"github.com/vitalmed/exam-bookings/pkg/logger"
	mw "github.com/vitalmed/exam-bookings/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment")
	}
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Error("Failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	// Connect to Redis for conversation sessions
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize components
	apptRepo := postgres.NewAppointmentRepository(pool, cfg.Scheduling)
	scheduler := scheduling.NewService(apptRepo, cfg.Scheduling, eventBus)
	sessions := session.NewStore(redisClient, cfg.Session.TTL)
	bot := chatbot.New(sessions, scheduler)

	// Booking notifications
	var mailer notify.Mailer
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		mailer = notify.NewDevMailer()
	} else {
		mailer = notify.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	notifier := notify.NewNotifier(eventBus, mailer, cfg.Email.NotifyTo)
	if err := notifier.Start(); err != nil {
		logger.Error("Failed to start booking notifier", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(bot)
	apptHandler := handlers.NewAppointmentsHandler(scheduler)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("scheduling"))
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(mw.Health)
	r.Use(mw.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/chat", chatHandler.Routes())
		r.With(mw.IdempotencyMiddleware(session.NewIdempotencyStore(redisClient))).
			Mount("/appointments", apptHandler.Routes())
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down scheduling service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Scheduling service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting scheduling service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Scheduling service error", "error", err)
		os.Exit(1)
	}
}
