package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/ai"
	"github.com/Dias221467/Campus_Overflow/internal/config"
	"github.com/Dias221467/Campus_Overflow/internal/database"
	"github.com/Dias221467/Campus_Overflow/internal/handlers"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/internal/repository/firestoredb"
	"github.com/Dias221467/Campus_Overflow/internal/repository/memory"
	"github.com/Dias221467/Campus_Overflow/internal/scheduler"
	"github.com/Dias221467/Campus_Overflow/internal/services"
	"github.com/Dias221467/Campus_Overflow/pkg/email"
	"github.com/Dias221467/Campus_Overflow/pkg/firebase"
	jwtutil "github.com/Dias221467/Campus_Overflow/pkg/jwt"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/Dias221467/Campus_Overflow/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Firebase backs both the Firestore store and ID-token auth
	var fb *firebase.App
	if cfg.StoreDriver == config.StoreFirestore || cfg.AuthProvider == config.AuthFirebase {
		app, err := firebase.InitFirebase(ctx, cfg.FirestoreProjectID, cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Log.Fatalf("Firebase init error: %v", err)
		}
		fb = app
	}

	// --- Repositories ---
	store, closeStore := openStore(ctx, cfg, fb)
	defer closeStore()

	// --- Services ---
	userService := services.NewUserService(store.Users)

	var verifier middleware.TokenVerifier = jwtutil.Verifier{Secret: cfg.JWTSecret}
	if cfg.AuthProvider == config.AuthFirebase {
		verifier = &firebase.IDTokenVerifier{Auth: fb.AuthClient, Users: userService}
	}
	hub := handlers.NewNotificationHub(verifier, cfg.CORSOrigins)

	notifOpts := []services.NotificationOption{
		services.WithPublisher(hub),
		services.WithLocale(cfg.NotificationLocale),
	}
	if cfg.SMTPEnabled() {
		notifOpts = append(notifOpts, services.WithMailer(email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword)))
	}
	notificationService := services.NewNotificationService(store.Notifications, store.Users, notifOpts...)
	questionService := services.NewQuestionService(store.Questions, store.Users, notificationService)

	var suggester services.Suggester
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Log.Fatalf("AI client error: %v", err)
		}
		suggester = client
	} else {
		logger.Log.Warn("GEMINI_API_KEY not set, AI suggestions disabled")
	}
	suggestionService := services.NewSuggestionService(suggester, store.Users)

	// --- Jobs ---
	audit, err := scheduler.StartCounterAudit(cfg.ReconcileSchedule, scheduler.NewCounterAudit(store.Questions, cfg.ReconcileFix))
	if err != nil {
		logger.Log.Fatalf("Scheduler error: %v", err)
	}
	defer audit.Stop()

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Routes{
		Users:         handlers.NewUserHandler(userService, cfg),
		Questions:     handlers.NewQuestionHandler(questionService, userService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Suggestions:   handlers.NewSuggestionHandler(suggestionService),
		Hub:           hub,
		Verifier:      verifier,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("Graceful shutdown failed")
		}
	}()

	logger.Log.WithField("port", cfg.Port).WithField("store", cfg.StoreDriver).Info("Server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("Server error: %v", err)
	}
}

// openStore connects the configured backend and returns its repositories and
// a close function.
func openStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (repository.Store, func()) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Log.Warn("Using in-memory store, data is lost on restart")
		return memory.New(memory.WithMaxAttempts(cfg.TxMaxAttempts)).Repositories(), func() {}

	case config.StoreFirestore:
		client, err := fb.Firestore(ctx)
		if err != nil {
			logger.Log.Fatalf("Firestore connection error: %v", err)
		}
		return firestoredb.NewStore(client, cfg.TxMaxAttempts).Repositories(), func() { client.Close() }

	case config.StoreMongo:
		db, err := database.ConnectDB(cfg)
		if err != nil {
			logger.Log.Fatalf("Database connection error: %v", err)
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			logger.Log.Fatalf("Index creation error: %v", err)
		}
		store := repository.Store{
			Users:         repository.NewUserRepository(db),
			Questions:     repository.NewQuestionRepository(db),
			Notifications: repository.NewNotificationRepository(db),
		}
		return store, func() { db.Client().Disconnect(context.Background()) }

	default:
		logger.Log.Fatalf("Unknown STORE_DRIVER %q", cfg.StoreDriver)
		return repository.Store{}, nil
	}
}
