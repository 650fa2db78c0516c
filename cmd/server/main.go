package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/ozytarget/invozy-backend/internal/config"
	"github.com/ozytarget/invozy-backend/internal/db"
	"github.com/ozytarget/invozy-backend/internal/email"
	"github.com/ozytarget/invozy-backend/internal/handler"
	"github.com/ozytarget/invozy-backend/internal/repository"
	"github.com/ozytarget/invozy-backend/internal/server"
	"github.com/ozytarget/invozy-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Firebase Auth (optional)
	var firebaseAuth *auth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	documentRepo := repository.DocumentRepository{DB: pg}
	paymentRepo := repository.PaymentRepository{DB: pg}
	clientRepo := repository.ClientRepository{DB: pg}
	settingsRepo := repository.SettingsRepository{DB: pg}
	notificationRepo := repository.NotificationRepository{DB: pg}

	// outbound mail (optional)
	var mailer service.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.Sender{Config: email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}}
	}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger, FirebaseAuth: firebaseAuth}
	documentSvc := &service.DocumentService{
		Store:         documentRepo,
		Notifications: notificationRepo,
		Mail:          mailer,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	}
	paymentSvc := &service.PaymentService{
		Store:         paymentRepo,
		Notifications: notificationRepo,
		Logger:        logger,
	}
	clientSvc := &service.ClientService{Clients: clientRepo, Documents: documentRepo}
	draftingSvc := service.NewDraftingService(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	if draftingSvc == nil {
		logger.Warn("OPENAI_API_KEY not set, drafting endpoints disabled")
	}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	documentHandler := handler.DocumentHandler{Service: documentSvc}
	paymentHandler := handler.PaymentHandler{Service: paymentSvc}
	clientHandler := handler.ClientHandler{Service: clientSvc}
	settingsHandler := handler.SettingsHandler{Repo: settingsRepo}
	notificationHandler := handler.NotificationHandler{Store: notificationRepo}
	draftingHandler := handler.DraftingHandler{Service: draftingSvc}
	shareHandler := handler.ShareHandler{Service: documentSvc}
	docsHandler := handler.DocsHandler{OpenAPIPath: "api/openapi.yaml"}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, documentHandler, paymentHandler, clientHandler,
		settingsHandler, notificationHandler, draftingHandler, shareHandler, docsHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
