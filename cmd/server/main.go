package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"atelier/internal/auth"
	"atelier/internal/billing"
	"atelier/internal/config"
	"atelier/internal/drafting"
	"atelier/internal/handler"
	"atelier/internal/mailer"
	"atelier/internal/middleware"
	"atelier/internal/repository/postgres"
	"atelier/internal/repository/postgres/migrations"
	"atelier/internal/service/assets"
	"atelier/internal/service/invoices"
	"atelier/internal/service/proposals"
	"atelier/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.Debug {
		if logFile, err := config.SetupLogFile("logs", 10); err != nil {
			log.Printf("file logging disabled: %v", err)
		} else {
			defer logFile.Close()
			logOut = io.MultiWriter(os.Stdout, logFile)
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier against the identity provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()

	// Apply schema migrations before opening the pool
	if err := migrations.Run(ctx, cfg.DatabaseURL, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	assetRepo := postgres.NewAssetRepository(repoConfig)
	invoiceRepo := postgres.NewInvoiceRepository(repoConfig)
	proposalRepo := postgres.NewProposalRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Blob storage
	blobStore, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	// Tax rates and invoice numbering
	rates, err := billing.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load billing registry: %v", err)
	}

	// Drafting provider is optional; without an API key every draft
	// uses the deterministic fallback body
	var draftProvider drafting.Provider
	if cfg.AnthropicAPIKey != "" {
		draftProvider, err = drafting.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.DraftModel)
		if err != nil {
			log.Fatalf("Failed to create drafting provider: %v", err)
		}
		logger.Info("drafting provider initialized", "model", cfg.DraftModel)
	} else {
		logger.Warn("no drafting API key configured, proposal drafts will use the fallback body")
	}
	draftingService := drafting.NewService(draftProvider, logger)

	// Transactional mail
	mailClient := mailer.NewClient(cfg.MailAPIURL, cfg.MailAPIKey)

	// Create services
	assetService := assets.NewService(assetRepo, txManager, blobStore, logger)
	invoiceService := invoices.NewService(invoiceRepo, txManager, rates, mailClient, cfg.MailFrom, logger)
	proposalService := proposals.NewService(proposalRepo, draftingService, logger)

	// Create handlers
	sessionHandler := handler.NewSessionHandler(logger)
	assetHandler := handler.NewAssetHandler(assetService, logger)
	uploadHandler := handler.NewUploadHandler(assetService, logger)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, logger)
	proposalHandler := handler.NewProposalHandler(proposalService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", sessionHandler.HealthCheck)

	// Session check
	mux.HandleFunc("GET /api/session", sessionHandler.GetSession)

	// Asset routes
	mux.HandleFunc("GET /api/assets", assetHandler.ListAssets)
	mux.HandleFunc("GET /api/assets/tree", assetHandler.GetTree)
	mux.HandleFunc("POST /api/assets/folders", assetHandler.CreateFolder)
	mux.HandleFunc("POST /api/assets/files", uploadHandler.UploadFile)
	mux.HandleFunc("POST /api/assets/batch", uploadHandler.UploadBatch)
	mux.HandleFunc("POST /api/assets/batch/preview", uploadHandler.PreviewBatch)
	mux.HandleFunc("GET /api/assets/{id}", assetHandler.GetAsset)
	mux.HandleFunc("GET /api/assets/{id}/download", assetHandler.Download)
	mux.HandleFunc("PATCH /api/assets/{id}", assetHandler.Rename)
	mux.HandleFunc("DELETE /api/assets/{id}", assetHandler.Delete)

	// Invoice routes
	mux.HandleFunc("GET /api/invoices", invoiceHandler.ListInvoices)
	mux.HandleFunc("POST /api/invoices", invoiceHandler.CreateInvoice)
	mux.HandleFunc("GET /api/invoices/{id}", invoiceHandler.GetInvoice)
	mux.HandleFunc("PATCH /api/invoices/{id}", invoiceHandler.UpdateInvoice)
	mux.HandleFunc("DELETE /api/invoices/{id}", invoiceHandler.DeleteInvoice)
	mux.HandleFunc("POST /api/invoices/{id}/send", invoiceHandler.SendInvoice)

	// Proposal routes
	mux.HandleFunc("GET /api/proposals", proposalHandler.ListProposals)
	mux.HandleFunc("POST /api/proposals", proposalHandler.CreateProposal)
	mux.HandleFunc("GET /api/proposals/{id}", proposalHandler.GetProposal)
	mux.HandleFunc("PATCH /api/proposals/{id}", proposalHandler.UpdateProposal)
	mux.HandleFunc("DELETE /api/proposals/{id}", proposalHandler.DeleteProposal)
	mux.HandleFunc("POST /api/proposals/{id}/draft", proposalHandler.DraftProposal)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // large uploads need headroom
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server starting", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
