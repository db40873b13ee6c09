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

	"docflow/internal/auth"
	"docflow/internal/config"
	"docflow/internal/handler"
	"docflow/internal/middleware"
	"docflow/internal/repository/postgres"
	postgresWf "docflow/internal/repository/postgres/workflow"
	serviceWf "docflow/internal/service/workflow"

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

	logOutput := io.Writer(os.Stdout)
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		f, err := config.SetupLogFile(dir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer f.Close()
		logOutput = io.MultiWriter(os.Stdout, f)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier against the identity provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresWf.NewDocumentRepository(repoConfig)
	typeRepo := postgresWf.NewDocumentTypeRepository(repoConfig)
	approverRepo := postgresWf.NewApproverRepository(repoConfig)
	auditRepo := postgresWf.NewAuditRepository(repoConfig)
	fileRepo := postgresWf.NewFileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create the workflow engine services
	recorder := serviceWf.NewAuditRecorder(auditRepo, logger)
	notifier := serviceWf.NewLogNotifier(logger)

	docService := serviceWf.NewDocumentService(docRepo, typeRepo, auditRepo, txManager, recorder, logger)
	typeService := serviceWf.NewDocumentTypeService(typeRepo, logger)
	lifecycleService := serviceWf.NewLifecycleService(docRepo, approverRepo, txManager, recorder, notifier, logger)
	versionService := serviceWf.NewVersionService(docRepo, txManager, recorder, notifier, logger)
	approvalService := serviceWf.NewApprovalService(docRepo, approverRepo, txManager, recorder, logger)
	fileService := serviceWf.NewFileService(docRepo, fileRepo, txManager, recorder, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	typeHandler := handler.NewDocumentTypeHandler(typeService, logger)
	lifecycleHandler := handler.NewLifecycleHandler(lifecycleService, logger)
	versionHandler := handler.NewVersionHandler(versionService, logger)
	approverHandler := handler.NewApproverHandler(approvalService, logger)
	fileHandler := handler.NewFileHandler(fileService, cfg.ScannerToken, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document type routes
	mux.HandleFunc("POST /api/document-types", typeHandler.CreateDocumentType)
	mux.HandleFunc("GET /api/document-types", typeHandler.ListDocumentTypes)
	mux.HandleFunc("PATCH /api/document-types/{id}/active", typeHandler.SetDocumentTypeActive)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("GET /api/documents/{id}/audit", docHandler.GetAuditTrail)

	// Lineage routes
	mux.HandleFunc("GET /api/lineages/{number}", docHandler.ListLineage)

	// Lifecycle routes
	mux.HandleFunc("POST /api/documents/{id}/submit", lifecycleHandler.Submit)
	mux.HandleFunc("POST /api/documents/{id}/withdraw", lifecycleHandler.Withdraw)
	mux.HandleFunc("POST /api/documents/{id}/decision", lifecycleHandler.Decide)
	mux.HandleFunc("POST /api/documents/{id}/override", lifecycleHandler.Override)

	// Version routes
	mux.HandleFunc("POST /api/documents/{id}/versions", versionHandler.NewVersion)
	mux.HandleFunc("POST /api/documents/{id}/promote", versionHandler.Promote)

	// Approver routes
	mux.HandleFunc("POST /api/documents/{id}/approvers", approverHandler.AddApprover)
	mux.HandleFunc("GET /api/documents/{id}/approvers", approverHandler.ListApprovers)
	mux.HandleFunc("DELETE /api/documents/{id}/approvers/{userID}", approverHandler.RemoveApprover)

	// File attachment routes
	mux.HandleFunc("POST /api/documents/{id}/files", fileHandler.AttachFile)
	mux.HandleFunc("GET /api/documents/{id}/files", fileHandler.ListFiles)
	mux.HandleFunc("DELETE /api/documents/{id}/files/{fileID}", fileHandler.DetachFile)

	// Scanner callback (authenticated by shared token, not JWT)
	mux.HandleFunc("POST /api/files/scan-result", fileHandler.ScanResult)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
