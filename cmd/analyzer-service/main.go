package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/medanalyzer/platform/pkg/common/config"
	"github.com/medanalyzer/platform/pkg/common/database"
	"github.com/medanalyzer/platform/pkg/common/kafka"
	"github.com/medanalyzer/platform/pkg/common/logger"
	"github.com/medanalyzer/platform/pkg/identity"
	"github.com/medanalyzer/platform/pkg/middleware"
	"github.com/medanalyzer/platform/pkg/ner"
	"github.com/medanalyzer/platform/pkg/observability/metrics"
	"github.com/medanalyzer/platform/pkg/patient"
	"github.com/medanalyzer/platform/pkg/redact"
	"github.com/medanalyzer/platform/pkg/report"
	"github.com/medanalyzer/platform/pkg/xray"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	identityRepo := identity.NewRepository(db)
	if err := identityRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate identity tables")
	}
	patientRepo := patient.NewRepository(db)
	if err := patientRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate patient tables")
	}

	jwtManager, err := identity.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid JWT configuration")
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventTopic)
		defer producer.Close()
	}

	rules, err := redact.LoadRules(cfg.RedactionRulesPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load redaction rules")
	}
	redactor, err := redact.NewRedactor(rules)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to compile redaction rules")
	}

	var nerClient ner.Client = ner.NewHTTPClient(cfg.NERServiceURL, cfg.NERTimeout)
	if cfg.EntityCacheTTL > 0 {
		nerClient = ner.NewCachedClient(nerClient, database.GetRedis(), cfg.EntityCacheTTL)
	}

	identityService := identity.NewService(identityRepo)
	identityHandler := identity.NewHandler(identityService, jwtManager)

	patientService := patient.NewService(patientRepo, producer)
	patientHandler := patient.NewHandler(patientService)

	reportService := report.NewService(patientRepo, nerClient, redactor, producer, cfg.NERTimeout)
	reportHandler := report.NewHandler(reportService, redactor, cfg.MaxUploadBytes)

	xrayClient := xray.NewClient(cfg.XRayServiceURL, cfg.XRayTimeout)
	xrayHandler := xray.NewHandler(xrayClient, patientRepo, cfg.MaxUploadBytes)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)

	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.Use(middleware.Logging, middleware.Recovery, middleware.RateLimit(10, 20))
	identityHandler.Register(auth)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.Logging, middleware.Recovery,
		middleware.Authenticate(jwtManager), middleware.RateLimit(50, 100))
	identityHandler.RegisterMe(api)
	patientHandler.Register(api)
	reportHandler.Register(api)

	xrayRoutes := api.PathPrefix("/").Subrouter()
	xrayRoutes.Use(middleware.RequireRole(identity.RoleAdmin, identity.RoleDoctor))
	xrayHandler.Register(xrayRoutes)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Analyzer Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Analyzer Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Analyzer Service stopped")
}
