package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lodgera/accesscore/internal/audit"
	auditrepo "github.com/lodgera/accesscore/internal/audit/repository"
	"github.com/lodgera/accesscore/internal/config"
	"github.com/lodgera/accesscore/internal/db"
	"github.com/lodgera/accesscore/internal/httpapi"
	"github.com/lodgera/accesscore/internal/metrics"
	"github.com/lodgera/accesscore/internal/revocation"
	"github.com/lodgera/accesscore/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	metrics.Init()

	ctx := context.Background()
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	privateKey, err := token.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt private key")
	}
	publicKey, err := token.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt public key")
	}

	revoked := revocation.NewMongoStore(database)
	tokens := token.NewService(
		privateKey, publicKey,
		cfg.JWTIssuer, cfg.JWTAudience,
		cfg.AccessTTL(), cfg.RefreshTTL(),
		revoked, log,
	)

	auditRepo := auditrepo.NewMongoRepository(database)
	recorder := audit.NewRecorder(auditRepo, log, httpapi.ClientInfoFromContext)
	detector := audit.NewDetector(auditRepo)

	revocationSweeper := revocation.NewSweeper(revoked, log, cfg.SweepInterval())
	revocationSweeper.Start()
	defer revocationSweeper.Stop()

	retention := audit.NewRetentionSweeper(auditRepo, log, cfg.AuditRetentionWindow(), cfg.AuditRetentionSweepInterval())
	retention.Start()
	defer retention.Stop()

	handler := httpapi.NewRouter(httpapi.RouterConfig{
		Tokens:    tokens,
		AuditRepo: auditRepo,
		Detector:  detector,
		Recorder:  recorder,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("http server stopped")
}
