package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"seo-writer/internal/auth"
	"seo-writer/internal/config"
	"seo-writer/internal/events"
	"seo-writer/internal/generator"
	apphttp "seo-writer/internal/http"
	"seo-writer/internal/publisher"
	"seo-writer/internal/repository/sqlstore"
	"seo-writer/internal/service"
	"seo-writer/internal/storage"
)

type app struct {
	cfg     config.Config
	logger  *logrus.Logger
	srv     *http.Server
	closers []func() error
}

func buildApp(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	db, err := sqlstore.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	if err := sqlstore.Migrate(ctx, db); err != nil {
		a.Close()
		return nil, err
	}
	logger.Infof("database ready (%s)", db.Dialect().Name)

	userRepo := sqlstore.NewUserRepository(db)
	settingsRepo := sqlstore.NewSettingsRepository(db)
	articleRepo := sqlstore.NewArticleRepository(db)

	hasher, err := auth.NewHasher(cfg.Auth.PasswordHash, cfg.Auth.BcryptCost)
	if err != nil {
		a.Close()
		return nil, err
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	revocations, err := a.buildRevocations(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	pub, err := a.buildPublisher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	ev, err := a.buildEvents()
	if err != nil {
		a.Close()
		return nil, err
	}

	userService := service.NewUserService(userRepo, hasher)
	settingsService := service.NewSettingsService(settingsRepo)
	articleService := service.NewArticleService(articleRepo, settingsRepo, a.buildGenerator(), pub, ev, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, settingsService, articleService, tokens, revocations, logger)
	handler.RegisterRoutes(router)

	a.srv = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func (a *app) buildRevocations(ctx context.Context) (auth.Revocations, error) {
	if a.cfg.Redis.URL == "" {
		return auth.NoopRevocations{}, nil
	}
	r, err := auth.NewRedisRevocations(ctx, a.cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("setup token revocation: %w", err)
	}
	a.closers = append(a.closers, r.Close)
	a.logger.Info("token revocation backed by redis")
	return r, nil
}

func (a *app) buildPublisher(ctx context.Context) (publisher.Publisher, error) {
	if a.cfg.Storage.Bucket == "" {
		return publisher.StaticPublisher{}, nil
	}
	store, err := storage.NewS3ServiceFromConfig(ctx, storage.S3Config{
		Region:   a.cfg.Storage.Region,
		Profile:  a.cfg.AWS.Profile,
		Endpoint: a.cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}
	a.logger.Infof("publishing articles to s3 bucket %s (region %s)", a.cfg.Storage.Bucket, a.cfg.Storage.Region)
	return publisher.NewS3Publisher(store, a.cfg.Storage.Bucket, a.cfg.Storage.KeyPrefix, a.cfg.Storage.PublicBaseURL), nil
}

func (a *app) buildEvents() (events.Publisher, error) {
	if a.cfg.AMQP.URL == "" {
		return events.NoopPublisher{}, nil
	}
	p, err := events.NewAMQPPublisher(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange)
	if err != nil {
		return nil, fmt.Errorf("setup article events: %w", err)
	}
	a.closers = append(a.closers, p.Close)
	a.logger.Infof("article events published to exchange %s", a.cfg.AMQP.Exchange)
	return p, nil
}

func (a *app) buildGenerator() generator.Generator {
	gen := a.cfg.Generation
	if gen.AnthropicAPIKey == "" {
		a.logger.Warn("no LLM api key configured, article generation will fail")
	}
	if gen.UseResearch {
		a.logger.Info("keyword research enabled")
	}
	return generator.New(generator.Options{
		WriterAPIKey:   gen.AnthropicAPIKey,
		WriterModel:    gen.Model,
		MaxTokens:      gen.MaxTokens,
		WriterURL:      gen.WriterURL,
		UseResearch:    gen.UseResearch,
		ResearchAPIKey: gen.ResearchAPIKey,
		ResearchModel:  gen.ResearchModel,
		ResearchURL:    gen.ResearchURL,
		Timeout:        gen.Timeout,
	}, a.logger)
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func (a *app) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("listening on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warnf("http shutdown: %v", err)
	}

	a.logger.Info("bye")
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warnf("close: %v", err)
		}
	}
	a.closers = nil
}
