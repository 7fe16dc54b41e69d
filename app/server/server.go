// Package server assembles the application from its configuration and runs
// the HTTP listener until the context is cancelled.
package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"postboard/app/cache"
	"postboard/app/config"
	"postboard/app/controllers"
	"postboard/app/repositories"
	"postboard/app/routes"
	"postboard/app/services"
	"postboard/app/storage"
	"postboard/app/views"

	"github.com/gorilla/securecookie"
)

// App is a fully wired postboard instance.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *repositories.Store
	cache   cache.Cache
	handler http.Handler
}

// New opens the configured stores and builds the request handler.
// Close must be called to release the database.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := repositories.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Database.Type, err)
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		store.Close()
		return nil, err
	}

	files, err := storage.NewFileStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Type, err)
	}

	posts := repositories.WithCache(store.Posts, c, logger)
	postService := services.NewPostService(posts, files, logger)

	secret := cfg.Server.SessionSecret
	if secret == "" {
		secret = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("no session_secret configured, flash cookies will not survive a restart")
	}
	renderer, err := views.New(views.Options{
		SessionSecret: secret,
		CookieSecure:  cfg.Server.CookieSecure,
		ImageURL:      postService.ImageURL,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	deps := routes.Deps{
		Posts:  controllers.NewPostController(postService, renderer, logger),
		Views:  renderer,
		Logger: logger,
	}
	if cfg.Storage.Type == "local" {
		deps.StorageRoot = cfg.Storage.Root
		deps.StoragePath = cfg.Storage.PublicURL
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		cache:   c,
		handler: routes.Handler(deps),
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Close releases the database and the cache connection, if any.
func (a *App) Close() error {
	var errs []error
	if closer, ok := a.cache.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", a.cfg.ShutdownTimeout())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
