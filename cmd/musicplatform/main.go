package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/aaa123456yg/music-platform/internal/app/admin"
	"github.com/aaa123456yg/music-platform/internal/app/catalog"
	"github.com/aaa123456yg/music-platform/internal/app/collections"
	"github.com/aaa123456yg/music-platform/internal/app/playlists"
	"github.com/aaa123456yg/music-platform/internal/app/search"
	"github.com/aaa123456yg/music-platform/internal/app/users"
	"github.com/aaa123456yg/music-platform/internal/auth"
	"github.com/aaa123456yg/music-platform/internal/httpapi"
	"github.com/aaa123456yg/music-platform/internal/store"
	"github.com/aaa123456yg/music-platform/internal/uploads"
	"github.com/aaa123456yg/music-platform/shared/go/config"
	"github.com/aaa123456yg/music-platform/shared/go/logging"
	"github.com/aaa123456yg/music-platform/shared/go/middleware"
)

const tokenTTL = 7 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.SetGlobalLogger(logger)

	db, err := openDatabase(context.Background(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	dataStore := store.New(db)

	media, err := uploads.NewSaver(cfg.Media.Dir, cfg.Media.BaseURL)
	if err != nil {
		return err
	}

	userTokens := auth.NewManager(cfg.Security.UserJWTSecret, auth.RealmUser, tokenTTL)
	staffTokens := auth.NewManager(cfg.Security.StaffJWTSecret, auth.RealmStaff, tokenTTL)

	server := httpapi.New(
		users.New(dataStore, userTokens),
		catalog.New(dataStore),
		collections.New(dataStore),
		playlists.New(dataStore),
		search.New(dataStore),
		admin.New(dataStore, staffTokens, media),
	)

	mux := http.NewServeMux()
	mux.Handle("/", server.Routes())
	mux.Handle("GET "+cfg.Media.BaseURL+"/", http.StripPrefix(cfg.Media.BaseURL+"/",
		http.FileServer(http.Dir(cfg.Media.Dir))))

	handler := middleware.RequestLogging()(
		middleware.Recovery()(
			middleware.CORS(cfg.CORS.AllowedOrigins)(mux)))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("listening on %s", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info(fmt.Sprintf("received %s, shutting down", sig))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
