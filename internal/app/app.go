package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"
	"tryon/internal/config"
	"tryon/internal/handler"
	"tryon/internal/logger"
	"tryon/internal/model"
	"tryon/internal/repository/memory"
	"tryon/internal/repository/sqlite"
	"tryon/internal/route"
	"tryon/internal/service"
	"tryon/internal/service/ai"
	"tryon/internal/service/camera"
	"tryon/internal/service/storage"
	"tryon/internal/service/stream"
	"tryon/internal/service/tryon"
	"tryon/internal/service/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	sessions *tryon.SessionStore
	hub      *websocket.HubService
	detector *ai.DetectorService
	manager  *service.Manager
	server   *http.Server
}

// NewApp loads configuration and wires every service. Failing to open the
// log directory or the database is fatal to the caller.
func NewApp() (*App, error) {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, err
	}

	captures := storage.NewCaptureService(cfg, log, sqlite.NewCaptureRepository(db))
	log.Info("Storing captures in %s", captures.Dir())
	if cfg.AdminPassword == "" {
		log.Warning("ADMIN_PASSWORD not set, log and gallery wipe endpoints are locked")
	}

	opts := &tryon.Options{
		StreamURL:         cfg.StreamURL,
		FallbackProductID: cfg.FallbackProductID,
		DefaultProduct:    memory.DefaultProduct,
		CheckoutURL:       cfg.CheckoutURL,
		CaptureURL:        func(c *model.Capture) string { return storage.ViewURL(c.Filename) },
		Products:          memory.NewProductRepository(memory.DefaultProduct),
		Camera:            cameraController(cfg, log),
		Capturer:          frameCapturer(cfg, log),
		Captures:          captures,
		Logger:            log,
	}
	sessions := tryon.NewSessionStore(opts, cfg.SessionTTL)

	hub := websocket.NewHubService(log)
	monitor := stream.NewMonitor(cfg.StreamURL, cfg.StreamPoll, cfg.StreamPollTimeout, log)
	detector := ai.NewDetectorService(cfg, log)
	manager := service.NewManager(monitor, detector, hub, sessions, log)

	page, err := handler.ParsePageTemplate()
	if err != nil {
		db.Close()
		log.Close()
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	router := route.SetupRoutes(route.Dependencies{
		Config:   cfg,
		Logger:   log,
		Sessions: sessions,
		Syncer:   manager,
		Captures: captures,
		Hub:      hub,
		Monitor:  monitor,
		Page:     page,
	})

	return &App{
		config:   cfg,
		logger:   log,
		db:       db,
		sessions: sessions,
		hub:      hub,
		detector: detector,
		manager:  manager,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func cameraController(cfg *config.Config, log *logger.Logger) camera.CameraController {
	if cfg.CameraSwitchURL == "" {
		log.Info("CAMERA_SWITCH_URL not set, camera flip is a placeholder")
		return camera.PlaceholderController{}
	}
	return camera.NewHTTPController(cfg.CameraSwitchURL, cfg.RemoteTimeout)
}

func frameCapturer(cfg *config.Config, log *logger.Logger) camera.FrameCapturer {
	if cfg.FrameCaptureURL == "" {
		log.Info("FRAME_CAPTURE_URL not set, screenshots are a placeholder")
		return camera.PlaceholderCapturer{}
	}
	return camera.NewHTTPCapturer(cfg.FrameCaptureURL, cfg.RemoteTimeout)
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts everything down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start background services
	var wg sync.WaitGroup
	for _, run := range []func(context.Context){a.hub.Run, a.sessions.Run, a.manager.Run} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Virtual try-on server listening on http://localhost:%d", a.config.Port)
		a.logger.Info("Stream: %s", a.config.StreamURL)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown signal received")
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown failed: %w", err)
	}

	wg.Wait()
	a.detector.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
	a.logger.Info("Server stopped")
	a.logger.Close()
	return runErr
}
