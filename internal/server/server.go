package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/savoria-catering/apiserver/config"
	"github.com/savoria-catering/apiserver/internal/db"
	"github.com/savoria-catering/apiserver/internal/handlers"
	"github.com/savoria-catering/apiserver/internal/mq"
	"github.com/savoria-catering/apiserver/internal/services"
	"github.com/savoria-catering/apiserver/internal/storage"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/pkg/logger"
)

// Server wraps the HTTP server, router and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	sweeper    *sessionSweeper
}

// New constructs a Server with all repositories, services and routes wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objectStorage, err := buildStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := buildMQ(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	menuRepo := store.NewMenuRepository(dbConn)
	orderRepo := store.NewOrderRepository(dbConn)
	reservationRepo := store.NewReservationRepository(dbConn)
	galleryRepo := store.NewGalleryRepository(dbConn)
	settingRepo := store.NewSettingRepository(dbConn)
	contactRepo := store.NewContactRepository(dbConn)

	// Assign the interface only when a backend exists, so services see a
	// true nil publisher when events are disabled.
	var publisher services.EventPublisher
	if broker != nil {
		publisher = broker
	}

	authService := services.NewAuthService(userRepo, sessionRepo, jwtSecret,
		services.WithSessionTTL(cfg.Auth.SessionTTL),
		services.WithBcryptCost(cfg.Auth.BcryptCost),
		services.WithAdminEmail(cfg.Auth.AdminEmail),
	)
	menuService := services.NewMenuService(menuRepo)
	orderService := services.NewOrderService(orderRepo, menuRepo, publisher)
	reservationService := services.NewReservationService(reservationRepo, publisher)
	galleryService := services.NewGalleryService(galleryRepo, objectStorage)
	settingService := services.NewSettingService(settingRepo)
	contactService := services.NewContactService(contactRepo, publisher)

	authMiddleware := handlers.RequireAuth(authService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService)
	})
	handlers.MenuRouter(router, menuService, authMiddleware)
	handlers.OrderRouter(router, orderService, authMiddleware)
	handlers.ReservationRouter(router, reservationService, authMiddleware)
	handlers.GalleryRouter(router, galleryService, authMiddleware)
	handlers.SettingRouter(router, settingService, authMiddleware)
	handlers.ContactRouter(router, contactService, authMiddleware)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         broker,
		sweeper:    newSessionSweeper(authService, time.Hour),
	}, nil
}

func buildStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	var backend storage.ObjectStorage

	switch cfg.Storage.Backend {
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, fmt.Errorf("init gcs storage: %w", err)
		}
		backend = client
	case "", "none":
		logger.Get().Warn().Msg("object storage disabled, gallery uploads unavailable")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	objectStorage := storage.NewStorage(backend)
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %q: %w", objectStorage.Bucket(), err)
	}
	return objectStorage, nil
}

func buildMQ(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, fmt.Errorf("init pubsub: %w", err)
		}
		return mq.New(client), nil
	case "", "none":
		logger.Get().Warn().Msg("message queue disabled, domain events will not publish")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the session sweeper and the HTTP server. It blocks until the
// server stops.
func (s *Server) Start() error {
	s.sweeper.Start()
	logger.Get().Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown of the server and its resources.
func (s *Server) Shutdown() error {
	s.sweeper.Stop()
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.mq != nil {
		_ = s.mq.Close()
	}
	return s.httpServer.Close()
}
