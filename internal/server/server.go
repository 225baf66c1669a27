package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
	"github.com/msto63/robogrid/internal/engine"
	coregrpc "github.com/msto63/robogrid/pkg/core/grpc"
	"github.com/msto63/robogrid/pkg/core/health"
	"github.com/msto63/robogrid/pkg/core/logging"
	"github.com/msto63/robogrid/pkg/core/version"
)

// Config holds the server configuration
type Config struct {
	Host            string
	HTTPPort        int
	GRPCPort        int // 0 disables the gRPC health endpoint
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	HealthInterval  time.Duration
	Version         string
}

// DefaultConfig returns the default server configuration
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		HTTPPort:        8420,
		GRPCPort:        9420,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		HealthInterval:  10 * time.Second,
		Version:         version.Server,
	}
}

// Server runs the HTTP API, the live feed and the gRPC health endpoint
type Server struct {
	echo    *echo.Echo
	handler *Handler
	grpc    *coregrpc.Server
	health  *health.Registry
	logger  *logging.Logger
	config  Config

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates the server. opts.Hub should be the hub the engine was built
// with as renderer and reporter, otherwise the live feed stays silent.
func New(cfg Config, opts HandlerOptions) (*Server, error) {
	if opts.Engine == nil {
		return nil, rgerror.New("server needs an engine").WithCode(rgerror.CodeInvalidConfig)
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultConfig().HealthInterval
	}
	if cfg.Version == "" {
		cfg.Version = version.Server
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New("server")
		opts.Logger = logger
	}

	registry := opts.Health
	if registry == nil {
		registry = health.NewRegistry("robogrid", cfg.Version)
		opts.Health = registry
	}
	registry.RegisterFunc("engine", func(ctx context.Context) health.CheckResult {
		snap := opts.Engine.Snapshot()
		return health.CheckResult{
			Name:    "engine",
			Status:  health.StatusHealthy,
			Message: snap.Status.String(),
			Details: map[string]interface{}{"run_id": snap.RunID, "cursor": snap.Cursor},
		}
	})
	if opts.Journal != nil {
		registry.Register(health.PingCheck("journal", opts.Journal.Ping))
	}

	handler := NewHandler(opts)
	registry.RegisterFunc("live_feed", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "live_feed",
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d subscribers", handler.hub.Len()),
		}
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	handler.RegisterRoutes(e)

	s := &Server{
		echo:    e,
		handler: handler,
		health:  registry,
		logger:  logger,
		config:  cfg,
	}

	if cfg.GRPCPort > 0 {
		grpcCfg := coregrpc.DefaultServerConfig()
		grpcCfg.Host = cfg.Host
		grpcCfg.Port = cfg.GRPCPort
		grpcCfg.Logger = logging.New("grpc")
		s.grpc = coregrpc.NewServer(grpcCfg)
	}

	return s, nil
}

func requestLogger(logger *logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("HTTP request",
				"method", v.Method,
				"path", v.URI,
				"status", v.Status,
				"duration", v.Latency,
			)
			return nil
		},
	})
}

// Echo returns the underlying echo instance
func (s *Server) Echo() *echo.Echo { return s.echo }

// Handler returns the API handler
func (s *Server) Handler() *Handler { return s.handler }

// Hub returns the live feed hub
func (s *Server) Hub() *Hub { return s.handler.hub }

// HealthRegistry returns the health registry
func (s *Server) HealthRegistry() *health.Registry { return s.health }

// Start binds both listeners and serves in the background
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.HTTPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return rgerror.Wrapf(err, "listen on %s", addr).WithCode(rgerror.CodeServiceUnavailable)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.listener = listener
	s.cancel = cancel
	s.mu.Unlock()

	if s.grpc != nil {
		if err := s.grpc.StartAsync(); err != nil {
			cancel()
			listener.Close()
			return rgerror.Wrap(err, "start grpc health endpoint").WithCode(rgerror.CodeServiceUnavailable)
		}
		go s.grpc.SyncHealth(ctx, s.health, s.config.HealthInterval)
	}

	s.echo.Listener = listener
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.logger.Info("RoboGrid server listening",
		"http", listener.Addr().String(),
		"grpc", s.GRPCAddress(),
	)
	return nil
}

// Run starts the server and blocks until ctx is done, then shuts down
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop shuts the server down and drops all live feed subscribers
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping RoboGrid server")

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	s.handler.hub.Close()
	s.handler.Close()
	if s.grpc != nil {
		s.grpc.StopWithTimeout(ctx)
	}
	return s.echo.Shutdown(ctx)
}

// Address returns the bound HTTP address, or the configured one before Start
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.HTTPPort)
}

// GRPCAddress returns the gRPC health address, or "" when disabled
func (s *Server) GRPCAddress() string {
	if s.grpc == nil {
		return ""
	}
	return s.grpc.Address()
}

var _ Controller = (*engine.Engine)(nil)
