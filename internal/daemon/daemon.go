// Package daemon serves the dashboard API over HTTP, with an optional gRPC
// health endpoint.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/identiq/identiq/internal/config"
	"github.com/identiq/identiq/internal/events"
	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/usercount"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Options configure the daemon runtime.
type Options struct {
	Hostname string
	Port     int
	GRPCPort int
	Version  string

	// Session must already be started.
	Session    *theme.Session
	StyleSheet *theme.CSSVars
	Users      UserStore
	UserCount  usercount.Fetcher
	Events     events.Repository
}

// Daemon is the long-running dashboard server.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger
	opts   Options

	server     *Server
	limiter    *RateLimiter
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server

	mu       sync.Mutex
	httpAddr net.Addr
	grpcAddr net.Addr
	ready    chan struct{}
}

// New constructs a daemon with the provided configuration.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if opts.Session == nil {
		return nil, errors.New("theme session is required")
	}
	if opts.Hostname == "" {
		opts.Hostname = cfg.Server.Host
	}
	if opts.Hostname == "" {
		opts.Hostname = "127.0.0.1"
	}
	// Port 0 after applying the config binds an ephemeral port.
	if opts.Port == 0 {
		opts.Port = cfg.Server.Port
	}
	if opts.GRPCPort == 0 {
		opts.GRPCPort = cfg.Server.GRPCPort
	}

	limiter := newLimiterFromConfig(cfg.Server.RateLimit)

	serverOpts := []ServerOption{
		WithVersion(opts.Version),
		WithRateLimiter(limiter),
		WithStyleSheet(opts.StyleSheet),
		WithEventRepository(opts.Events),
	}
	if opts.Users != nil {
		serverOpts = append(serverOpts, WithUsers(opts.Users))
	}
	if opts.UserCount != nil {
		serverOpts = append(serverOpts, WithUserCount(opts.UserCount))
	}
	server := NewServer(logger, opts.Session, serverOpts...)

	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		opts:    opts,
		server:  server,
		limiter: limiter,
		httpServer: &http.Server{
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		ready: make(chan struct{}),
	}

	if opts.GRPCPort > 0 {
		d.health = health.NewServer()
		d.grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(limiter.UnaryServerInterceptor()),
			grpc.StreamInterceptor(limiter.StreamServerInterceptor()),
		)
		healthpb.RegisterHealthServer(d.grpcServer, d.health)
	}

	return d, nil
}

func newLimiterFromConfig(cfg config.RateLimitConfig) *RateLimiter {
	opts := []RateLimiterOption{WithEnabled(cfg.Enabled)}
	if cfg.RequestsPerSecond > 0 && cfg.BurstSize > 0 {
		limits := make(map[string]RateLimitConfig, len(MutatingRoutes))
		for _, route := range MutatingRoutes {
			limits[route] = RateLimitConfig{RequestsPerSecond: cfg.RequestsPerSecond, BurstSize: cfg.BurstSize}
		}
		opts = append(opts, WithRouteLimits(limits))
	}
	if cfg.GlobalRequestsPerSecond > 0 && cfg.GlobalBurstSize > 0 {
		opts = append(opts, WithGlobalLimit(RateLimitConfig{
			RequestsPerSecond: cfg.GlobalRequestsPerSecond,
			BurstSize:         cfg.GlobalBurstSize,
		}))
	}
	return NewRateLimiter(opts...)
}

// Run starts the servers and blocks until the context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	bindAddr := d.bindAddr(d.opts.Port)
	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bindAddr, err)
	}

	var grpcListener net.Listener
	if d.grpcServer != nil {
		grpcBind := d.bindAddr(d.opts.GRPCPort)
		grpcListener, err = net.Listen("tcp", grpcBind)
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to listen on %s: %w", grpcBind, err)
		}
	}

	d.mu.Lock()
	d.httpAddr = listener.Addr()
	if grpcListener != nil {
		d.grpcAddr = grpcListener.Addr()
	}
	d.mu.Unlock()

	d.logger.Info().
		Str("bind", listener.Addr().String()).
		Str("version", d.opts.Version).
		Msg("identiq server starting")

	errCh := make(chan error, 2)
	go func() {
		if err := d.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if grpcListener != nil {
		d.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		d.logger.Info().Str("bind", grpcListener.Addr().String()).Msg("gRPC health service starting")
		go func() {
			if err := d.grpcServer.Serve(grpcListener); err != nil {
				errCh <- fmt.Errorf("gRPC server error: %w", err)
			}
		}()
	}
	close(d.ready)

	var runErr error
	select {
	case <-ctx.Done():
		d.logger.Info().Msg("identiq server shutting down...")
	case runErr = <-errCh:
	}

	d.shutdown()

	if runErr != nil {
		return runErr
	}
	d.logger.Info().Msg("identiq server shutdown complete")
	return nil
}

func (d *Daemon) shutdown() {
	timeout := d.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn().Err(err).Msg("http shutdown incomplete")
	}
	if d.grpcServer != nil {
		d.health.Shutdown()
		d.grpcServer.GracefulStop()
	}
}

func (d *Daemon) bindAddr(port int) string {
	return net.JoinHostPort(d.opts.Hostname, strconv.Itoa(port))
}

// Ready is closed once the listeners are bound.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Addr returns the bound HTTP address, or nil before Run.
func (d *Daemon) Addr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.httpAddr
}

// GRPCAddr returns the bound gRPC address, or nil when disabled.
func (d *Daemon) GRPCAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grpcAddr
}

// Server returns the HTTP API. Useful for testing.
func (d *Daemon) Server() *Server {
	return d.server
}

// RateLimiter returns the limiter shared by HTTP and gRPC.
func (d *Daemon) RateLimiter() *RateLimiter {
	return d.limiter
}
