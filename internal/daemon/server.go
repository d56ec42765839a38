package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/events"
	"github.com/identiq/identiq/internal/models"
	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/usercount"
	"github.com/rs/zerolog"
)

// UserStore is the user data the dashboard API needs.
type UserStore interface {
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) (*models.User, error)
	ThemeDistribution(ctx context.Context) ([]models.ThemeShare, error)
}

// Server serves the dashboard HTTP API.
type Server struct {
	logger    zerolog.Logger
	session   *theme.Session
	sheet     *theme.CSSVars
	users     UserStore
	userCount usercount.Fetcher
	events    events.Repository
	limiter   *RateLimiter
	startedAt time.Time
	hostname  string
	version   string
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the daemon version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithStyleSheet serves /theme.css from sheet, normally the session's style target.
func WithStyleSheet(sheet *theme.CSSVars) ServerOption {
	return func(s *Server) {
		s.sheet = sheet
	}
}

// WithUsers sets the user store.
func WithUsers(users UserStore) ServerOption {
	return func(s *Server) {
		s.users = users
	}
}

// WithUserCount sets the source for GET /api/users/count.
func WithUserCount(f usercount.Fetcher) ServerOption {
	return func(s *Server) {
		s.userCount = f
	}
}

// WithEventRepository records user deletions.
func WithEventRepository(repo events.Repository) ServerOption {
	return func(s *Server) {
		s.events = repo
	}
}

// WithRateLimiter sets the limiter applied to mutating routes.
func WithRateLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) {
		s.limiter = rl
	}
}

// NewServer creates the HTTP API around a started theme session.
func NewServer(logger zerolog.Logger, session *theme.Session, opts ...ServerOption) *Server {
	hostname, _ := os.Hostname()

	s := &Server{
		logger:    logger,
		session:   session,
		startedAt: time.Now(),
		hostname:  hostname,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil {
		s.limiter = NewRateLimiter(WithEnabled(false))
	}
	if s.userCount == nil {
		if s.users != nil {
			s.userCount = usercount.FromCounter(s.users, usercount.WithLogger(logger))
		} else {
			s.userCount = usercount.Static(usercount.DefaultFallback)
		}
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /healthz", s.handleHealth)
	s.handle(mux, "GET /api/ratelimit", s.handleRateLimitStats)

	s.handle(mux, "GET /api/users/count", s.handleUserCount)
	s.handle(mux, "GET /api/users", s.handleListUsers)
	s.handle(mux, RouteDeleteUser, s.handleDeleteUser)
	s.handle(mux, "GET /api/users/theme-distribution", s.handleThemeDistribution)

	s.handle(mux, "GET /api/themes", s.handleListThemes)
	s.handle(mux, "GET /api/theme", s.handleGetTheme)
	s.handle(mux, RouteSelectTheme, s.handleSelectTheme)
	s.handle(mux, RouteRandomizeTheme, s.handleRandomizeTheme)
	s.handle(mux, "GET /theme.css", s.handleStyleSheet)

	// Account management lives in the identity provider.
	for _, route := range []string{
		"POST /api/auth/logout",
		"POST /api/user/change-password",
		"DELETE /api/user/delete",
		"POST /api/user/update",
		"GET /api/user/me",
	} {
		s.handle(mux, route, s.handleNotImplemented)
	}

	return s.logRequests(mux)
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.limiter.Limit(pattern, h))
}

// =============================================================================
// Health
// =============================================================================

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Hostname string `json:"hostname"`
	Uptime   string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  s.version,
		Hostname: s.hostname,
		Uptime:   time.Since(s.startedAt).Truncate(time.Second).String(),
	})
}

type rateLimitResponse struct {
	Enabled bool         `json:"enabled"`
	Routes  []RouteStats `json:"routes"`
	Global  *RouteStats  `json:"global,omitempty"`
}

func (s *Server) handleRateLimitStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rateLimitResponse{
		Enabled: s.limiter.IsEnabled(),
		Routes:  s.limiter.Stats(),
		Global:  s.limiter.GlobalStats(),
	})
}

// =============================================================================
// Users
// =============================================================================

func (s *Server) handleUserCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]int{"count": s.userCount.Fetch(r.Context())})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		writeJSON(w, http.StatusOK, []*models.User{})
		return
	}
	users, err := s.users.List(r.Context())
	if err != nil {
		s.internalError(w, "failed to list users", err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	id := r.PathValue("id")
	user, err := s.users.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.internalError(w, "failed to delete user", err)
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("name", user.Name).Msg("user deleted")
	if s.events != nil {
		if err := events.LogUserDeleted(r.Context(), s.events, user.ID, user.Name); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record user deletion")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleThemeDistribution(w http.ResponseWriter, r *http.Request) {
	shares := []models.ThemeShare{}
	if s.users != nil {
		got, err := s.users.ThemeDistribution(r.Context())
		if err != nil {
			s.internalError(w, "failed to compute theme distribution", err)
			return
		}
		if got != nil {
			shares = got
		}
	}
	writeJSON(w, http.StatusOK, shares)
}

// =============================================================================
// Themes
// =============================================================================

type themeResponse struct {
	ID      string        `json:"id"`
	Color   string        `json:"color"`
	Palette theme.Palette `json:"palette"`
}

func (s *Server) currentTheme() themeResponse {
	res, palette := s.session.Current()
	return themeResponse{ID: res.ID, Color: res.Color, Palette: palette}
}

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Catalog())
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentTheme())
}

type selectThemeRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSelectTheme(w http.ResponseWriter, r *http.Request) {
	var req selectThemeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<12)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, err := s.session.Select(r.Context(), req.ID); err != nil {
		if errors.Is(err, theme.ErrUnknownTheme) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, "failed to select theme", err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentTheme())
}

func (s *Server) handleRandomizeTheme(w http.ResponseWriter, r *http.Request) {
	s.session.Randomize(r.Context())
	writeJSON(w, http.StatusOK, s.currentTheme())
}

func (s *Server) handleStyleSheet(w http.ResponseWriter, r *http.Request) {
	sheet := s.sheet
	if sheet == nil {
		sheet = theme.NewCSSVars()
		current, _ := s.session.Current()
		theme.Apply(sheet, current.Color)
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, sheet.Render(":root"))
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) handleNotImplemented(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "account management is not available")
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, msg)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
