package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// State is the lifecycle of a theme session.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateResolved:
		return "resolved"
	default:
		return "uninitialized"
	}
}

// ChangeKind describes what triggered a resolution.
type ChangeKind string

const (
	ChangeStart     ChangeKind = "start"
	ChangeSelect    ChangeKind = "select"
	ChangeRandomize ChangeKind = "randomize"
)

// Change is passed to change hooks after a new resolution has been applied.
type Change struct {
	Kind     ChangeKind
	Previous Resolution
	Current  Resolution
}

// ChangeHook observes applied resolutions.
type ChangeHook func(ctx context.Context, change Change)

// Session owns the theme lifecycle: it loads the persisted selection once, applies the
// resolved palette and handles selection events for as long as it lives.
type Session struct {
	store    *Store
	resolver *Resolver
	target   StyleTarget
	hooks    []ChangeHook
	logger   zerolog.Logger

	mu          sync.Mutex
	state       State
	current     Resolution
	palette     Palette
	randomColor string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithChangeHook registers a hook called after every applied resolution.
func WithChangeHook(hook ChangeHook) SessionOption {
	return func(s *Session) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession wires a session. target may be nil when nothing needs to be styled.
func NewSession(store *Store, resolver *Resolver, target StyleTarget, opts ...SessionOption) *Session {
	if resolver == nil {
		resolver = NewResolver(store)
	}
	s := &Session{
		store:    store,
		resolver: resolver,
		target:   target,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the persisted selection and applies it. Calling Start on a resolved
// session reloads from storage.
func (s *Session) Start(ctx context.Context) Resolution {
	s.mu.Lock()
	s.state = StateLoading

	sel, found := s.store.Load(ctx)
	id := s.resolver.DefaultID()
	persistedColor := ""
	if found {
		id = sel.ID
		if sel.ID == IDRandom {
			persistedColor = sel.Color
		}
	}

	res := s.resolver.Resolve(ctx, id, persistedColor)
	change := s.applyLocked(ChangeStart, res)
	s.mu.Unlock()

	s.logger.Info().Str("theme", res.ID).Str("color", res.Color).Bool("persisted", found).Msg("theme session started")
	s.notify(ctx, change)
	return res
}

// Select handles an explicit theme selection.
func (s *Session) Select(ctx context.Context, id string) (Resolution, error) {
	if _, ok := Lookup(id); !ok {
		return Resolution{}, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}

	s.mu.Lock()
	persistedColor := ""
	if id == IDRandom {
		persistedColor = s.randomColorLocked(ctx)
	}
	res := s.resolver.Resolve(ctx, id, persistedColor)
	if !res.Generated {
		if err := s.store.Save(ctx, Selection{ID: res.ID, Color: res.Color}); err != nil {
			s.logger.Warn().Err(err).Str("theme", res.ID).Msg("failed to persist theme selection")
		}
	}
	change := s.applyLocked(ChangeSelect, res)
	s.mu.Unlock()

	s.logger.Info().Str("theme", res.ID).Str("color", res.Color).Msg("theme selected")
	s.notify(ctx, change)
	return res, nil
}

// Randomize re-rolls the random theme color and selects it.
func (s *Session) Randomize(ctx context.Context) Resolution {
	s.mu.Lock()
	res := s.resolver.Randomize(ctx)
	change := s.applyLocked(ChangeRandomize, res)
	s.mu.Unlock()

	s.logger.Info().Str("color", res.Color).Msg("theme randomized")
	s.notify(ctx, change)
	return res
}

// Current returns the active resolution and its palette.
func (s *Session) Current() (Resolution, Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.palette
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Catalog returns the theme list with the active theme marked.
func (s *Session) Catalog() []Entry {
	s.mu.Lock()
	selected := s.current.ID
	s.mu.Unlock()
	return Catalog(selected)
}

func (s *Session) applyLocked(kind ChangeKind, res Resolution) Change {
	change := Change{Kind: kind, Previous: s.current, Current: res}

	Apply(s.target, res.Color)
	s.current = res
	s.palette = Derive(res.Color)
	if res.ID == IDRandom {
		s.randomColor = res.Color
	}
	s.state = StateResolved
	return change
}

// randomColorLocked returns the stored random color, or the color this session last
// used when the store holds no random selection.
func (s *Session) randomColorLocked(ctx context.Context) string {
	if sel, found := s.store.Load(ctx); found && sel.ID == IDRandom && sel.Color != "" {
		return sel.Color
	}
	return s.randomColor
}

func (s *Session) notify(ctx context.Context, change Change) {
	for _, hook := range s.hooks {
		hook(ctx, change)
	}
}
