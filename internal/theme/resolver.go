package theme

import (
	"context"
	"math/rand/v2"

	"github.com/identiq/identiq/internal/color"
	"github.com/rs/zerolog"
)

// Sampling bands for the random theme: any hue, muted saturation, mid lightness.
const (
	randomSaturationMin  = 40
	randomSaturationSpan = 20
	randomLightnessMin   = 34
	randomLightnessSpan  = 20
)

// Resolution is a concrete base color and the canonical identifier to persist.
type Resolution struct {
	ID    string `json:"id"`
	Color string `json:"color"`

	// Generated is set when a random color was synthesized (and persisted) by this call.
	Generated bool `json:"-"`
}

// Source provides uniform samples in [0,1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Resolver turns a theme identifier into a base color.
type Resolver struct {
	store     *Store
	source    Source
	defaultID string
	logger    zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSource sets the random source used to synthesize colors.
func WithSource(source Source) ResolverOption {
	return func(r *Resolver) {
		if source != nil {
			r.source = source
		}
	}
}

// WithDefaultTheme sets the fallback identifier. Unknown identifiers are ignored.
func WithDefaultTheme(id string) ResolverOption {
	return func(r *Resolver) {
		if _, ok := Lookup(id); ok {
			r.defaultID = id
		}
	}
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver persisting synthesized colors through store.
func NewResolver(store *Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:     store,
		source:    globalSource{},
		defaultID: DefaultID,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultID returns the identifier used for missing or unknown themes.
func (r *Resolver) DefaultID() string {
	return r.defaultID
}

// Resolve maps id to a base color. persistedColor is the last color stored for the
// random theme, if any; it is reused so the random theme is stable across reloads.
func (r *Resolver) Resolve(ctx context.Context, id, persistedColor string) Resolution {
	t, ok := Lookup(id)
	if !ok {
		if id != "" {
			r.logger.Debug().Str("theme", id).Str("fallback", r.defaultID).Msg("unknown theme, using default")
		}
		t, _ = Lookup(r.defaultID)
	}

	if !t.IsRandom() {
		return Resolution{ID: t.ID, Color: t.Color}
	}

	if c, err := color.ParseHex(persistedColor); err == nil {
		return Resolution{ID: IDRandom, Color: c.Hex()}
	}
	return r.Randomize(ctx)
}

// Randomize synthesizes a new random color and persists it immediately.
func (r *Resolver) Randomize(ctx context.Context) Resolution {
	res := Resolution{
		ID:        IDRandom,
		Color:     r.sample().Hex(),
		Generated: true,
	}

	if err := r.store.Save(ctx, Selection{ID: res.ID, Color: res.Color}); err != nil {
		r.logger.Warn().Err(err).Msg("failed to persist random theme color")
	}

	r.logger.Debug().Str("color", res.Color).Msg("random theme color generated")
	return res
}

func (r *Resolver) sample() color.RGB {
	hue := r.source.Float64() * 360
	saturation := randomSaturationMin + r.source.Float64()*randomSaturationSpan
	lightness := randomLightnessMin + r.source.Float64()*randomLightnessSpan
	return color.FromHSL(hue, saturation, lightness)
}
