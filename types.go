package md2wechat

import (
	"time"

	"github.com/alnah/go-md2wechat/internal/dom"
	"github.com/alnah/go-md2wechat/internal/pipeline"
)

// Host renderer calling conventions. A renderer passed to WithRenderer must
// implement at least one of them; RenderInto is preferred when both exist.
type (
	IntoRenderer = pipeline.IntoRenderer
	HostRenderer = pipeline.HostRenderer
)

// Pluggable collaborators of the render pipeline.
type (
	MathRenderer   = pipeline.MathRenderer
	Serializer     = pipeline.Serializer
	SerializeInput = pipeline.SerializeInput
	EmbedResolver  = pipeline.EmbedResolver
	Scope          = pipeline.Scope
	Subtree        = dom.Subtree
	SettleOptions  = pipeline.SettleOptions
	Logger         = pipeline.Logger
)

// DefaultSettleOptions returns the default settle timing (16ms poll,
// 48ms observation window, 500ms timeout).
func DefaultSettleOptions() SettleOptions {
	return pipeline.DefaultSettleOptions()
}

// Input contains conversion parameters.
type Input struct {
	Markdown   string // Markdown content (required)
	SourcePath string // Path of the markdown file, used to resolve local embeds
	Host       any    // Host binding for this call (overrides WithHost)
	Raw        bool   // Skip the structural cleaner
}

// Result holds the output of a conversion.
type Result struct {
	HTML         string // Cleaned HTML, ready to paste into the editor
	RawHTML      string // Serialized HTML before cleaning
	Title        string // Frontmatter title, else first "# " heading
	Formulas     int    // Formulas pre-rendered for this call
	Observed     bool   // An embed observation window was applied
	Settled      bool   // The DOM settled before the timeout
	FallbackUsed bool   // The legacy converter produced RawHTML
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout            time.Duration
	renderer           any
	rendererSet        bool
	host               any
	math               MathRenderer
	mathSet            bool
	serializer         Serializer
	settle             SettleOptions
	legacyFallback     bool
	logger             Logger
	vaultDir           string
	shortLabelMaxRunes int
	knownTags          []string
}

// defaultTimeout bounds one conversion when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2wechat: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithRenderer sets the host renderer. It must implement IntoRenderer or
// HostRenderer; anything else fails every conversion with ErrConfiguration.
// Default: goldmark-based renderer with vault embed resolution.
func WithRenderer(r any) Option {
	return func(c *Converter) {
		c.cfg.renderer = r
		c.cfg.rendererSet = true
	}
}

// WithHost sets the host binding passed to a HostRenderer.
func WithHost(host any) Option {
	return func(c *Converter) {
		c.cfg.host = host
	}
}

// WithMathRenderer sets the renderer used to pre-render formulas.
// nil disables math pre-rendering. Default: the legacy converter.
func WithMathRenderer(m MathRenderer) Option {
	return func(c *Converter) {
		c.cfg.math = m
		c.cfg.mathSet = true
	}
}

// WithSerializer replaces the default serializer.
func WithSerializer(s Serializer) Option {
	return func(c *Converter) {
		c.cfg.serializer = s
	}
}

// WithSettleTiming sets DOM settle polling. Negative durations make
// NewConverter fail with ErrInvalidTiming.
func WithSettleTiming(opts SettleOptions) Option {
	return func(c *Converter) {
		c.cfg.settle = opts
	}
}

// WithLegacyFallback makes Convert fall back to the legacy converter when
// the host renderer fails. Configuration errors are never masked.
func WithLegacyFallback(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.legacyFallback = enabled
	}
}

// WithLogger sets the diagnostic logger. Default: discard.
func WithLogger(l Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = l
	}
}

// WithVaultDir sets the directory searched for local embeds by the default
// renderer. Empty means the directory of Input.SourcePath.
func WithVaultDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.vaultDir = dir
	}
}

// WithShortLabelMaxRunes sets the short-label bundling threshold of the
// cleaner. Values below 1 disable bundling.
func WithShortLabelMaxRunes(n int) Option {
	return func(c *Converter) {
		c.cfg.shortLabelMaxRunes = n
	}
}

// WithKnownTags replaces the HTML tag allow-list: other <tag> sequences in
// markdown are escaped as literal text.
func WithKnownTags(tags ...string) Option {
	return func(c *Converter) {
		c.cfg.knownTags = tags
	}
}
