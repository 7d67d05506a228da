package md2wechat

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-md2wechat/internal/cleaner"
	"github.com/alnah/go-md2wechat/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ IntoRenderer                 = (*pipeline.GoldmarkHost)(nil)
	_ MathRenderer                 = (*pipeline.LegacyConverter)(nil)
	_ pipeline.FrontmatterStripper = (*pipeline.LegacyConverter)(nil)
	_ Serializer                   = pipeline.DefaultSerializer{}
	_ EmbedResolver                = pipeline.VaultResolver{}
)

// Converter turns markdown into HTML for the target rich-text editor.
// Create with NewConverter and call Convert; a Converter holds no per-call
// state and is safe for concurrent use.
type Converter struct {
	cfg          converterConfig
	legacy       *pipeline.LegacyConverter
	orchestrator *pipeline.Orchestrator
	cleaner      *cleaner.Cleaner
}

// NewConverter creates a Converter with default configuration.
// Returns ErrInvalidTiming if WithSettleTiming was given negative durations.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:            defaultTimeout,
			settle:             DefaultSettleOptions(),
			shortLabelMaxRunes: cleaner.DefaultShortLabelMaxRunes,
		},
		legacy: pipeline.NewLegacyConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.settle.Validate(); err != nil {
		return nil, err
	}

	if !c.cfg.rendererSet {
		host := pipeline.NewGoldmarkHost(pipeline.VaultResolver{Root: c.cfg.vaultDir})
		host.Logger = c.cfg.logger
		c.cfg.renderer = host
	}
	if !c.cfg.mathSet {
		c.cfg.math = c.legacy
	}

	pre := pipeline.NewPreprocessor(c.legacy, c.cfg.math)
	pre.Logger = c.cfg.logger
	if c.cfg.knownTags != nil {
		pre.SetKnownTags(c.cfg.knownTags)
	}

	c.orchestrator = pipeline.NewOrchestrator(pre)
	c.orchestrator.Settle = c.cfg.settle
	c.orchestrator.Logger = c.cfg.logger

	c.cleaner = cleaner.New(cleaner.WithShortLabelMaxRunes(c.cfg.shortLabelMaxRunes))
	return c, nil
}

// emptyDocument is the serialized form of a document without content.
const emptyDocument = "<section></section>"

// Convert runs the full pipeline: preprocess, host render, settle,
// serialize and clean.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	// An empty note is a valid document with no content.
	if input.Markdown == "" {
		return &Result{RawHTML: emptyDocument, HTML: emptyDocument, Settled: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	host := input.Host
	if host == nil {
		host = c.cfg.host
	}

	res := &Result{Title: c.legacy.Title(input.Markdown)}

	out, err := c.orchestrator.Render(ctx, pipeline.RenderContext{
		Host:       host,
		SourcePath: input.SourcePath,
		Renderer:   c.cfg.renderer,
		Serializer: c.cfg.serializer,
	}, input.Markdown)
	switch {
	case err == nil:
		res.RawHTML = out.HTML
		res.Formulas = out.Formulas
		res.Observed = out.Observed
		res.Settled = out.Settle.Settled
	case c.cfg.legacyFallback && errors.Is(err, ErrHostRender):
		c.logf("host render failed, using legacy converter: %v", err)
		raw, lerr := c.legacy.Convert(ctx, input.Markdown)
		if lerr != nil {
			return nil, fmt.Errorf("%w (legacy fallback: %v)", err, lerr)
		}
		res.RawHTML = raw
		res.Settled = true
		res.FallbackUsed = true
	default:
		return nil, err
	}

	if input.Raw {
		res.HTML = res.RawHTML
		return res, nil
	}

	cleaned, err := c.cleaner.Clean(res.RawHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLClean, err)
	}
	res.HTML = cleaned
	return res, nil
}

// Clean runs only the structural cleaner over already rendered HTML.
func (c *Converter) Clean(content string) (string, error) {
	cleaned, err := c.cleaner.Clean(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLClean, err)
	}
	return cleaned, nil
}

func (c *Converter) logf(format string, args ...any) {
	if c.cfg.logger != nil {
		c.cfg.logger(format, args...)
	}
}
