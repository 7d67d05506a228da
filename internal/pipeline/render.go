package pipeline

import (
	"context"
	"fmt"

	"github.com/alnah/go-md2wechat/internal/dom"
	"github.com/google/uuid"
)

// IntoRenderer is the host calling convention that renders straight into a target.
type IntoRenderer interface {
	RenderInto(ctx context.Context, markdown string, target *dom.Subtree, sourcePath string, scope *Scope) error
}

// HostRenderer is the host calling convention that needs a host binding.
type HostRenderer interface {
	Render(ctx context.Context, host any, markdown string, target *dom.Subtree, sourcePath string, scope *Scope) error
}

// Scope identifies one render call to the host renderer. Hosts may attach
// per-call resources to it; it is discarded with the call.
type Scope struct {
	ID string
}

func newScope() *Scope {
	return &Scope{ID: uuid.NewString()}
}

// RenderContext carries the collaborators of one render call.
type RenderContext struct {
	Host       any        // host binding, required by HostRenderer
	SourcePath string     // path of the markdown source, "" when unknown
	Renderer   any        // IntoRenderer or HostRenderer
	Serializer Serializer // nil means DefaultSerializer
}

// Output is the result of one orchestrated render.
type Output struct {
	HTML     string
	Formulas int
	Observed bool
	Settle   SettleReport
}

// Orchestrator runs preprocess, host render, settle and serialize for one document.
// It keeps no per-call state and is safe for concurrent use.
type Orchestrator struct {
	Preprocessor *Preprocessor
	Settle       SettleOptions
	Logger       Logger
}

// NewOrchestrator returns an Orchestrator with default settle timing.
func NewOrchestrator(pre *Preprocessor) *Orchestrator {
	return &Orchestrator{
		Preprocessor: pre,
		Settle:       DefaultSettleOptions(),
	}
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger(format, args...)
	}
}

// Render converts markdown to serialized HTML through the host renderer.
//
// Only ErrConfiguration and ErrHostRender (plus context errors) are returned.
// Formula failures are absorbed by the preprocessor and a settle timeout
// proceeds with the DOM as it is.
func (o *Orchestrator) Render(ctx context.Context, rc RenderContext, markdown string) (Output, error) {
	if err := checkRenderer(rc); err != nil {
		return Output{}, err
	}
	if o.Preprocessor == nil {
		return Output{}, fmt.Errorf("%w: no preprocessor", ErrConfiguration)
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	prepared := o.Preprocessor.Preprocess(ctx, markdown)
	target := dom.NewSubtree()

	if err := renderByHost(ctx, rc, prepared.Markdown, target, newScope()); err != nil {
		return Output{}, err
	}

	opts := o.Settle
	observed := ShouldObserveEmbeds(prepared.Markdown)
	if !observed {
		opts.MinObserve = 0
	} else {
		opts.MinObserve = min(opts.MinObserve, opts.withDefaults().Timeout)
	}

	report, err := WaitForSettle(ctx, target, opts)
	if err != nil {
		return Output{}, err
	}
	if !report.Settled {
		o.logf("render timeout: %d embed(s) still unresolved after %v, continuing", report.Unresolved, report.Elapsed)
	}

	serializer := rc.Serializer
	if serializer == nil {
		serializer = DefaultSerializer{}
	}
	out, err := serializer.Serialize(ctx, SerializeInput{
		Root:       target.Snapshot(),
		SourcePath: rc.SourcePath,
		Host:       rc.Host,
		Formulas:   prepared.Formulas,
	})
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	return Output{
		HTML:     out,
		Formulas: prepared.Formulas.Len(),
		Observed: observed,
		Settle:   report,
	}, nil
}

// checkRenderer validates the host calling convention before any work is done.
func checkRenderer(rc RenderContext) error {
	switch rc.Renderer.(type) {
	case IntoRenderer:
		return nil
	case HostRenderer:
		if rc.Host == nil {
			return fmt.Errorf("%w: renderer needs a host binding", ErrConfiguration)
		}
		return nil
	case nil:
		return fmt.Errorf("%w: no host renderer", ErrConfiguration)
	default:
		return fmt.Errorf("%w: %T exposes neither RenderInto nor Render", ErrConfiguration, rc.Renderer)
	}
}

// renderByHost invokes the host renderer, preferring RenderInto.
func renderByHost(ctx context.Context, rc RenderContext, markdown string, target *dom.Subtree, scope *Scope) error {
	if err := checkRenderer(rc); err != nil {
		return err
	}

	var err error
	switch r := rc.Renderer.(type) {
	case IntoRenderer:
		err = r.RenderInto(ctx, markdown, target, rc.SourcePath, scope)
	case HostRenderer:
		err = r.Render(ctx, rc.Host, markdown, target, rc.SourcePath, scope)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHostRender, err)
	}
	return nil
}
