package pipeline

import "errors"

// Sentinel errors for the render pipeline.
var (
	// ErrConfiguration is fatal: the host renderer exposes neither calling
	// convention, or a required collaborator is missing.
	ErrConfiguration = errors.New("pipeline configuration error")

	// ErrHostRender wraps a failure returned by the host renderer.
	// The pipeline never retries or falls back on its own.
	ErrHostRender = errors.New("host render failed")

	// ErrFormulaRender marks a formula that failed to render. It is only
	// logged; the formula keeps its original text.
	ErrFormulaRender = errors.New("formula render failed")

	// ErrSerialize indicates the rendered subtree could not be serialized.
	ErrSerialize = errors.New("serialization failed")
)
