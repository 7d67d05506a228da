package md2wechat

import (
	"errors"

	"github.com/alnah/go-md2wechat/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrHTMLClean = errors.New("HTML cleaning failed")

	// Render pipeline errors. ErrConfiguration is fatal and never masked by
	// the legacy fallback; ErrHostRender wraps the host renderer's cause.
	ErrConfiguration = pipeline.ErrConfiguration
	ErrHostRender    = pipeline.ErrHostRender
	ErrSerialize     = pipeline.ErrSerialize

	// Settle timing validation errors.
	ErrInvalidTiming = pipeline.ErrInvalidTiming

	// Embed resolution errors. Only logged: an unresolved embed keeps its src.
	ErrEmbedNotFound = pipeline.ErrEmbedNotFound
)
