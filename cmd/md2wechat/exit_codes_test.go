package main

// Notes:
// - exitCodeFor: we test sentinel errors from md2wechat, config and this
//   package, plus wrapped errors to verify the errors.Is chain.
// - hintFor: one case per hint, and no hint for unrelated errors.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	md2wechat "github.com/alnah/go-md2wechat"
	"github.com/alnah/go-md2wechat/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Render errors (exit 4)
		{"host render", md2wechat.ErrHostRender, ExitRender},
		{"configuration", md2wechat.ErrConfiguration, ExitRender},
		{"serialize", md2wechat.ErrSerialize, ExitRender},
		{"html clean", md2wechat.ErrHTMLClean, ExitRender},
		{"converter init", fmt.Errorf("%w: %w", ErrConverterInit, md2wechat.ErrInvalidTiming), ExitRender},
		{"wrapped host render", fmt.Errorf("2 conversion(s) failed: %w", md2wechat.ErrHostRender), ExitRender},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read markdown", ErrReadMarkdown, ExitIO},
		{"write html", ErrWriteHTML, ExitIO},
		{"create output dir", ErrCreateOutputDir, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"no markdown files", ErrNoMarkdownFiles, ExitIO},
		{"vault not found", ErrVaultNotFound, ExitIO},
		{"wrapped file not exist", fmt.Errorf("discovering files: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"field range", config.ErrFieldRange, ExitUsage},
		{"invalid timing", md2wechat.ErrInvalidTiming, ExitUsage},
		{"invalid timeout", ErrInvalidTimeout, ExitUsage},
		{"invalid workers", ErrInvalidWorkerCount, ExitUsage},
		{"invalid glob", ErrInvalidGlob, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"wrapped config", fmt.Errorf("loading config: %w", config.ErrConfigNotFound), ExitUsage},

		// General (exit 1)
		{"unknown error", errors.New("boom"), ExitGeneral},
		{"deadline", context.DeadlineExceeded, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitRender}
	seen := make(map[int]bool)
	for _, c := range codes {
		if c < 0 || c >= 126 {
			t.Errorf("exit code %d outside 0-125", c)
		}
		if seen[c] {
			t.Errorf("duplicate exit code %d", c)
		}
		seen[c] = true
	}
	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes 0, 1 and 2 must follow Unix conventions")
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Actionable hints
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	flags := &convertFlags{glob: "posts/*.md"}
	flags.common.config = "/etc/md2wechat.yaml"

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", fmt.Errorf("converting: %w", context.DeadlineExceeded), "--timeout"},
		{"config not found", config.ErrConfigNotFound, "--config /path/to/file.yaml"},
		{"host render", md2wechat.ErrHostRender, "--legacy-fallback"},
		{"no markdown", ErrNoMarkdownFiles, "--glob posts/*.md"},
		{"vault", ErrVaultNotFound, "--vault"},
		{"output dir", ErrCreateOutputDir, "writable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err, flags)
			if !strings.HasPrefix(got, "\n  hint: ") {
				t.Fatalf("hintFor() = %q, want hint prefix", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to contain %q", got, tt.want)
			}
		})
	}

	t.Run("no hint", func(t *testing.T) {
		t.Parallel()

		if got := hintFor(errors.New("boom"), flags); got != "" {
			t.Errorf("hintFor() = %q, want empty", got)
		}
	})
}
