package main

// Notes:
// - convertBatch: ordering, failure isolation, converter init failures and
//   context cancellation, with mock converters and pools.
// - convertFile: read, convert and write, including raw output.
// - printResultsWithWriter: quiet, verbose and summary lines.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	md2wechat "github.com/alnah/go-md2wechat"
)

// ---------------------------------------------------------------------------
// TestConvertFile - Single file conversion
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	t.Run("writes cleaned html", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "post.md", "# Post")
		out := filepath.Join(dir, "out", "nested", "post.html")
		conv := &staticConverter{result: &md2wechat.Result{
			HTML: "<section>clean</section>", RawHTML: "<section>raw</section>", Title: "Post",
		}}

		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, &conversionParams{})

		if r.Err != nil {
			t.Fatalf("convertFile() error = %v", r.Err)
		}
		if got := readFile(t, out); got != "<section>clean</section>" {
			t.Errorf("output = %q", got)
		}
		if r.Title != "Post" {
			t.Errorf("Title = %q, want Post", r.Title)
		}
		if len(conv.inputs) != 1 {
			t.Fatalf("got %d Convert calls, want 1", len(conv.inputs))
		}
		input := conv.inputs[0]
		if input.Markdown != "# Post" || !filepath.IsAbs(input.SourcePath) || input.Raw {
			t.Errorf("input = %+v", input)
		}
	})

	t.Run("raw writes uncleaned html", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "post.md", "text")
		out := filepath.Join(dir, "post.html")
		conv := &staticConverter{result: &md2wechat.Result{HTML: "clean", RawHTML: "raw"}}

		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, &conversionParams{raw: true})

		if r.Err != nil {
			t.Fatalf("convertFile() error = %v", r.Err)
		}
		if got := readFile(t, out); got != "raw" {
			t.Errorf("output = %q, want raw", got)
		}
		if !conv.inputs[0].Raw {
			t.Error("Input.Raw should be set")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		f := FileToConvert{InputPath: filepath.Join(dir, "nope.md"), OutputPath: filepath.Join(dir, "nope.html")}

		r := convertFile(context.Background(), &staticConverter{}, f, &conversionParams{})

		if !errors.Is(r.Err, ErrReadMarkdown) {
			t.Errorf("error = %v, want ErrReadMarkdown", r.Err)
		}
	})

	t.Run("converter error keeps output untouched", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "post.md", "text")
		out := filepath.Join(dir, "post.html")
		conv := &staticConverter{err: md2wechat.ErrHostRender}

		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, &conversionParams{})

		if !errors.Is(r.Err, md2wechat.ErrHostRender) {
			t.Errorf("error = %v, want ErrHostRender", r.Err)
		}
		if fileExists(out) {
			t.Error("output should not be written on error")
		}
	})

	t.Run("duration uses injected clock", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "post.md", "text")
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		calls := 0
		now := func() time.Time {
			calls++
			return base.Add(time.Duration(calls) * 250 * time.Millisecond)
		}
		conv := &staticConverter{result: &md2wechat.Result{HTML: "x"}}

		r := convertFile(context.Background(), conv,
			FileToConvert{InputPath: in, OutputPath: filepath.Join(dir, "post.html")}, &conversionParams{now: now})

		if r.Duration != 250*time.Millisecond {
			t.Errorf("Duration = %v, want 250ms", r.Duration)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Concurrent batch conversion
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		if got := convertBatch(context.Background(), &mockPool{size: 2}, nil, &conversionParams{}); got != nil {
			t.Errorf("convertBatch() = %v, want nil", got)
		}
	})

	t.Run("keeps file order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		var files []FileToConvert
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			in := writeFile(t, dir, name+".md", name)
			files = append(files, FileToConvert{InputPath: in, OutputPath: filepath.Join(dir, name+".html")})
		}
		pool := &mockPool{conv: &staticConverter{result: &md2wechat.Result{HTML: "ok"}}, size: 3}

		results := convertBatch(context.Background(), pool, files, &conversionParams{})

		if len(results) != len(files) {
			t.Fatalf("got %d results, want %d", len(results), len(files))
		}
		for i, r := range results {
			if r.Err != nil {
				t.Errorf("results[%d] error = %v", i, r.Err)
			}
			if r.InputPath != files[i].InputPath {
				t.Errorf("results[%d] = %q, want %q", i, r.InputPath, files[i].InputPath)
			}
		}
		if pool.released != 3 {
			t.Errorf("released = %d, want 3 (one per worker)", pool.released)
		}
	})

	t.Run("converter init failure", func(t *testing.T) {
		t.Parallel()

		files := []FileToConvert{{InputPath: "a.md"}, {InputPath: "b.md"}}
		pool := &mockPool{size: 2, initErr: md2wechat.ErrInvalidTiming}

		results := convertBatch(context.Background(), pool, files, &conversionParams{})

		for i, r := range results {
			if !errors.Is(r.Err, ErrConverterInit) || !errors.Is(r.Err, md2wechat.ErrInvalidTiming) {
				t.Errorf("results[%d] error = %v, want ErrConverterInit wrapping ErrInvalidTiming", i, r.Err)
			}
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		files := []FileToConvert{{InputPath: "a.md"}, {InputPath: "b.md"}}
		conv := &staticConverter{result: &md2wechat.Result{}}
		results := convertBatch(ctx, &mockPool{conv: conv, size: 1}, files, &conversionParams{})

		for i, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("results[%d] error = %v, want context.Canceled", i, r.Err)
			}
		}
		if len(conv.inputs) != 0 {
			t.Errorf("Convert called %d times, want 0", len(conv.inputs))
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintResultsWithWriter - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResultsWithWriter(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.html", Title: "Alpha", Duration: 12 * time.Millisecond},
		{InputPath: "b.md", OutputPath: "b.html", FallbackUsed: true},
		{InputPath: "c.md", Err: ErrReadMarkdown},
	}

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := testEnv(nil)
		failed, firstErr := printResultsWithWriter(results, false, false, env)

		if failed != 1 || !errors.Is(firstErr, ErrReadMarkdown) {
			t.Errorf("failed = %d, firstErr = %v", failed, firstErr)
		}
		out := stdout.String()
		for _, want := range []string{"Created a.html", "Created b.html", "2 succeeded, 1 failed", "1 file(s) used the legacy converter"} {
			if !strings.Contains(out, want) {
				t.Errorf("stdout missing %q:\n%s", want, out)
			}
		}
		if !strings.Contains(stderr.String(), "FAILED c.md") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil)
		printResultsWithWriter(results, false, true, env)

		out := stdout.String()
		if !strings.Contains(out, `a.md -> a.html (12ms) "Alpha"`) {
			t.Errorf("verbose line missing:\n%s", out)
		}
		if !strings.Contains(out, "b.md -> b.html (0s) [legacy]") {
			t.Errorf("legacy marker missing:\n%s", out)
		}
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := testEnv(nil)
		printResultsWithWriter(results, true, false, env)

		if stdout.Len() != 0 {
			t.Errorf("quiet stdout = %q, want empty", stdout.String())
		}
		if !strings.Contains(stderr.String(), "FAILED c.md") {
			t.Error("failures must be reported in quiet mode")
		}
	})
}

func TestCountResults(t *testing.T) {
	t.Parallel()

	got := countResults([]ConversionResult{
		{}, {FallbackUsed: true}, {Err: errors.New("x")}, {Err: errors.New("y"), FallbackUsed: true},
	})
	want := ResultSummary{Succeeded: 2, Failed: 2, Fallback: 1}
	if got != want {
		t.Errorf("countResults() = %+v, want %+v", got, want)
	}
}

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
