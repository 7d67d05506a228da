package main

// Notes:
// - discoverFiles: single files, directories with the default pattern,
//   custom globs, hidden directories and invalid patterns.
// - resolveOutputPath: table over output dir forms.
// - validateWorkers, validateGlob, validateMarkdownExtension: boundaries.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	md2wechat "github.com/alnah/go-md2wechat"
)

// ---------------------------------------------------------------------------
// TestDiscoverFiles - Input discovery
// ---------------------------------------------------------------------------

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "post.md", "# Post")

		files, err := discoverFiles(path, "", "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("got %d files, want 1", len(files))
		}
		if files[0].OutputPath != filepath.Join(dir, "post.html") {
			t.Errorf("OutputPath = %q", files[0].OutputPath)
		}
	})

	t.Run("single file with wrong extension", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "notes.txt", "text")

		_, err := discoverFiles(path, "", "")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(filepath.Join(t.TempDir(), "nope.md"), "", "")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("directory skips hidden and non-markdown", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "b.md", "b")
		writeFile(t, dir, "a.markdown", "a")
		writeFile(t, dir, "sub/c.md", "c")
		writeFile(t, dir, "sub/image.png", "png")
		writeFile(t, dir, ".obsidian/workspace.md", "hidden")
		writeFile(t, dir, ".draft.md", "hidden")

		files, err := discoverFiles(dir, "", "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}

		want := []string{
			filepath.Join(dir, "a.markdown"),
			filepath.Join(dir, "b.md"),
			filepath.Join(dir, "sub", "c.md"),
		}
		if len(files) != len(want) {
			t.Fatalf("got %d files (%v), want %d", len(files), files, len(want))
		}
		for i, f := range files {
			if f.InputPath != want[i] {
				t.Errorf("files[%d] = %q, want %q", i, f.InputPath, want[i])
			}
		}
	})

	t.Run("directory mirrors tree into output dir", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := t.TempDir()
		writeFile(t, dir, "posts/2024/hello.md", "hi")

		files, err := discoverFiles(dir, out, "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		want := filepath.Join(out, "posts", "2024", "hello.html")
		if len(files) != 1 || files[0].OutputPath != want {
			t.Errorf("files = %v, want output %q", files, want)
		}
	})

	t.Run("custom glob", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "posts/one.md", "1")
		writeFile(t, dir, "posts/deep/two.md", "2")
		writeFile(t, dir, "drafts/three.md", "3")

		files, err := discoverFiles(dir, "", "posts/**/*.md")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("got %d files (%v), want 2", len(files), files)
		}
		for _, f := range files {
			if filepath.Base(filepath.Dir(f.InputPath)) == "drafts" {
				t.Errorf("unexpected match %q", f.InputPath)
			}
		}
	})

	t.Run("glob matching no markdown", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "readme.txt", "x")

		files, err := discoverFiles(dir, "", "*.txt")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 0 {
			t.Errorf("got %v, want none", files)
		}
	})

	t.Run("invalid glob", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(t.TempDir(), "", "[unclosed")
		if !errors.Is(err, ErrInvalidGlob) {
			t.Errorf("error = %v, want ErrInvalidGlob", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveOutputPath - Output naming
// ---------------------------------------------------------------------------

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		outputDir string
		baseDir   string
		want      string
	}{
		{"next to source", "/notes/post.md", "", "", "/notes/post.html"},
		{"markdown extension", "/notes/post.markdown", "", "", "/notes/post.html"},
		{"explicit html file", "/notes/post.md", "/out/final.html", "", "/out/final.html"},
		{"output dir", "/notes/post.md", "/out", "", "/out/post.html"},
		{"mirrored tree", "/notes/a/b/post.md", "/out", "/notes", "/out/a/b/post.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveOutputPath(
				filepath.FromSlash(tt.input), filepath.FromSlash(tt.outputDir), filepath.FromSlash(tt.baseDir))
			if err != nil {
				t.Fatalf("resolveOutputPath() error = %v", err)
			}
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Validation helpers
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{1, false},
		{md2wechat.MaxPoolSize, false},
		{md2wechat.MaxPoolSize + 1, true},
	}

	for _, tt := range tests {
		err := validateWorkers(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateWorkers(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", tt.n, err)
		}
	}
}

func TestValidateGlob(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"", "*.md", "**/*.{md,markdown}", "posts/[a-z]*.md"} {
		if err := validateGlob(p); err != nil {
			t.Errorf("validateGlob(%q) = %v, want nil", p, err)
		}
	}
	for _, p := range []string{"[unclosed", "posts/[z-"} {
		if err := validateGlob(p); !errors.Is(err, ErrInvalidGlob) {
			t.Errorf("validateGlob(%q) = %v, want ErrInvalidGlob", p, err)
		}
	}
}

func TestValidateMarkdownExtension(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"a.md", "b.markdown", "C.MD"} {
		if err := validateMarkdownExtension(p); err != nil {
			t.Errorf("validateMarkdownExtension(%q) = %v", p, err)
		}
	}
	for _, p := range []string{"a.txt", "noext", "a.md.bak"} {
		if err := validateMarkdownExtension(p); !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("validateMarkdownExtension(%q) = %v, want ErrInvalidExtension", p, err)
		}
	}
}
