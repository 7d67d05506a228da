package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrEmbedNotFound indicates an embed target does not exist under the vault.
var ErrEmbedNotFound = errors.New("embed target not found")

// EmbedResolver turns an embed source into an image URL.
type EmbedResolver interface {
	Resolve(ctx context.Context, src, sourcePath string) (string, error)
}

// VaultResolver resolves local embeds against a vault directory.
//
// Lookup order:
//   - relative to the markdown source directory
//   - relative to the vault root
//   - anywhere in the vault by base name (**/name), first match in lexical order
//
// Every candidate must stay under the vault root. The result is a file:// URL.
type VaultResolver struct {
	Root string // vault directory; "" means the markdown source directory
}

// Resolve implements EmbedResolver.
func (r VaultResolver) Resolve(ctx context.Context, src, sourcePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if IsRemoteOrDataURL(src) || strings.HasPrefix(src, "file://") {
		return src, nil
	}

	name, err := url.PathUnescape(src)
	if err != nil {
		name = src
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty source", ErrEmbedNotFound)
	}

	root, err := r.root(sourcePath)
	if err != nil {
		return "", err
	}

	var candidates []string
	if sourcePath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(sourcePath), name))
	}
	candidates = append(candidates, filepath.Join(root, name))

	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if !isPathUnderDir(abs, root) {
			continue
		}
		if isRegularFile(abs) {
			return pathToFileURL(abs), nil
		}
	}

	match, err := globByBaseName(os.DirFS(root), path.Base(filepath.ToSlash(name)))
	if err != nil {
		return "", err
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrEmbedNotFound, name)
	}
	return pathToFileURL(filepath.Join(root, filepath.FromSlash(match))), nil
}

// root returns the absolute vault root.
func (r VaultResolver) root(sourcePath string) (string, error) {
	dir := r.Root
	if dir == "" {
		if sourcePath == "" {
			return "", fmt.Errorf("%w: no vault directory and no source path", ErrEmbedNotFound)
		}
		dir = filepath.Dir(sourcePath)
	}
	return filepath.Abs(dir)
}

// globByBaseName finds the first regular file named base anywhere in fsys.
func globByBaseName(fsys fs.FS, base string) (string, error) {
	if base == "" || base == "." || base == "/" {
		return "", nil
	}
	matches, err := doublestar.Glob(fsys, "**/"+escapeGlob(base), doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("searching vault for %q: %w", base, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	first := matches[0]
	for _, m := range matches[1:] {
		if m < first {
			first = m
		}
	}
	return first, nil
}

// escapeGlob quotes doublestar meta characters in a literal name.
func escapeGlob(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
