package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-md2wechat/internal/fileutil"
)

// defaultGlob selects every markdown file below the input directory.
const defaultGlob = "**/*.{md,markdown}"

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrInvalidGlob      = errors.New("invalid glob pattern")
	ErrNoMarkdownFiles  = errors.New("no markdown files found")
)

// FileToConvert represents a single conversion job.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles returns conversion jobs for a file or directory input.
// Directory inputs are matched against pattern (defaultGlob when empty);
// hidden files and directories such as .obsidian are skipped.
func discoverFiles(inputPath, outputDir, pattern string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		outPath, err := resolveOutputPath(inputPath, outputDir, "")
		if err != nil {
			return nil, err
		}
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	if pattern == "" {
		pattern = defaultGlob
	}
	if err := validateGlob(pattern); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(os.DirFS(inputPath), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidGlob, pattern, err)
	}
	sort.Strings(matches)

	var files []FileToConvert
	for _, rel := range matches {
		if !fileutil.IsMarkdown(rel) || fileutil.HasHiddenSegment(rel) {
			continue
		}
		path := filepath.Join(inputPath, filepath.FromSlash(rel))
		outPath, err := resolveOutputPath(path, outputDir, inputPath)
		if err != nil {
			return nil, err
		}
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
	}

	return files, nil
}

// resolveOutputPath determines the .html path for a markdown file.
// An outputDir ending in .html names the output file itself.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) (string, error) {
	base, err := fileutil.ReplaceExtension(filepath.Base(inputPath), "html")
	if err != nil {
		return "", err
	}

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base), nil
	}

	if strings.HasSuffix(strings.ToLower(outputDir), ".html") {
		return outputDir, nil
	}

	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base), nil
		}
	}

	return filepath.Join(outputDir, base), nil
}

// validateMarkdownExtension checks a single input file is markdown.
func validateMarkdownExtension(path string) error {
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateGlob rejects malformed patterns before any file is touched.
func validateGlob(pattern string) error {
	if pattern == "" {
		return nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrInvalidGlob, pattern)
	}
	return nil
}
