package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	md2wechat "github.com/alnah/go-md2wechat"
	"github.com/alnah/go-md2wechat/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadMarkdown    = errors.New("failed to read markdown file")
	ErrWriteHTML       = errors.New("failed to write HTML file")
	ErrCreateOutputDir = errors.New("failed to create output directory")
	ErrConverterInit   = errors.New("failed to initialize converter")
)

// conversionParams holds values shared by every job of a batch.
type conversionParams struct {
	raw bool
	now func() time.Time
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath    string
	OutputPath   string
	Title        string
	FallbackUsed bool
	Err          error
	Duration     time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Results keep the order of files.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv := pool.Acquire()
			if conv == nil {
				err := ErrConverterInit
				if initErr := pool.InitErr(); initErr != nil {
					err = fmt.Errorf("%w: %w", ErrConverterInit, initErr)
				}
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	now := params.now
	if now == nil {
		now = time.Now
	}
	start := now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	finish := func(err error) ConversionResult {
		result.Err = err
		result.Duration = now().Sub(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	sourcePath, err := filepath.Abs(f.InputPath)
	if err != nil {
		sourcePath = f.InputPath
	}

	converted, err := conv.Convert(ctx, md2wechat.Input{
		Markdown:   string(content),
		SourcePath: sourcePath,
		Raw:        params.raw,
	})
	if err != nil {
		return finish(err)
	}
	result.Title = converted.Title
	result.FallbackUsed = converted.FallbackUsed

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return finish(fmt.Errorf("%w: %v", ErrCreateOutputDir, err))
	}

	html := converted.HTML
	if params.raw {
		html = converted.RawHTML
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, []byte(html), filePermissions); err != nil {
		return finish(fmt.Errorf("%w: %v", ErrWriteHTML, err))
	}

	return finish(nil)
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Fallback  int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if r.FallbackUsed {
			summary.Fallback++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results and returns the number
// of failures along with the first failure cause.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) (int, error) {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
			if r.Title != "" {
				fmt.Fprintf(env.Stdout, " %q", r.Title)
			}
			if r.FallbackUsed {
				fmt.Fprint(env.Stdout, " [legacy]")
			}
			fmt.Fprintln(env.Stdout)
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}
	if !quiet && summary.Fallback > 0 {
		fmt.Fprintf(env.Stdout, "%d file(s) used the legacy converter\n", summary.Fallback)
	}

	return summary.Failed, firstErr
}
