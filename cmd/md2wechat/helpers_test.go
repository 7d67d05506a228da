package main

// Notes:
// - Test helpers and mocks shared across the CLI tests.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	md2wechat "github.com/alnah/go-md2wechat"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

// staticConverter returns a fixed result or error and records inputs.
type staticConverter struct {
	mu     sync.Mutex
	result *md2wechat.Result
	err    error
	inputs []md2wechat.Input
}

func (m *staticConverter) Convert(_ context.Context, input md2wechat.Input) (*md2wechat.Result, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockPool hands out the same converter, or nil when conv is nil.
type mockPool struct {
	conv     CLIConverter
	size     int
	initErr  error
	mu       sync.Mutex
	released int
	closed   bool
}

func (p *mockPool) Acquire() CLIConverter {
	if p.conv == nil {
		return nil
	}
	return p.conv
}

func (p *mockPool) Release(CLIConverter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *mockPool) Size() int      { return p.size }
func (p *mockPool) InitErr() error { return p.initErr }

func (p *mockPool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// Environment Helpers
// ---------------------------------------------------------------------------

// testEnv returns an environment with captured output, no process
// environment and the real converter pool.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	environ := make([]string, 0, len(vars))
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}
	env := &Environment{
		Now:     time.Now,
		Stdout:  stdout,
		Stderr:  stderr,
		Getenv:  func(k string) string { return vars[k] },
		Environ: func() []string { return environ },
		NewPool: newConverterPool,
	}
	return env, stdout, stderr
}

// writeFile creates parent directories and writes content under dir.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}

// mustParse parses flags or fails the test.
func mustParse(t *testing.T, args ...string) (*convertFlags, []string) {
	t.Helper()
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		t.Fatalf("parseConvertFlags(%v): %v", args, err)
	}
	return flags, positional
}
