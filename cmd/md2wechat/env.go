package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	md2wechat "github.com/alnah/go-md2wechat"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	NewPool func(size int, opts ...md2wechat.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewPool: newConverterPool,
	}
}

// lockedLogger returns a Logger writing one line per message to w.
// Workers log concurrently, so writes are serialized.
func lockedLogger(w io.Writer) md2wechat.Logger {
	var mu sync.Mutex
	return func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format+"\n", args...)
	}
}
