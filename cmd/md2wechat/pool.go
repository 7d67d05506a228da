package main

import (
	"context"

	md2wechat "github.com/alnah/go-md2wechat"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input md2wechat.Input) (*md2wechat.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*md2wechat.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() CLIConverter
	Release(CLIConverter)
	Size() int
	InitErr() error
	Close() error
}

// converterPool adapts md2wechat.ConverterPool to Pool.
type converterPool struct {
	pool *md2wechat.ConverterPool
}

// Compile-time check that converterPool implements Pool.
var _ Pool = (*converterPool)(nil)

// newConverterPool creates a pool of size converters sharing opts.
func newConverterPool(size int, opts ...md2wechat.Option) Pool {
	return &converterPool{pool: md2wechat.NewConverterPool(size, opts...)}
}

// Acquire returns nil, not a nil *Converter, when no converter is available.
func (p *converterPool) Acquire() CLIConverter {
	conv := p.pool.Acquire()
	if conv == nil {
		return nil
	}
	return conv
}

func (p *converterPool) Release(c CLIConverter) {
	if conv, ok := c.(*md2wechat.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *converterPool) Size() int      { return p.pool.Size() }
func (p *converterPool) InitErr() error { return p.pool.InitErr() }
func (p *converterPool) Close() error   { return p.pool.Close() }
