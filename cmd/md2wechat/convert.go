package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	md2wechat "github.com/alnah/go-md2wechat"
	"github.com/alnah/go-md2wechat/internal/config"
)

// Sentinel errors for CLI validation.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrVaultNotFound      = errors.New("vault directory not found")
)

// runConvert resolves the effective configuration, discovers markdown files
// and converts them with a bounded pool.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	envCfg := loadEnvConfig(env.Getenv)

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	if err := validateWorkers(workers); err != nil {
		return err
	}

	cfg, err := loadEffectiveConfig(flags, envCfg)
	if err != nil {
		return err
	}

	if flags.printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = env.Stdout.Write(data)
		return err
	}

	if err := validateVault(cfg.Render.VaultDir); err != nil {
		return err
	}
	if err := validateGlob(cfg.Input.Glob); err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir, cfg.Input.Glob)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoMarkdownFiles, inputPath)
	}

	var logger md2wechat.Logger
	if flags.common.verbose {
		logger = lockedLogger(env.Stderr)
	}

	pool := env.NewPool(md2wechat.ResolvePoolSize(workers), buildOptions(cfg, logger)...)
	defer func() { _ = pool.Close() }()

	params := &conversionParams{raw: cfg.Output.Raw, now: env.Now}
	results := convertBatch(ctx, pool, files, params)

	failed, firstErr := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d conversion(s) failed: %w", failed, firstErr)
	}

	return nil
}

// loadEffectiveConfig loads the config file and applies env vars then flags.
// The result is validated again since overrides bypass LoadConfig.
func loadEffectiveConfig(flags *convertFlags, envCfg *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)

	if err := mergeFlags(flags, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags applies CLI flag values over config. Boolean flags can only
// switch a feature on.
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.render.timeout != "" {
		d, err := parseTimeout(flags.render.timeout)
		if err != nil {
			return err
		}
		cfg.Render.TimeoutMs = int(d / time.Millisecond)
	}
	if flags.render.vault != "" {
		cfg.Render.VaultDir = flags.render.vault
	}
	if flags.render.legacyFallback {
		cfg.Render.LegacyFallback = true
	}
	if flags.render.raw {
		cfg.Output.Raw = true
	}
	if flags.glob != "" {
		cfg.Input.Glob = flags.glob
	}
	return nil
}

// parseTimeout parses a --timeout value. Sub-millisecond values are rejected
// because the config stores milliseconds.
func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, s, err)
	}
	if d < time.Millisecond {
		return 0, fmt.Errorf("%w: %s (must be at least 1ms)", ErrInvalidTimeout, s)
	}
	return d, nil
}

// buildOptions maps the effective config to converter options.
// Zero values keep the library defaults.
func buildOptions(cfg *config.Config, logger md2wechat.Logger) []md2wechat.Option {
	var opts []md2wechat.Option

	if d := cfg.Render.Timeout(); d > 0 {
		opts = append(opts, md2wechat.WithTimeout(d))
	}
	if cfg.Render.HasSettleTimings() {
		settle := md2wechat.DefaultSettleOptions()
		interval, minObserve, timeout := cfg.Render.SettleTimings()
		if interval > 0 {
			settle.Interval = interval
		}
		if minObserve > 0 {
			settle.MinObserve = minObserve
		}
		if timeout > 0 {
			settle.Timeout = timeout
		}
		opts = append(opts, md2wechat.WithSettleTiming(settle))
	}
	if cfg.Render.LegacyFallback {
		opts = append(opts, md2wechat.WithLegacyFallback(true))
	}
	if cfg.Render.VaultDir != "" {
		opts = append(opts, md2wechat.WithVaultDir(cfg.Render.VaultDir))
	}
	if len(cfg.Render.KnownTags) > 0 {
		opts = append(opts, md2wechat.WithKnownTags(cfg.Render.KnownTags...))
	}
	if n := cfg.Clean.ShortLabelMaxRunes; n != 0 {
		opts = append(opts, md2wechat.WithShortLabelMaxRunes(n))
	}
	if logger != nil {
		opts = append(opts, md2wechat.WithLogger(logger))
	}

	return opts
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// validateVault checks that a configured vault is an existing directory.
func validateVault(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrVaultNotFound, dir)
	}
	return nil
}

// validateWorkers checks the worker count is in range.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > md2wechat.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, md2wechat.MaxPoolSize)
	}
	return nil
}
