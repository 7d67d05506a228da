package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2wechat/internal/config"
)

// envPrefix is the prefix of every recognized environment variable.
const envPrefix = "MD2WECHAT_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MD2WECHAT_CONFIG: config file name or path
	Timeout    time.Duration // MD2WECHAT_TIMEOUT: per-file timeout
	InputDir   string        // MD2WECHAT_INPUT_DIR: default input directory
	OutputDir  string        // MD2WECHAT_OUTPUT_DIR: default output directory
	VaultDir   string        // MD2WECHAT_VAULT: embed search root
	Workers    int           // MD2WECHAT_WORKERS: parallel workers
}

// knownEnvVars lists valid MD2WECHAT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2WECHAT_CONFIG":     true,
	"MD2WECHAT_TIMEOUT":    true,
	"MD2WECHAT_INPUT_DIR":  true,
	"MD2WECHAT_OUTPUT_DIR": true,
	"MD2WECHAT_VAULT":      true,
	"MD2WECHAT_WORKERS":    true,
}

// loadEnvConfig reads configuration through getenv.
// Unparseable or non-positive timeout and worker values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MD2WECHAT_CONFIG"),
		InputDir:   getenv("MD2WECHAT_INPUT_DIR"),
		OutputDir:  getenv("MD2WECHAT_OUTPUT_DIR"),
		VaultDir:   getenv("MD2WECHAT_VAULT"),
	}

	if timeout := getenv("MD2WECHAT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("MD2WECHAT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2WECHAT_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values over the config file.
// CLI flags are applied afterwards by mergeFlags, giving
// flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.VaultDir != "" {
		cfg.Render.VaultDir = env.VaultDir
	}
	if env.Timeout > 0 {
		cfg.Render.TimeoutMs = int(env.Timeout / time.Millisecond)
	}
}
