package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2wechat <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown notes to HTML for pasting into the WeChat editor.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output .html file or directory")
	fmt.Fprintln(w, "      --glob <pattern>      Files to convert in an input directory (default: **/*.{md,markdown})")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-file timeout (e.g., 10s, 1m)")
	fmt.Fprintln(w, "      --vault <dir>         Directory searched for ![[embeds]]")
	fmt.Fprintln(w, "      --legacy-fallback     Use the built-in converter when rendering fails")
	fmt.Fprintln(w, "      --raw                 Skip structural cleaning")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and pipeline messages")
	fmt.Fprintln(w, "      --print-config        Print the effective configuration and exit")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2WECHAT_CONFIG, MD2WECHAT_TIMEOUT, MD2WECHAT_INPUT_DIR,")
	fmt.Fprintln(w, "  MD2WECHAT_OUTPUT_DIR, MD2WECHAT_VAULT, MD2WECHAT_WORKERS")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Precedence: flags > environment > config file > defaults")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  general error")
	fmt.Fprintln(w, "  2  usage, config or validation error")
	fmt.Fprintln(w, "  3  file not found or not writable")
	fmt.Fprintln(w, "  4  render error")
}
