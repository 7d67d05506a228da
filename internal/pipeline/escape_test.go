package pipeline

// Notes:
// - Every transform is checked inside fenced regions and inline code, where
//   it must not fire
// - Escaped output is markdown, not HTML: goldmark turns "&lt;" back into a
//   visible "<" and "\[" into a literal bracket

import "testing"

// ---------------------------------------------------------------------------
// TestEscapePseudoHTML
// ---------------------------------------------------------------------------

func TestEscapePseudoHTML(t *testing.T) {
	t.Parallel()

	known := tagSet(DefaultKnownTags)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unknown tag escaped",
			input: "use <T> here",
			want:  "use &lt;T&gt; here",
		},
		{
			name:  "unknown closing tag escaped",
			input: "a </foo> b",
			want:  "a &lt;/foo&gt; b",
		},
		{
			name:  "attributes kept in escaped text",
			input: `<placeholder name="x">`,
			want:  `&lt;placeholder name="x"&gt;`,
		},
		{
			name:  "known tags pass through",
			input: `<div class="x"><span>ok</span></div>`,
			want:  `<div class="x"><span>ok</span></div>`,
		},
		{
			name:  "case insensitive lookup",
			input: "<DIV>x</DIV>",
			want:  "<DIV>x</DIV>",
		},
		{
			name:  "inline code untouched",
			input: "type `List<T>` and <T>",
			want:  "type `List<T>` and &lt;T&gt;",
		},
		{
			name:  "fenced code untouched",
			input: "```\n<T>\n```\n<T>",
			want:  "```\n<T>\n```\n&lt;T&gt;",
		},
		{
			name:  "comparison is not a tag",
			input: "a < b > c",
			want:  "a < b > c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := EscapePseudoHTML(tt.input, known); got != tt.want {
				t.Errorf("EscapePseudoHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapePseudoHTML_CustomTags(t *testing.T) {
	t.Parallel()

	got := EscapePseudoHTML("<kbd>x</kbd> <T>", tagSet([]string{"T"}))
	want := "&lt;kbd&gt;x&lt;/kbd&gt; <T>"
	if got != want {
		t.Errorf("EscapePseudoHTML() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestNeutralizeUnsafeLinks
// ---------------------------------------------------------------------------

func TestNeutralizeUnsafeLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "javascript link escaped",
			input: "[x](javascript:alert(1))",
			want:  `\[x](javascript:alert(1))`,
		},
		{
			name:  "vbscript link escaped case insensitive",
			input: "see [x](VBScript:msgbox)",
			want:  `see \[x](VBScript:msgbox)`,
		},
		{
			name:  "data link escaped",
			input: "[x](data:text/html;base64,AAAA)",
			want:  `\[x](data:text/html;base64,AAAA)`,
		},
		{
			name:  "image left unmodified",
			input: "![x](javascript:alert(1))",
			want:  "![x](javascript:alert(1))",
		},
		{
			name:  "already escaped left alone",
			input: `\[x](javascript:alert(1))`,
			want:  `\[x](javascript:alert(1))`,
		},
		{
			name:  "safe link untouched",
			input: "[x](https://example.com)",
			want:  "[x](https://example.com)",
		},
		{
			name:  "inline code untouched",
			input: "`[x](javascript:y)`",
			want:  "`[x](javascript:y)`",
		},
		{
			name:  "fenced code untouched",
			input: "```\n[x](javascript:y)\n```",
			want:  "```\n[x](javascript:y)\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NeutralizeUnsafeLinks(tt.input); got != tt.want {
				t.Errorf("NeutralizeUnsafeLinks(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNeutralizePlainWikilinks
// ---------------------------------------------------------------------------

func TestNeutralizePlainWikilinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "line start",
			input: "[[foo]]",
			want:  `\[[foo]]`,
		},
		{
			name:  "mid line with alias",
			input: "see [[foo|Foo]] and [[bar]]",
			want:  `see \[[foo|Foo]] and \[[bar]]`,
		},
		{
			name:  "inside backtick span untouched",
			input: "`[[foo]]`",
			want:  "`[[foo]]`",
		},
		{
			name:  "image embed untouched",
			input: "![[pic.png]]",
			want:  "![[pic.png]]",
		},
		{
			name:  "already escaped untouched",
			input: `\[[foo]]`,
			want:  `\[[foo]]`,
		},
		{
			name:  "fenced code untouched",
			input: "```\n[[foo]]\n```",
			want:  "```\n[[foo]]\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NeutralizePlainWikilinks(tt.input); got != tt.want {
				t.Errorf("NeutralizePlainWikilinks(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
