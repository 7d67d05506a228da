package pipeline

import "testing"

// ---------------------------------------------------------------------------
// TestInjectHardBreaks
// ---------------------------------------------------------------------------

func TestInjectHardBreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "soft break becomes hard",
			input: "a\nb",
			want:  "a<br>\nb",
		},
		{
			name:  "trailing spaces replaced by marker",
			input: "a \nb",
			want:  "a<br>\nb",
		},
		{
			name:  "last line untouched",
			input: "a",
			want:  "a",
		},
		{
			name:  "blank line separates paragraphs",
			input: "a\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "two trailing spaces kept",
			input: "a  \nb",
			want:  "a  \nb",
		},
		{
			name:  "trailing backslash kept",
			input: "a\\\nb",
			want:  "a\\\nb",
		},
		{
			name:  "existing br kept",
			input: "a<br/>\nb",
			want:  "a<br/>\nb",
		},
		{
			name:  "heading line kept",
			input: "# Title\ntext",
			want:  "# Title\ntext",
		},
		{
			name:  "line before list kept",
			input: "intro\n- item",
			want:  "intro\n- item",
		},
		{
			name:  "list item continuation broken",
			input: "- item\n  more",
			want:  "- item<br>\n  more",
		},
		{
			name:  "consecutive list items kept",
			input: "- a\n- b",
			want:  "- a\n- b",
		},
		{
			name:  "quote lines joined by backslash",
			input: "> a\n> b",
			want:  "> a\\\n> b",
		},
		{
			name:  "callout header not joined",
			input: "> [!note]\n> body",
			want:  "> [!note]\n> body",
		},
		{
			name:  "empty quote line not joined",
			input: "> a\n>\n> b",
			want:  "> a\n>\n> b",
		},
		{
			name:  "table rows kept",
			input: "| a |\n| - |",
			want:  "| a |\n| - |",
		},
		{
			name:  "thematic break kept",
			input: "a\n***",
			want:  "a\n***",
		},
		{
			name:  "code fence untouched",
			input: "```\na\nb\n```",
			want:  "```\na\nb\n```",
		},
		{
			name:  "math fence untouched",
			input: "$$\na\nb\n$$",
			want:  "$$\na\nb\n$$",
		},
		{
			name:  "nested fence untouched",
			input: "````\n```\na\nb\n```\n````",
			want:  "````\n```\na\nb\n```\n````",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectHardBreaks(tt.input); got != tt.want {
				t.Errorf("InjectHardBreaks(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsThematicBreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{"---", true},
		{"* * *", true},
		{"___", true},
		{"--", false},
		{"-*-", false},
		{"--- x", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isThematicBreak(tt.line); got != tt.want {
			t.Errorf("isThematicBreak(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
