// Package pipeline implements the Markdown-to-editor-HTML render pipeline.
//
// Stages, in order:
//   - Preprocessor: fence-aware markdown passes (embed rewrite, frontmatter,
//     math pre-render into placeholders, pseudo-HTML/unsafe-link/wikilink
//     escaping, hard-break injection) driven by the line scanner
//   - Orchestrator: calls the host renderer through either calling convention,
//     decides whether an embed observation window is needed and waits for the
//     DOM to settle
//   - Serializer: swaps formula placeholders for rendered markup
//
// Every call owns its FormulaTable and dom.Subtree; nothing mutable is shared
// between concurrent calls.
//
// GoldmarkHost is the default host renderer and LegacyConverter the math
// renderer and fallback converter. Structural cleanup of the serialized HTML
// lives in the cleaner package.
package pipeline
