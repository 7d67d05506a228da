// Package dom provides the DOM plumbing shared by the render pipeline and the
// structural cleaner.
//
// It wraps golang.org/x/net/html with:
//   - Subtree: a scratch container owned by one render call. Host renderers may
//     keep mutating it from other goroutines after their render call returns
//     (asynchronous embed resolution), so every access goes through a mutex.
//   - Fragment parsing and rendering with body context, so fragments are never
//     wrapped in <html><body>.
//   - Small node helpers (text content, attributes, classes, tree edits).
//   - Inline style declaration lists, used to strip and force CSS properties
//     without producing different strings on repeated passes.
package dom
