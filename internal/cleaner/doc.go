// Package cleaner rewrites rendered HTML so the target rich-text editor lays
// out lists and paragraphs as authored.
//
// The editor cannot render nested lists reliably, breaks lines between a bold
// label and its colon, and treats paragraphs inside list items as siblings of
// nested lists. Clean works around these quirks:
//   - collapses "label: <br> body" list items onto one line
//   - merges and unwraps simple paragraphs inside list items
//   - turns leading <strong>/<code> into forced-inline spans
//   - flattens lists nested two or more levels deep into marker-prefixed
//     paragraphs
//   - resets margins of singly nested lists and prunes empty items
//
// Clean is deterministic and idempotent: cleaning its own output is a no-op.
package cleaner
