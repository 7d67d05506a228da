package pipeline

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Formula placeholders are delimited by Private Use Area runes. They pass
// through markdown renderers unchanged and cannot appear in user content,
// which keeps the token opaque until the serializer swaps in rendered markup.
const (
	FormulaStartDelimiter = "\uE010"
	FormulaEndDelimiter   = "\uE011"
)

// Placeholder kind tags.
const (
	formulaTagBlock  = "BLOCK"
	formulaTagInline = "INLINE"
)

// placeholderPattern finds any formula placeholder in rendered text.
var placeholderPattern = regexp.MustCompile(FormulaStartDelimiter + `M[0-9a-z]+X_[0-9]+_[0-9a-z]+_(?:BLOCK|INLINE)` + FormulaEndDelimiter)

// Formula is one pre-rendered math expression.
type Formula struct {
	Placeholder string // opaque token substituted into the markdown
	Rendered    string // rendered markup injected by the serializer
	Block       bool   // display math ($$...$$) rather than inline ($...$)
}

// FormulaTable is the per-call registry of pre-rendered formulas.
// Each preprocess call creates its own table, threads it through render and
// serialize, and drops it afterwards; tables are never shared between calls.
type FormulaTable struct {
	session string
	counter int
	entries []Formula
	index   map[string]int
}

// NewFormulaTable returns an empty table with a fresh session id.
func NewFormulaTable() *FormulaTable {
	session := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return &FormulaTable{
		session: session,
		index:   make(map[string]int),
	}
}

// NextPlaceholder returns a new unique placeholder token.
// Format: delimiter, "M", session, "X_", counter, "_", random suffix, "_", kind, delimiter.
func (t *FormulaTable) NextPlaceholder(block bool) string {
	tag := formulaTagInline
	if block {
		tag = formulaTagBlock
	}
	suffix := strconv.FormatUint(uint64(rand.Uint32()), 36)
	id := "M" + t.session + "X_" + strconv.Itoa(t.counter) + "_" + suffix + "_" + tag
	t.counter++
	return FormulaStartDelimiter + id + FormulaEndDelimiter
}

// Add records a rendered formula. A placeholder already present is overwritten.
func (t *FormulaTable) Add(f Formula) {
	if i, ok := t.index[f.Placeholder]; ok {
		t.entries[i] = f
		return
	}
	t.index[f.Placeholder] = len(t.entries)
	t.entries = append(t.entries, f)
}

// Lookup returns the formula registered under placeholder.
func (t *FormulaTable) Lookup(placeholder string) (Formula, bool) {
	if t == nil {
		return Formula{}, false
	}
	i, ok := t.index[placeholder]
	if !ok {
		return Formula{}, false
	}
	return t.entries[i], true
}

// Entries returns a copy of the formulas in registration order.
func (t *FormulaTable) Entries() []Formula {
	if t == nil {
		return nil
	}
	out := make([]Formula, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of registered formulas.
func (t *FormulaTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ContainsPlaceholder reports whether s still holds any formula placeholder.
func ContainsPlaceholder(s string) bool {
	return placeholderPattern.MatchString(s)
}
