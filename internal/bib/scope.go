package bib

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/engine"
	"github.com/quillforge/quill/internal/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Style selects how inline citations render.
type Style int

const (
	// StyleNumeric renders markers like [3] and a numbered reference list.
	StyleNumeric Style = iota
	// StyleAuthorYear renders markers like (Knuth 1974) and an unnumbered
	// reference list.
	StyleAuthorYear
)

// ParseStyle maps a configuration string onto a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "numeric":
		return StyleNumeric, nil
	case "author-year", "authoryear":
		return StyleAuthorYear, nil
	default:
		return StyleNumeric, fmt.Errorf("unknown citation style %q (numeric, author-year)", s)
	}
}

// Scope is the per-pass citation state: which keys the document has cited,
// in first-cite order, against which database and style.
type Scope struct {
	db           *Database
	style        Style
	sortByAuthor bool
	collator     *collate.Collator

	order   []string
	cited   map[string]bool
	numbers map[string]int
}

// ScopeOption configures a scope.
type ScopeOption func(*Scope)

// WithStyle sets the inline citation style.
func WithStyle(style Style) ScopeOption {
	return func(s *Scope) { s.style = style }
}

// SortByAuthor orders the reference list by collated author names under the
// given language instead of first-cite order. Citation numbers follow the
// sorted order.
func SortByAuthor(tag language.Tag) ScopeOption {
	return func(s *Scope) {
		s.sortByAuthor = true
		s.collator = collate.New(tag, collate.IgnoreCase)
	}
}

// NewScope creates a citation scope over db.
func NewScope(db *Database, opts ...ScopeOption) *Scope {
	s := &Scope{
		db:      db,
		cited:   make(map[string]bool),
		numbers: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	scopeKey  = "bib.scope"
	placedKey = "bib.placed"
)

// Placed reports whether an explicit bibliography macro has rendered in
// this pass; the document layer uses it to decide on auto-appending one.
func Placed(p *engine.Pass) bool {
	_, ok := p.Get(placedKey)
	return ok
}

// Install binds the scope to the pass root, making it visible to every
// Cite and Bibliography in the document.
func Install(p *engine.Pass, s *Scope) {
	p.SetRoot(scopeKey, s)
}

// FromPass returns the scope installed on the pass, or nil.
func FromPass(p *engine.Pass) *Scope {
	if p == nil {
		return nil
	}
	v, ok := p.Get(scopeKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Scope)
	return s
}

// record notes that the document cites key. Unknown keys are recorded too;
// they surface as diagnostics when the marker resolves.
func (s *Scope) record(key string) {
	if s.cited[key] {
		return
	}
	s.cited[key] = true
	s.order = append(s.order, key)
}

// Cited reports whether anything has been cited.
func (s *Scope) Cited() bool { return len(s.order) > 0 }

// entries returns the cited items in final order, skipping unknown keys.
func (s *Scope) entries() []Item {
	out := make([]Item, 0, len(s.order))
	for _, key := range s.order {
		if it, ok := s.db.Lookup(key); ok {
			out = append(out, it)
		}
	}
	if s.sortByAuthor {
		sort.SliceStable(out, func(i, j int) bool {
			return s.collator.CompareString(sortKey(out[i]), sortKey(out[j])) < 0
		})
	}
	return out
}

// sortKey collates on the first author's last name, falling back to title.
func sortKey(it Item) string {
	if len(it.Authors) == 0 {
		return it.Title
	}
	fields := strings.Fields(it.Authors[0])
	if len(fields) == 0 {
		return it.Title
	}
	return fields[len(fields)-1] + " " + it.Authors[0]
}

// number returns the 1-based reference number for key in the final order.
// The mapping is computed on first use; by then the whole tree has
// rendered, so every cite is recorded.
func (s *Scope) number(key string) (int, bool) {
	if len(s.numbers) == 0 {
		for i, it := range s.entries() {
			s.numbers[it.Key] = i + 1
		}
	}
	n, ok := s.numbers[key]
	return n, ok
}

// Cite records the keys in the scope and renders a deferred citation
// marker; numbers are assigned once the pass has seen every cite.
func Cite(keys ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := engine.FromContext(ctx)
		if p == nil {
			return errors.Newf("cite", "cite rendered outside a pass")
		}
		s := FromPass(p)
		if s == nil {
			return engine.Failf(ctx, "cite", "no bibliography scope installed")
		}
		if len(keys) == 0 {
			return engine.Failf(ctx, "cite", "cite with no keys")
		}
		for _, key := range keys {
			s.record(key)
		}
		return engine.Deferred("cite", func(*engine.Pass) (string, error) {
			return s.marker(keys)
		}).Render(ctx, w)
	})
}

func (s *Scope) marker(keys []string) (string, error) {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		it, ok := s.db.Lookup(key)
		if !ok {
			return "", errors.Newf("cite", "unknown citation key %q", key)
		}
		href := "#ref-" + templ.EscapeString(key)
		switch s.style {
		case StyleAuthorYear:
			parts = append(parts, fmt.Sprintf(`<a href="%s">%s</a>`, href, templ.EscapeString(authorYear(it))))
		default:
			n, _ := s.number(key)
			parts = append(parts, fmt.Sprintf(`<a href="%s">%d</a>`, href, n))
		}
	}
	switch s.style {
	case StyleAuthorYear:
		return `<span class="cite">(` + strings.Join(parts, "; ") + `)</span>`, nil
	default:
		return `<span class="cite">[` + strings.Join(parts, ", ") + `]</span>`, nil
	}
}

// Bibliography renders the reference list for everything the document
// cited, as a deferred fragment. A document that cites nothing gets no
// reference list at all.
func Bibliography() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := engine.FromContext(ctx)
		if p == nil {
			return errors.Newf("bibliography", "bibliography rendered outside a pass")
		}
		s := FromPass(p)
		if s == nil {
			return engine.Failf(ctx, "bibliography", "no bibliography scope installed")
		}
		p.SetRoot(placedKey, true)
		return engine.Deferred("bibliography", func(*engine.Pass) (string, error) {
			return s.referenceList(), nil
		}).Render(ctx, w)
	})
}

func (s *Scope) referenceList() string {
	entries := s.entries()
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<section class="bibliography" id="bibliography"><h2>References</h2>`)
	tag := "ol"
	if s.style == StyleAuthorYear {
		tag = "ul"
	}
	b.WriteString(`<` + tag + ` class="bib-list">`)
	for _, it := range entries {
		b.WriteString(fmt.Sprintf(`<li id="ref-%s">%s</li>`, templ.EscapeString(it.Key), formatItem(it)))
	}
	b.WriteString(`</` + tag + `></section>`)
	return b.String()
}
