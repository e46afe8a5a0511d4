package search

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Marker is the pair of strings wrapped around each highlighted match.
type Marker struct {
	Open  string `yaml:"open" json:"open"`
	Close string `yaml:"close" json:"close"`
}

// DefaultMarker is HTML emphasis.
var DefaultMarker = Marker{Open: "<mark>", Close: "</mark>"}

// Fragment is one piece of highlighted text. Match is true for pieces that
// matched a query term.
type Fragment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Highlighter renders query matches with a fixed marker.
type Highlighter struct {
	marker Marker
}

// NewHighlighter creates a highlighter. An empty marker falls back to
// DefaultMarker.
func NewHighlighter(m Marker) *Highlighter {
	if m.Open == "" && m.Close == "" {
		m = DefaultMarker
	}
	return &Highlighter{marker: m}
}

// Marker returns the marker in use.
func (h *Highlighter) Marker() Marker {
	return h.marker
}

// Highlight wraps every case-insensitive occurrence of each query term in
// the marker. A blank query returns text unchanged.
func (h *Highlighter) Highlight(text, query string) string {
	frags := Fragments(text, query)
	if len(frags) == 1 && !frags[0].Match {
		return text
	}

	var b strings.Builder
	for _, f := range frags {
		if f.Match {
			b.WriteString(h.marker.Open)
			b.WriteString(f.Text)
			b.WriteString(h.marker.Close)
			continue
		}
		b.WriteString(f.Text)
	}
	return b.String()
}

// Highlight uses DefaultMarker.
func Highlight(text, query string) string {
	return NewHighlighter(DefaultMarker).Highlight(text, query)
}

// Fragments splits text into matched and unmatched pieces.
//
// Text and query are NFC-composed before matching, the same as Filter does,
// and case folding is left to the pattern so the query is never lower-cased
// into a form that no longer folds back (İ). All terms are matched in one
// pass, longest first, so a shorter term never matches inside a longer one
// that was already taken. Regex metacharacters in terms are literal.
// Concatenating the Text of every fragment yields the NFC form of text.
func Fragments(text, query string) []Fragment {
	re := termPattern(strings.Fields(norm.NFC.String(query)))
	if re == nil || text == "" {
		return []Fragment{{Text: text}}
	}
	text = norm.NFC.String(text)

	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Fragment{{Text: text}}
	}

	frags := make([]Fragment, 0, 2*len(locs)+1)
	pos := 0
	for _, loc := range locs {
		if loc[0] > pos {
			frags = append(frags, Fragment{Text: text[pos:loc[0]]})
		}
		frags = append(frags, Fragment{Text: text[loc[0]:loc[1]], Match: true})
		pos = loc[1]
	}
	if pos < len(text) {
		frags = append(frags, Fragment{Text: text[pos:]})
	}
	return frags
}

// termPattern compiles a case-insensitive alternation of terms, or nil.
func termPattern(terms []string) *regexp.Regexp {
	if len(terms) == 0 {
		return nil
	}

	uniq := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			uniq = append(uniq, t)
		}
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		return len(uniq[i]) > len(uniq[j])
	})

	quoted := make([]string, len(uniq))
	for i, t := range uniq {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
}
