// ingest/normalize.go
package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts covers the date shapes seen across the instrument exports.
// Tried in order; first hit wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
}

// Normalizer canonicalizes sentinel "missing" tokens to nil and coerces
// raw cell text to typed values. All methods are pure and never reject a
// value: anything unparseable degrades to nil so the row still loads with
// whatever fields could be read.
type Normalizer struct {
	missing map[string]struct{}
}

// NewNormalizer builds a Normalizer from the configured sentinel tokens.
// Matching is exact and case-sensitive after trimming the cell's
// surrounding whitespace.
func NewNormalizer(naTokens []string) *Normalizer {
	m := make(map[string]struct{}, len(naTokens))
	for _, t := range naTokens {
		m[t] = struct{}{}
	}
	return &Normalizer{missing: m}
}

// IsMissing reports whether the trimmed cell is one of the sentinel tokens.
func (n *Normalizer) IsMissing(raw string) bool {
	_, ok := n.missing[strings.TrimSpace(raw)]
	return ok
}

// Clean returns the trimmed cell text, or nil for sentinel tokens.
func (n *Normalizer) Clean(raw string) *string {
	s := strings.TrimSpace(raw)
	if _, ok := n.missing[s]; ok {
		return nil
	}
	return &s
}

// ToFloat parses numeric text, tolerating thousands separators and
// surrounding whitespace. Sentinels and unparseable text yield nil.
func (n *Normalizer) ToFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if _, ok := n.missing[s]; ok {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ToInt parses an integer identifier (lot, batch). Values exported as
// "4.0" still count as integers.
func (n *Normalizer) ToInt(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if _, ok := n.missing[s]; ok {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return nil
	}
	i := int64(f)
	return &i
}

// ToDate parses loosely-formatted date text into a calendar date.
func (n *Normalizer) ToDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if _, ok := n.missing[s]; ok {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ToISODate is ToDate formatted as YYYY-MM-DD, the shape date columns are
// stored in.
func (n *Normalizer) ToISODate(raw string) *string {
	t := n.ToDate(raw)
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
