package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ttbt-io/diamondtracker/scoreboard"
)

// PlayMatcher is a compiled play-log query.
type PlayMatcher struct {
	innings []func(int) bool
	half    string
	terms   []string
}

// CompilePlays turns a query into a matcher. Supported filters are
// inning (with comparisons and ranges) and half (top or bottom); every
// free-text term must appear in the play text, ignoring case.
func CompilePlays(input string) (*PlayMatcher, error) {
	q := Parse(input)
	m := &PlayMatcher{}
	for _, f := range q.Filters {
		switch f.Key {
		case "inning", "inn", "i":
			pred, err := inningPredicate(f)
			if err != nil {
				return nil, err
			}
			m.innings = append(m.innings, pred)
		case "half":
			switch h := strings.ToLower(f.Value); h {
			case "top", "t":
				m.half = "top"
			case "bottom", "bot", "b":
				m.half = "bottom"
			default:
				return nil, invalid("half", fmt.Errorf("half must be top or bottom, got %q", f.Value))
			}
		default:
			return nil, invalid("q", fmt.Errorf("unknown filter %q", f.Key))
		}
	}
	for _, t := range q.FreeText {
		m.terms = append(m.terms, strings.ToLower(t))
	}
	return m, nil
}

func invalid(field string, err error) error {
	return &scoreboard.ValidationError{Field: field, Err: err}
}

func inningPredicate(f Filter) (func(int) bool, error) {
	n, err := strconv.Atoi(f.Value)
	if err != nil {
		return nil, invalid("inning", fmt.Errorf("invalid inning %q", f.Value))
	}
	switch f.Operator {
	case OpRange:
		hi, err := strconv.Atoi(f.MaxValue)
		if err != nil {
			return nil, invalid("inning", fmt.Errorf("invalid inning %q", f.MaxValue))
		}
		return func(i int) bool { return i >= n && i <= hi }, nil
	case OpGreater:
		return func(i int) bool { return i > n }, nil
	case OpGreaterOrEqual:
		return func(i int) bool { return i >= n }, nil
	case OpLess:
		return func(i int) bool { return i < n }, nil
	case OpLessOrEqual:
		return func(i int) bool { return i <= n }, nil
	}
	return func(i int) bool { return i == n }, nil
}

// Match reports whether a play satisfies every part of the query.
func (m *PlayMatcher) Match(p scoreboard.PlayRecord) bool {
	for _, pred := range m.innings {
		if !pred(p.Inning) {
			return false
		}
	}
	if m.half == "top" && !p.IsTopHalf || m.half == "bottom" && p.IsTopHalf {
		return false
	}
	text := strings.ToLower(p.Text)
	for _, t := range m.terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

// Filter returns the matching plays, keeping their order.
func (m *PlayMatcher) Filter(plays scoreboard.PlayLog) scoreboard.PlayLog {
	out := make(scoreboard.PlayLog, 0, len(plays))
	for _, p := range plays {
		if m.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
