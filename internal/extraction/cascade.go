package extraction

import (
	"unicode/utf8"

	"github.com/jonathan/candidate-tracker/internal/dom"
	"github.com/jonathan/candidate-tracker/internal/textnorm"
)

// strategy produces one candidate value for a field.
type strategy func() string

// cascade returns the first normalized strategy result accepted by valid.
func cascade(valid func(string) bool, strategies ...strategy) string {
	for _, s := range strategies {
		v := textnorm.Normalize(s())
		if v == "" {
			continue
		}
		if valid == nil || valid(v) {
			return v
		}
	}
	return ""
}

// selectorStrategies builds one strategy per selector, each reading the text
// of the first element matching that selector under root.
func selectorStrategies(root dom.Node, selectors ...string) []strategy {
	strategies := make([]strategy, 0, len(selectors))
	for _, sel := range selectors {
		strategies = append(strategies, func() string {
			return dom.TextOf(root.First(sel))
		})
	}
	return strategies
}

// firstValid returns the first node text under root, across every match of
// selector, that valid accepts.
func firstValid(root dom.Node, selector string, valid func(string) bool) string {
	for _, n := range root.Find(selector) {
		if v := dom.TextOf(n); v != "" && valid(v) {
			return v
		}
	}
	return ""
}

func longerThan(s string, n int) bool {
	return utf8.RuneCountInString(s) > n
}
