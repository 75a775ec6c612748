// Package spintax resolves alternation groups of the form {a|b|c}.
//
// A group is always the first innermost {...} span, i.e. one that contains no
// further braces. Nested groups are handled by resolving that span and scanning
// again. There is no escaping: stray or unmatched braces stay in the output.
//
// Two modes are provided:
//   - Spin picks one alternative per group at random, innermost group first.
//   - Enumerator (and All) walks every resolution depth-first, alternatives
//     left to right. It expands the outermost group enclosing the first
//     innermost one, so {A|{B|C}} yields A, B, C and each nested choice is
//     produced once. Both modes reach the same set of texts.
package spintax

import (
	"math"
	"math/rand/v2"
	"strings"
)

// Source is the randomness Spin draws from. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// group describes one innermost alternation group inside a text
type group struct {
	start, end int // byte offsets of '{' and '}'
	choices    []string
}

// findGroup locates the first innermost group of text.
// A '}' closes the most recent '{' seen so far; since any earlier '}' would
// already have closed it, the span between them holds no braces.
func findGroup(text string) (group, bool) {
	open := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			open = i
		case '}':
			if open >= 0 {
				return group{
					start:   open,
					end:     i,
					choices: strings.Split(text[open+1:i], "|"),
				}, true
			}
		}
	}
	return group{}, false
}

// replace substitutes the whole group, braces included, with choice
func (g group) replace(text, choice string) string {
	return text[:g.start] + choice + text[g.end+1:]
}

// findOuterGroup widens the first innermost group to the outermost balanced
// group that encloses it. Alternatives are split on top-level '|' only.
func findOuterGroup(text string) (group, bool) {
	g, ok := findGroup(text)
	if !ok {
		return g, false
	}
	for {
		open := enclosingOpen(text, g.start)
		if open < 0 {
			return g, true
		}
		end := matchingClose(text, open)
		if end < 0 {
			return g, true
		}
		g = group{start: open, end: end, choices: splitTop(text[open+1 : end])}
	}
}

// enclosingOpen scans left from pos for a '{' not closed before pos
func enclosingOpen(text string, pos int) int {
	depth := 0
	for i := pos - 1; i >= 0; i-- {
		switch text[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// matchingClose returns the index of the '}' closing the '{' at open
func matchingClose(text string, open int) int {
	depth := 0
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// splitTop splits s on '|' characters that are not inside braces
func splitTop(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// HasGroups reports whether text contains at least one resolvable group
func HasGroups(text string) bool {
	_, ok := findGroup(text)
	return ok
}

// Spin resolves every group of text with a uniformly chosen alternative.
// A nil rng uses the package-level source. Empty input yields "".
func Spin(text string, rng Source) string {
	if text == "" {
		return ""
	}
	if rng == nil {
		rng = globalSource{}
	}
	for {
		g, ok := findGroup(text)
		if !ok {
			return text
		}
		text = g.replace(text, g.choices[rng.IntN(len(g.choices))])
	}
}

// Count returns how many results an enumeration of text produces, saturating
// at math.MaxInt.
//
// Text before the first outer group holds no group, and the text after it is
// enumerated independently of the chosen alternative, so the count is the sum
// over the alternatives times the count of the rest.
func Count(text string) int {
	g, ok := findOuterGroup(text)
	if !ok {
		return 1
	}
	alternatives := 0
	for _, choice := range g.choices {
		alternatives = addSaturated(alternatives, Count(choice))
	}
	return mulSaturated(alternatives, Count(text[g.end+1:]))
}

func addSaturated(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func mulSaturated(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

// Balanced reports whether every '{' has a matching '}' and vice versa.
// Unbalanced templates still resolve; this is only a diagnostic.
func Balanced(text string) bool {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
