package spintax

import "iter"

// Enumerator lazily produces every resolution of a template.
//
// Results come depth-first: the group enclosing the first innermost group is
// expanded with its alternatives in order, and each expanded text is fully
// enumerated before the next alternative is tried. An exhausted Enumerator
// reports ok == false from Next; Reset starts over from the original template.
type Enumerator struct {
	template string
	stack    []string
}

// NewEnumerator creates an enumerator positioned before the first result
func NewEnumerator(template string) *Enumerator {
	e := &Enumerator{template: template}
	e.Reset()
	return e
}

// Template returns the text being enumerated
func (e *Enumerator) Template() string {
	return e.template
}

// Reset restarts the enumeration from the original template
func (e *Enumerator) Reset() {
	e.stack = append(e.stack[:0], e.template)
}

// Next returns the next resolution. Once all resolutions have been returned it
// yields ("", false) on every call until Reset.
func (e *Enumerator) Next() (string, bool) {
	for len(e.stack) > 0 {
		top := len(e.stack) - 1
		text := e.stack[top]
		e.stack = e.stack[:top]

		g, ok := findOuterGroup(text)
		if !ok {
			return text, true
		}
		// push in reverse so the leftmost alternative is expanded first
		for i := len(g.choices) - 1; i >= 0; i-- {
			e.stack = append(e.stack, g.replace(text, g.choices[i]))
		}
	}
	return "", false
}

// Done reports whether the enumeration is exhausted
func (e *Enumerator) Done() bool {
	return len(e.stack) == 0
}

// All returns the enumeration of template as a range-over-func sequence.
// Breaking out of the loop early is fine; nothing is left running.
func All(template string) iter.Seq[string] {
	return func(yield func(string) bool) {
		e := NewEnumerator(template)
		for {
			text, ok := e.Next()
			if !ok || !yield(text) {
				return
			}
		}
	}
}

// Take collects at most limit resolutions of template. A limit <= 0 means no limit.
func Take(template string, limit int) []string {
	var out []string
	for text := range All(template) {
		out = append(out, text)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
