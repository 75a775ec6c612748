// Package variables finds and fills [VarName] placeholders in resolved text.
//
// Substitution is meant to run on spintax output, never on raw templates.
package variables

import (
	"html"
	"regexp"
	"strings"

	"github.com/dpshade/quick-hb/internal/models"
)

// placeholderPattern matches [Name] where Name is a non-empty run without brackets
var placeholderPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Placeholder renders the literal marker for an unfilled variable
func Placeholder(name string) string {
	return "[" + name + "]"
}

// Formatter decides what replaces a single placeholder
type Formatter interface {
	// Format receives the variable name, its value and whether the value is filled
	Format(name, value string, filled bool) string
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc func(name, value string, filled bool) string

// Format calls f
func (f FormatterFunc) Format(name, value string, filled bool) string {
	return f(name, value, filled)
}

// Plain writes filled values as-is and leaves unfilled placeholders untouched
var Plain Formatter = FormatterFunc(func(name, value string, filled bool) string {
	if filled {
		return value
	}
	return Placeholder(name)
})

// HTML wraps every placeholder in the span marker the browser editor uses to
// re-identify variables, escaping both the name and the value.
var HTML Formatter = FormatterFunc(func(name, value string, filled bool) string {
	content := Placeholder(name)
	if filled {
		content = value
	}
	escName := html.EscapeString(name)
	var b strings.Builder
	b.WriteString(`<span title="siehe Tabelle [`)
	b.WriteString(escName)
	b.WriteString(`]" class="quick-variable" data-name="`)
	b.WriteString(escName)
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(content))
	b.WriteString(`</span>`)
	return b.String()
})

// Substitute replaces every placeholder in text using vars and the formatter.
// A nil formatter means Plain.
func Substitute(text string, vars models.VariableMap, f Formatter) string {
	if text == "" {
		return ""
	}
	if f == nil {
		f = Plain
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		value, filled := vars.Lookup(name)
		return f.Format(name, value, filled)
	})
}

// Unfilled returns the distinct placeholder names in text that vars does not fill
func Unfilled(text string, vars models.VariableMap) []string {
	var missing []string
	for _, name := range Names(text) {
		if _, ok := vars.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
