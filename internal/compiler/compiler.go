// Package compiler flattens rendered sections into one document.
package compiler

import (
	"fmt"
	"strings"
)

// Separator sits between two section blocks
const Separator = "\n\n"

// Section is one header with its already resolved body text
type Section struct {
	Header string `json:"header"`
	Body   string `json:"body"`
}

// Options control how headers are written
type Options struct {
	// Numbered prefixes headers with "1. ", "2. " and so on
	Numbered bool
}

// header returns the header line of the i-th section (zero based)
func (o Options) header(i int, h string) string {
	if o.Numbered {
		return fmt.Sprintf("%d. %s", i+1, h)
	}
	return h
}

// Compile writes each section as its header line followed by its body and
// joins the blocks with a blank line. Empty bodies leave just the header.
func Compile(sections []Section, opts Options) string {
	blocks := make([]string, 0, len(sections))
	for i, s := range sections {
		block := opts.header(i, s.Header)
		if body := strings.TrimRight(s.Body, "\n"); body != "" {
			block += Separator + body
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, Separator)
}

// CompileMarkdown renders the sections with numbered second-level headings
func CompileMarkdown(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString(Separator)
		}
		fmt.Fprintf(&b, "## %d. %s", i+1, s.Header)
		if body := strings.TrimRight(s.Body, "\n"); body != "" {
			b.WriteString(Separator)
			// single newlines would collapse into one paragraph
			b.WriteString(strings.ReplaceAll(body, "\n", "  \n"))
		}
	}
	return b.String()
}
