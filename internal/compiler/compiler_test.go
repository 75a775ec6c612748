package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile_OrderAndSeparators(t *testing.T) {
	sections := []Section{{Header: "A", Body: "x"}, {Header: "B", Body: "y"}}
	doc := Compile(sections, Options{})
	assert.Equal(t, "A\n\nx\n\nB\n\ny", doc)

	ia, ix := strings.Index(doc, "A"), strings.Index(doc, "x")
	ib, iy := strings.Index(doc, "B"), strings.Index(doc, "y")
	assert.True(t, ia < ix && ix < ib && ib < iy)
}

func TestCompile_Numbered(t *testing.T) {
	sections := []Section{{Header: "Anamnese", Body: "Text"}, {Header: "Antrag"}}
	assert.Equal(t, "1. Anamnese\n\nText\n\n2. Antrag", Compile(sections, Options{Numbered: true}))
}

func TestCompile_EmptyBodyAndTrailingNewlines(t *testing.T) {
	sections := []Section{{Header: "A", Body: "x\n\n"}, {Header: "B", Body: ""}, {Header: "C", Body: "z"}}
	assert.Equal(t, "A\n\nx\n\nB\n\nC\n\nz", Compile(sections, Options{}))
	assert.Equal(t, "", Compile(nil, Options{Numbered: true}))
}

func TestCompileMarkdown(t *testing.T) {
	sections := []Section{{Header: "A", Body: "zeile 1\nzeile 2"}, {Header: "B"}}
	assert.Equal(t, "## 1. A\n\nzeile 1  \nzeile 2\n\n## 2. B", CompileMarkdown(sections))
}
