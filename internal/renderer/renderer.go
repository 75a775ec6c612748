package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dpshade/quick-hb/internal/compiler"
	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/selector"
	"github.com/dpshade/quick-hb/internal/spintax"
	"github.com/dpshade/quick-hb/internal/variables"
)

// Renderer turns records into text for one gender and one set of variables.
// Every call resolves spintax first and substitutes placeholders afterwards.
type Renderer struct {
	Records   models.Collection
	Gender    models.Gender
	Variables models.VariableMap
	Policy    selector.Policy
	Rand      spintax.Source      // nil uses the global source
	Formatter variables.Formatter // nil uses variables.Plain
}

// NewRenderer creates a renderer with the plain formatter and global randomness
func NewRenderer(records models.Collection, gender models.Gender, vars models.VariableMap) *Renderer {
	return &Renderer{
		Records:   records,
		Gender:    gender,
		Variables: vars,
	}
}

func (r *Renderer) substitute(text string) string {
	return variables.Substitute(text, r.Variables, r.Formatter)
}

// Fragment resolves one random variant of a record
func (r *Renderer) Fragment(rec models.Record) string {
	return r.substitute(spintax.Spin(rec.Template(r.Gender), r.Rand))
}

// Text resolves an ad-hoc template the same way a record is resolved
func (r *Renderer) Text(template string) string {
	return r.substitute(spintax.Spin(template, r.Rand))
}

// Variants lists the resolutions of a record in enumeration order, at most
// limit of them (limit <= 0 means all)
func (r *Renderer) Variants(rec models.Record, limit int) []string {
	out := spintax.Take(rec.Template(r.Gender), limit)
	for i, text := range out {
		out[i] = r.substitute(text)
	}
	return out
}

// Candidates returns the records that may appear under a section header
func (r *Renderer) Candidates(header string) models.Collection {
	return selector.SelectBySection(r.Records, header, r.Policy)
}

// RenderSection resolves the body of one section. Picked ids are rendered in
// pick order and unknown ids are skipped. Without picks every candidate of the
// section contributes one fragment.
func (r *Renderer) RenderSection(header string, ids []string) string {
	body, _ := r.renderSection(header, ids)
	return body
}

// renderSection also returns the spun fragments before substitution
func (r *Renderer) renderSection(header string, ids []string) (string, []string) {
	var recs models.Collection
	if len(ids) > 0 {
		pool := r.Records
		if len(pool) == 0 {
			pool = selector.DefaultCollection()
		}
		for _, id := range ids {
			if rec, ok := pool.ByID(id); ok {
				recs = append(recs, rec)
			}
		}
	} else {
		recs = r.Candidates(header)
	}

	spun := make([]string, 0, len(recs))
	fragments := make([]string, 0, len(recs))
	for _, rec := range recs {
		text := spintax.Spin(rec.Template(r.Gender), r.Rand)
		if text == "" {
			continue
		}
		spun = append(spun, text)
		fragments = append(fragments, r.substitute(text))
	}
	return strings.Join(fragments, "\n"), spun
}

// RenderDocument resolves every section of the structure. A nil draft renders
// every section from its candidates.
func (r *Renderer) RenderDocument(structure models.Structure, draft *models.Draft) []compiler.Section {
	sections, _ := r.renderDocument(structure, draft)
	return sections
}

// renderDocument resolves the sections and collects the placeholders the
// variables leave unfilled, in order of first appearance
func (r *Renderer) renderDocument(structure models.Structure, draft *models.Draft) ([]compiler.Section, []string) {
	structure = structure.Normalize()
	sections := make([]compiler.Section, 0, len(structure))
	var unfilled []string
	seen := make(map[string]bool)
	for _, header := range structure {
		body, spun := r.renderSection(header, draft.PicksFor(header))
		sections = append(sections, compiler.Section{Header: header, Body: body})
		for _, text := range spun {
			for _, name := range variables.Unfilled(text, r.Variables) {
				if !seen[name] {
					seen[name] = true
					unfilled = append(unfilled, name)
				}
			}
		}
	}
	return sections, unfilled
}

// RenderText renders the document as plain text
func (r *Renderer) RenderText(structure models.Structure, draft *models.Draft, opts compiler.Options) string {
	return compiler.Compile(r.RenderDocument(structure, draft), opts)
}

// RenderMarkdown renders the document with markdown headings
func (r *Renderer) RenderMarkdown(structure models.Structure, draft *models.Draft) string {
	return compiler.CompileMarkdown(r.RenderDocument(structure, draft))
}

// Document is the JSON shape of a rendered document
type Document struct {
	Gender   models.Gender      `json:"gender"`
	Sections []compiler.Section `json:"sections"`
	Text     string             `json:"text"`
	Unfilled []string           `json:"unfilled,omitempty"`
}

// BuildDocument renders the document once and returns all views of it
func (r *Renderer) BuildDocument(structure models.Structure, draft *models.Draft, opts compiler.Options) Document {
	sections, unfilled := r.renderDocument(structure, draft)
	return Document{
		Gender:   r.Gender,
		Sections: sections,
		Text:     compiler.Compile(sections, opts),
		Unfilled: unfilled,
	}
}

// RenderJSON renders the document as indented JSON
func (r *Renderer) RenderJSON(structure models.Structure, draft *models.Draft, opts compiler.Options) (string, error) {
	doc := r.BuildDocument(structure, draft, opts)

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	return string(jsonBytes), nil
}
