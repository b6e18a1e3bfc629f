// Package templates loads operator-maintained bank statement layouts.
// A template names the anchor phrases that identify an issuer and the
// x-coordinate ranges of the date, description, and amount columns, so
// the template extractor can read known layouts without guessing.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Default column ranges, in PDF points from the left page edge. They fit
// the common single-column statement: dates on the left, description in
// the middle, amounts flush right.
var (
	defaultDateRange        = ColumnRange{0, 120}
	defaultDescriptionRange = ColumnRange{120, 380}
	defaultAmountRange      = ColumnRange{380, 9999}
)

// ColumnRange is an inclusive [min, max] x-coordinate span.
type ColumnRange [2]float64

// Contains reports whether x falls inside the range.
func (r ColumnRange) Contains(x float64) bool {
	return x >= r[0] && x <= r[1]
}

func (r ColumnRange) empty() bool {
	return r[0] == 0 && r[1] == 0
}

// Columns maps the three transaction fields to page x-ranges.
type Columns struct {
	Date        ColumnRange `yaml:"date"`
	Description ColumnRange `yaml:"description"`
	Amount      ColumnRange `yaml:"amount"`
}

// Template describes one issuer layout.
type Template struct {
	// Name identifies the template in listings and provenance output.
	Name string `yaml:"name"`
	// Anchors are phrases that must all appear near the top of a document
	// for the template to apply, matched case-insensitively.
	Anchors []string `yaml:"anchors"`
	// Columns holds the field x-ranges. Unset ranges get defaults.
	Columns Columns `yaml:"columns"`
	// DateFormat optionally overrides date parsing with a Go time layout.
	DateFormat string `yaml:"date_format"`
}

// Matches reports whether every anchor appears in the sample text.
// Templates without anchors never match; they would shadow every document.
func (t Template) Matches(sample string) bool {
	if len(t.Anchors) == 0 {
		return false
	}
	lower := strings.ToLower(sample)
	for _, a := range t.Anchors {
		if !strings.Contains(lower, strings.ToLower(a)) {
			return false
		}
	}
	return true
}

// Validate checks a template for the problems that make one unusable.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return eris.New("templates: template has no name")
	}
	if len(t.Anchors) == 0 {
		return eris.Errorf("templates: %s: at least one anchor is required", t.Name)
	}
	for _, a := range t.Anchors {
		if strings.TrimSpace(a) == "" {
			return eris.Errorf("templates: %s: blank anchor", t.Name)
		}
	}
	for field, r := range map[string]ColumnRange{
		"date":        t.Columns.Date,
		"description": t.Columns.Description,
		"amount":      t.Columns.Amount,
	} {
		if r.empty() {
			continue
		}
		if r[0] > r[1] {
			return eris.Errorf("templates: %s: %s column range is inverted", t.Name, field)
		}
		if r[0] < 0 {
			return eris.Errorf("templates: %s: %s column range is negative", t.Name, field)
		}
	}
	return nil
}

// withDefaults fills unset column ranges.
func (t Template) withDefaults() Template {
	if t.Columns.Date.empty() {
		t.Columns.Date = defaultDateRange
	}
	if t.Columns.Description.empty() {
		t.Columns.Description = defaultDescriptionRange
	}
	if t.Columns.Amount.empty() {
		t.Columns.Amount = defaultAmountRange
	}
	return t
}

// Parse decodes and validates a single template document.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "templates: decode yaml")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t = t.withDefaults()
	return &t, nil
}

// Set is an immutable, ordered collection of templates. Match order is
// the lexical filename order from Load, so operators can prefix files
// with numbers to control precedence.
type Set struct {
	templates []Template
}

// NewSet builds a Set from already-validated templates, preserving order.
func NewSet(tpls ...Template) *Set {
	out := make([]Template, 0, len(tpls))
	for _, t := range tpls {
		out = append(out, t.withDefaults())
	}
	return &Set{templates: out}
}

// Load reads every *.yaml and *.yml file in dir. Files that fail to
// decode or validate are skipped with a warning rather than failing the
// whole set; one broken template should not take down parsing. A missing
// or empty dir yields an empty set.
func Load(dir string) (*Set, error) {
	if dir == "" {
		return &Set{}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Set{}, nil
		}
		return nil, eris.Wrapf(err, "templates: read dir %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	set := &Set{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			zap.L().Warn("skipping unreadable template", zap.String("path", path), zap.Error(err))
			continue
		}
		t, err := Parse(data)
		if err != nil {
			zap.L().Warn("skipping invalid template", zap.String("path", path), zap.Error(err))
			continue
		}
		set.templates = append(set.templates, *t)
	}
	return set, nil
}

// Match returns the first template whose anchors all appear in the
// sample text, or nil when none applies.
func (s *Set) Match(sample string) *Template {
	if s == nil {
		return nil
	}
	for i := range s.templates {
		if s.templates[i].Matches(sample) {
			t := s.templates[i]
			return &t
		}
	}
	return nil
}

// All returns a copy of the templates in match order.
func (s *Set) All() []Template {
	if s == nil {
		return nil
	}
	out := make([]Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// Len reports how many templates are loaded.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.templates)
}

// String summarizes the set for log output.
func (s *Set) String() string {
	return fmt.Sprintf("templates.Set(%d)", s.Len())
}
