// Package commentary holds the fixed prose shown next to each computed view.
package commentary

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// ErrIncomplete is returned when a tracked index lacks one of its blocks.
var ErrIncomplete = errors.New("commentary incomplete")

// Bundle is the four prose blocks of one tracked index.
type Bundle struct {
	Deviation     string `yaml:"deviation" json:"deviation"`
	TrackingError string `yaml:"tracking_error" json:"tracking_error"`
	Regression    string `yaml:"regression" json:"regression"`
	Conclusion    string `yaml:"conclusion" json:"conclusion"`
}

// Comparison is the prose around the official vs custom index chart.
type Comparison struct {
	Title      string `yaml:"title" json:"title"`
	ChartTitle string `yaml:"chart_title" json:"chart_title"`
	Commentary string `yaml:"commentary" json:"commentary"`
}

// RegressionIntro explains the regression before the per-index summaries.
type RegressionIntro struct {
	Title      string   `yaml:"title" json:"title"`
	Paragraphs []string `yaml:"paragraphs" json:"paragraphs"`
}

type document struct {
	Title        string            `yaml:"title"`
	Introduction []string          `yaml:"introduction"`
	Comparison   Comparison        `yaml:"comparison"`
	Regression   RegressionIntro   `yaml:"regression"`
	Indices      map[string]Bundle `yaml:"indices"`
}

// Catalog is the validated, read-only commentary lookup table.
type Catalog struct {
	title        string
	introduction []string
	comparison   Comparison
	regression   RegressionIntro
	bundles      [domain.TrackedIndexCount]Bundle
}

// Default loads the commentary compiled into the binary.
func Default() (*Catalog, error) {
	return LoadFS(embedded.Files, embedded.CommentaryFile)
}

// LoadFS reads a commentary document from fsys.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read commentary %s: %w", name, err)
	}
	return Parse(data)
}

// LoadFile reads a commentary document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commentary %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a commentary document. Every tracked index
// must have all four blocks and no other index may be listed.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode commentary: %w", err)
	}

	c := &Catalog{
		title:        strings.TrimSpace(doc.Title),
		introduction: normalizeAll(doc.Introduction),
		comparison: Comparison{
			Title:      strings.TrimSpace(doc.Comparison.Title),
			ChartTitle: strings.TrimSpace(doc.Comparison.ChartTitle),
			Commentary: Normalize(doc.Comparison.Commentary),
		},
		regression: RegressionIntro{
			Title:      strings.TrimSpace(doc.Regression.Title),
			Paragraphs: normalizeAll(doc.Regression.Paragraphs),
		},
	}

	for name := range doc.Indices {
		if _, ok := domain.LookupTrackedIndex(name); !ok {
			return nil, fmt.Errorf("commentary lists unknown index %q", name)
		}
	}

	for _, idx := range domain.TrackedIndices() {
		raw, ok := doc.Indices[idx.String()]
		if !ok {
			return nil, fmt.Errorf("%w: no blocks for %s", ErrIncomplete, idx)
		}
		b := Bundle{
			Deviation:     Normalize(raw.Deviation),
			TrackingError: Normalize(raw.TrackingError),
			Regression:    Normalize(raw.Regression),
			Conclusion:    Normalize(raw.Conclusion),
		}
		if missing := b.missing(); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s has no %s", ErrIncomplete, idx, strings.Join(missing, ", "))
		}
		c.bundles[idx.Ordinal()] = b
	}

	return c, nil
}

func (b Bundle) missing() []string {
	var out []string
	if b.Deviation == "" {
		out = append(out, "deviation")
	}
	if b.TrackingError == "" {
		out = append(out, "tracking_error")
	}
	if b.Regression == "" {
		out = append(out, "regression")
	}
	if b.Conclusion == "" {
		out = append(out, "conclusion")
	}
	return out
}

// For returns the blocks of idx.
func (c *Catalog) For(idx domain.TrackedIndex) Bundle {
	return c.bundles[idx.Ordinal()]
}

// Title is the page title.
func (c *Catalog) Title() string {
	return c.title
}

// Introduction returns the opening paragraphs.
func (c *Catalog) Introduction() []string {
	out := make([]string, len(c.introduction))
	copy(out, c.introduction)
	return out
}

// Comparison returns the level comparison prose.
func (c *Catalog) Comparison() Comparison {
	return c.comparison
}

// RegressionIntro returns the regression explainer.
func (c *Catalog) RegressionIntro() RegressionIntro {
	r := c.regression
	r.Paragraphs = append([]string(nil), c.regression.Paragraphs...)
	return r
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Normalize strips the common leading indentation, trailing spaces on every
// line and blank lines at both ends.
func Normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	indent := -1
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		lines[i] = line
		if line == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}

	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
