// Package report renders a side-by-side comparison of embedding methods:
// one line per method showing the example word's (or sentence's) vector, its
// shape when the full vector is impractical, or the error that kept the
// method out of the run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/embedlab/internal/domain"
)

// maxInlineDims is the widest vector printed in full. Anything wider is
// summarized as a head slice plus dimension count.
const maxInlineDims = 16

type row struct {
	method string
	line   string
}

// Builder accumulates per-method rows and renders them to a writer.
// A failed method becomes an error row instead of aborting the report.
type Builder struct {
	rows []row
}

// NewBuilder creates an empty report.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddTableRow shows the vector a table assigns to one example word.
func (b *Builder) AddTableRow(method, word string, table domain.Table) {
	vec, ok := table[word]
	if !ok {
		b.rows = append(b.rows, row{method, fmt.Sprintf("word %q not in vocabulary", word)})
		return
	}
	b.rows = append(b.rows, row{method, formatVector(vec)})
}

// AddVectorRow shows a single sentence-level vector.
func (b *Builder) AddVectorRow(method string, vec []float32) {
	b.rows = append(b.rows, row{method, formatVector(vec)})
}

// AddShapeRow shows shape only, for per-token output too wide to print.
func (b *Builder) AddShapeRow(method string, tokens, dimensions int) {
	b.rows = append(b.rows, row{method, fmt.Sprintf("shape (%d, %d) per-token vectors", tokens, dimensions)})
}

// AddErrorRow marks a method that failed without dropping it from the report.
func (b *Builder) AddErrorRow(method string, err error) {
	b.rows = append(b.rows, row{method, fmt.Sprintf("unavailable: %v", err)})
}

// Render writes all rows in insertion order.
func (b *Builder) Render(w io.Writer) error {
	for _, r := range b.rows {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", r.method+":", r.line); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	return nil
}

func formatVector(vec []float32) string {
	if len(vec) == 0 {
		return "[] (0 dims)"
	}
	if len(vec) <= maxInlineDims {
		return fmt.Sprintf("%s (%d dims)", joinFloats(vec), len(vec))
	}
	return fmt.Sprintf("%s ... (%d dims)", joinFloats(vec[:4]), len(vec))
}

func joinFloats(vec []float32) string {
	parts := make([]string, len(vec))
	for i, f := range vec {
		parts[i] = fmt.Sprintf("%.4f", f)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
