package exporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"handoff/internal/domain"
	"handoff/internal/ports"
)

// ColumnWidths sets the display width of each table column.
type ColumnWidths struct {
	ID     int `yaml:"id"`
	Kind   int `yaml:"kind"`
	Status int `yaml:"status"`
	Detail int `yaml:"detail"`
}

// DefaultColumnWidths fit an 80 column terminal.
var DefaultColumnWidths = ColumnWidths{ID: 36, Kind: 14, Status: 9, Detail: 12}

// TableExporter prints operation records as a fixed-width text table.
type TableExporter struct {
	w      io.Writer
	widths ColumnWidths
}

// NewTableExporter creates an exporter writing to w. Zero widths fall back to defaults.
func NewTableExporter(w io.Writer, widths ColumnWidths) ports.Exporter {
	if widths.ID <= 0 {
		widths.ID = DefaultColumnWidths.ID
	}
	if widths.Kind <= 0 {
		widths.Kind = DefaultColumnWidths.Kind
	}
	if widths.Status <= 0 {
		widths.Status = DefaultColumnWidths.Status
	}
	if widths.Detail <= 0 {
		widths.Detail = DefaultColumnWidths.Detail
	}
	return &TableExporter{w: w, widths: widths}
}

// Export writes one row per record; long cells wrap onto continuation lines.
func (e *TableExporter) Export(records []domain.OperationRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(e.w, "No operations.")
		return err
	}

	widths := []int{e.widths.ID, e.widths.Kind, e.widths.Status, e.widths.Detail}
	if err := e.writeRow(widths, []string{"ID", "OPERATION", "STATUS", "DETAIL"}); err != nil {
		return err
	}
	for _, rec := range records {
		cells := []string{
			rec.ID,
			string(rec.Platform) + "/" + string(rec.Kind),
			string(rec.Status),
			detail(rec),
		}
		if err := e.writeRow(widths, cells); err != nil {
			return err
		}
	}
	return nil
}

func (e *TableExporter) writeRow(widths []int, cells []string) error {
	wrapped := make([][]string, len(cells))
	lines := 0
	for i, cell := range cells {
		wrapped[i] = wrapString(strings.ReplaceAll(cell, "\n", " "), widths[i])
		lines = max(lines, len(wrapped[i]))
	}

	var sb strings.Builder
	for l := 0; l < lines; l++ {
		for i := range cells {
			part := ""
			if l < len(wrapped[i]) {
				part = wrapped[i][l]
			}
			sb.WriteString("| ")
			sb.WriteString(runewidth.FillRight(part, widths[i]))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}
	_, err := io.WriteString(e.w, sb.String())
	return err
}

// detail is the failure reason, or the oauth parameter names on success.
func detail(rec domain.OperationRecord) string {
	if rec.Reason != "" {
		return rec.Reason
	}
	if len(rec.Parameters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(rec.Parameters))
	for k := range rec.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, " ")
}

// wrapString breaks s into lines no wider than width, preferring word
// boundaries and splitting words that are wider than a whole line.
func wrapString(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
	}

	for _, word := range strings.Fields(s) {
		if runewidth.StringWidth(word) > width {
			flush()
			for word != "" {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					// A single rune wider than the column.
					head = string([]rune(word)[:1])
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			continue
		}

		lineWidth := runewidth.StringWidth(current.String())
		if lineWidth > 0 && lineWidth+1+runewidth.StringWidth(word) > width {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	flush()

	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
