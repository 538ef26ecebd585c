package browsercompare

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format selects how tables are rendered.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, Markdown:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q, want %q or %q", s, Text, Markdown)
}

const (
	covered   = "yes"
	uncovered = "-"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func render(t table.Writer, format Format) error {
	switch format {
	case Text:
		t.Render()
	case Markdown:
		t.RenderMarkdown()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// RenderTable writes the scenario coverage matrix of libs to w.
func RenderTable(w io.Writer, libs []Library, format Format) error {
	t := newTable(w)
	header := table.Row{"Scenario"}
	footer := table.Row{"Covered"}
	for _, l := range libs {
		header = append(header, l.Name)
		footer = append(footer, fmt.Sprintf("%d/%d", l.Coverage(), len(Scenarios())))
	}
	t.AppendHeader(header)
	for _, s := range Scenarios() {
		row := table.Row{string(s)}
		for _, l := range libs {
			if l.Covers(s) {
				row = append(row, covered)
			} else {
				row = append(row, uncovered)
			}
		}
		t.AppendRow(row)
	}
	t.AppendFooter(footer)

	var configs []table.ColumnConfig
	for i := range libs {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 2,
			Align:       text.AlignCenter,
			AlignHeader: text.AlignCenter,
			AlignFooter: text.AlignCenter,
		})
	}
	t.SetColumnConfigs(configs)
	return render(t, format)
}

// RenderNotes writes the observations recorded for l to w, one row per
// scenario.
func RenderNotes(w io.Writer, l Library, format Format) error {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s (%s, %s)", l.Name, l.ImportPath, l.Browser))
	t.AppendHeader(table.Row{"Scenario", "Covered", "Notes"})
	sep := "\n"
	if format == Markdown {
		sep = "<br>"
	}
	for _, s := range Scenarios() {
		c := uncovered
		if l.Covers(s) {
			c = covered
		}
		t.AppendRow(table.Row{string(s), c, strings.Join(l.Note(s), sep)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
	})
	return render(t, format)
}
