package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/seitarof/gen-pad/internal/verify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	paddingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)

	mismatchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)
)

// Reporter prints computed layouts.
type Reporter interface {
	Report(source string, layouts []verify.Layout) error
}

type reporterImpl struct {
	w      io.Writer
	styled bool
}

// NewReporter returns a reporter writing to w. Tables are styled only when w
// is a terminal.
func NewReporter(w io.Writer) Reporter {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &reporterImpl{w: w, styled: styled}
}

func (r *reporterImpl) Report(source string, layouts []verify.Layout) error {
	for _, l := range layouts {
		title := fmt.Sprintf("%s: %s", source, l.Name)
		if l.Generic {
			title += " (generic, sizes depend on type arguments)"
		} else {
			title += fmt.Sprintf(" (size %#x)", l.Size)
		}
		if r.styled {
			title = titleStyle.Render(title)
		}
		if _, err := fmt.Fprintln(r.w, title); err != nil {
			return err
		}
		if l.Generic {
			continue
		}
		if _, err := fmt.Fprintln(r.w, r.table(l).Render()); err != nil {
			return err
		}
	}
	return nil
}

func (r *reporterImpl) table(l verify.Layout) *table.Table {
	rows := make([][]string, 0, len(l.Fields))
	for _, f := range l.Fields {
		declared := ""
		if f.Declared >= 0 {
			declared = fmt.Sprintf("%#x", f.Declared)
		}
		rows = append(rows, []string{
			f.Name,
			f.Type,
			fmt.Sprintf("%#x", f.Offset),
			fmt.Sprintf("%#x", f.Size),
			fmt.Sprintf("%#x", f.Gap),
			declared,
		})
	}

	t := table.New().
		Headers("FIELD", "TYPE", "OFFSET", "SIZE", "GAP", "DECLARED").
		Rows(rows...)
	if !r.styled {
		return t.Border(lipgloss.ASCIIBorder())
	}
	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(l.Fields) {
				return cellStyle
			}
			f := l.Fields[row]
			switch {
			case f.Declared >= 0 && f.Declared != f.Offset:
				return mismatchStyle
			case f.Padding:
				return paddingStyle
			}
			return cellStyle
		})
}
