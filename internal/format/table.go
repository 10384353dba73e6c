package format

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	xansi "github.com/charmbracelet/x/ansi"
)

// MaxCellWidth bounds free-text columns such as descriptions.
const MaxCellWidth = 40

type Table struct {
	Header []string
	Rows   [][]string
	// Footer is printed under the table, e.g. "Showing 1 to 10 of 12".
	Footer string
}

type Tabler interface {
	Table() Table
}

func WriteTable(w io.Writer, t Table) error {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out := make([]string, len(r))
		for i, c := range r {
			out[i] = xansi.Truncate(c, MaxCellWidth, "…")
		}
		rows = append(rows, out)
	}
	head := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	tb := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Header...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		})
	if _, err := fmt.Fprintln(w, tb.Render()); err != nil {
		return err
	}
	if t.Footer != "" {
		_, err := fmt.Fprintln(w, t.Footer)
		return err
	}
	return nil
}
