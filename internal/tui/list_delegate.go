package tui

import (
	"strings"

	"catalog-admin/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowDelegate renders one list row per line, padded or cut to the width.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

const (
	idColW     = 6
	badgeColW  = 10
	titleShare = 2 // title gets 2/3 of the free width, meta the rest
)

func (d rowDelegate) Render(r row, width int, selected bool) string {
	if width < 4 {
		return ""
	}
	free := width - idColW - badgeColW - 2
	if free < 2 {
		free = 2
	}
	titleW := free * titleShare / 3
	metaW := free - titleW

	line := fit(r.ID.String(), idColW) + " " +
		fit(r.Title, titleW) + " " +
		fit(r.Meta, metaW) +
		styleBadge(r.Active).Render(fit(statusutil.Label(r.Active), badgeColW))
	line = fit(line, width)

	if selected {
		return d.selected.Render(line)
	}
	return d.normal.Render(line)
}

// fit pads or cuts s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	sw := xansi.StringWidth(s)
	switch {
	case sw < w:
		return s + strings.Repeat(" ", w-sw)
	case sw > w:
		if w == 1 {
			return "…"
		}
		return xansi.Truncate(s, w, "…")
	}
	return s
}
