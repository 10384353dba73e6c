package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

type rendererKey struct {
	style string
	width int
}

// detailRenderers caches one glamour renderer per style and wrap width.
// WithAutoStyle is not used: it queries the terminal and can block.
var detailRenderers = struct {
	sync.Mutex
	m map[rendererKey]*glamour.TermRenderer
}{m: map[rendererKey]*glamour.TermRenderer{}}

func detailRenderer(k rendererKey) (*glamour.TermRenderer, error) {
	detailRenderers.Lock()
	defer detailRenderers.Unlock()
	if r, ok := detailRenderers.m[k]; ok {
		return r, nil
	}
	cfg := markdownStyleConfig(k.style)
	var noMargin uint
	cfg.Document.Margin = &noMargin
	r, err := glamour.NewTermRenderer(glamour.WithStyles(cfg), glamour.WithWordWrap(k.width))
	if err != nil {
		return nil, err
	}
	detailRenderers.m[k] = r
	return r, nil
}

// renderMarkdown renders the detail pane, falling back to the raw text.
func renderMarkdown(src string, width int) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	r, err := detailRenderer(rendererKey{style: markdownStyle(), width: max(width, 10)})
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(style string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if style == "light" {
		cfg = styles.LightStyleConfig
	}
	heading := mdColor(colorSurfaceFg, style)
	cfg.H1.Color = heading
	cfg.H1.BackgroundColor = nil
	cfg.Link.Color = mdColor(colorAccent, style)
	cfg.Text.Color = mdColor(colorSurfaceFg, style)
	cfg.Code.Color = mdColor(colorSurfaceFg, style)
	if cfg.CodeBlock.BackgroundColor == nil {
		cfg.CodeBlock.BackgroundColor = mdColor(colorControlBg, style)
	}
	return cfg
}

// markdownStyle picks light or dark: CATADMIN_TUI_MD_STYLE, then COLORFGBG,
// then lipgloss background detection.
func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CATADMIN_TUI_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	// COLORFGBG is "fg;bg"; xterm palette 0-6 are dark backgrounds.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil && bg >= 0 {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func mdColor(c lipgloss.AdaptiveColor, style string) *string {
	v := c.Dark
	if style == "light" {
		v = c.Light
	}
	return &v
}
