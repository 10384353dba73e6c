// Package tui is the interactive list browser: one kind at a time, with the
// same search, filter, sort and paging as the list commands.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-admin/internal/collection"
	"catalog-admin/internal/model"
	"catalog-admin/internal/notify"
	"catalog-admin/internal/query"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrSessionExpired is returned by Run when the browser quit because the
// session expired.
var ErrSessionExpired = errors.New("session expired; run `catadmin login` to sign in again")

type Options struct {
	Catalog  *collection.Catalog
	Kind     model.Kind
	PageSize int
	// Hooks must be the Notifier and Navigator the catalog was built with.
	Hooks *Hooks
}

type fetchedMsg struct{ err error }

type doneMsg struct {
	op  string
	err error
}

type loginMsg struct{}

type Model struct {
	ctx   context.Context
	src   source
	hooks *Hooks

	st     query.State
	rows   []row
	info   pageInfo
	cursor int

	search    textinput.Model
	searching bool
	spin      spinner.Model
	busy      bool
	keys      keyMap
	help      help.Model
	delegate  rowDelegate

	confirmID  model.ID
	showDetail bool
	notice     notify.Message
	expired    bool

	width  int
	height int
}

func New(ctx context.Context, opts Options) (Model, error) {
	if opts.Catalog == nil || opts.Hooks == nil {
		return Model{}, errors.New("tui: catalog and hooks are required")
	}
	src, err := sourceFor(opts.Catalog, opts.Kind)
	if err != nil {
		return Model{}, err
	}
	st := query.DefaultState()
	if opts.PageSize > 0 {
		st.PageSize = opts.PageSize
	}

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search " + opts.Kind.Plural()
	in.CharLimit = 120

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return Model{
		ctx:      ctx,
		src:      src,
		hooks:    opts.Hooks,
		st:       st,
		search:   in,
		spin:     sp,
		keys:     defaultKeyMap(),
		help:     help.New(),
		delegate: newRowDelegate(),
		width:    80,
		height:   24,
		busy:     true,
	}, nil
}

// Run opens the browser on the terminal and blocks until it quits.
func Run(ctx context.Context, opts Options) error {
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.expired {
		return ErrSessionExpired
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetch(), m.waitLogin())
}

func (m Model) fetch() tea.Cmd {
	src, ctx := m.src, m.ctx
	return func() tea.Msg { return fetchedMsg{err: src.Fetch(ctx)} }
}

func (m Model) waitLogin() tea.Cmd {
	ch, ctx := m.hooks.login, m.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return loginMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return doneMsg{op: op, err: fn(ctx)} }
}

// refresh recomputes the visible page; the pipeline clamps the page number,
// and the clamped value becomes the new state.
func (m *Model) refresh() {
	m.rows, m.info = m.src.Page(m.st)
	m.st.Page = m.info.Page
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) takeNotices() {
	for _, n := range m.hooks.drain() {
		m.notice = n
	}
}

func (m Model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case fetchedMsg:
		m.busy = false
		m.takeNotices()
		m.refresh()
		return m, nil

	case doneMsg:
		m.busy = false
		m.takeNotices()
		m.refresh()
		return m, nil

	case loginMsg:
		m.expired = true
		m.takeNotices()
		return m, tea.Quit

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.confirmID.Valid() {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.st.Search {
		m.st.Search = v
		m.st.Page = 1
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	m.confirmID = ""
	switch msg.String() {
	case "y", "Y":
		m.busy = true
		src := m.src
		return m, tea.Batch(m.spin.Tick, m.run("delete", func(ctx context.Context) error { return src.Delete(ctx, id) }))
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, k.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, k.Filter):
		m.st.Status = m.st.Status.Next()
		m.st.Page = 1
		m.refresh()
	case key.Matches(msg, k.Sort):
		m.st.Order = m.st.Order.Toggle()
		m.refresh()
	case key.Matches(msg, k.NextPage):
		m.st.Page++
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, k.PrevPage):
		if m.st.Page > 1 {
			m.st.Page--
			m.cursor = 0
			m.refresh()
		}
	case key.Matches(msg, k.Bigger):
		m.st.PageSize = query.NextPageSize(m.st.PageSize, 1)
		m.st.Page = 1
		m.refresh()
	case key.Matches(msg, k.Smaller):
		m.st.PageSize = query.NextPageSize(m.st.PageSize, -1)
		m.st.Page = 1
		m.refresh()
	case key.Matches(msg, k.Detail):
		m.showDetail = !m.showDetail
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Refresh):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.fetch())
	case key.Matches(msg, k.Toggle):
		r, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		src := m.src
		return m, tea.Batch(m.spin.Tick, m.run("toggle", func(ctx context.Context) error { return src.Toggle(ctx, r.ID) }))
	case key.Matches(msg, k.Delete):
		r, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		m.confirmID = r.ID
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	title := styleTitle().Render(capitalize(m.src.Kind().Plural()))
	state := styleMuted().Render(fmt.Sprintf("status: %s · sort: %s · %d per page", m.st.Status, orderLabel(m.st.Order), m.st.PageSize))
	b.WriteString(title + "  " + state)
	if m.busy {
		b.WriteString("  " + m.spin.View())
	}
	b.WriteString("\n")

	if m.searching || m.st.Search != "" {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		if !m.busy {
			b.WriteString(styleMuted().Render("No " + m.src.Kind().Plural() + " found.") + "\n")
		}
	}
	for i, r := range m.rows {
		b.WriteString(m.delegate.Render(r, m.width, i == m.cursor) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleMuted().Render(fmt.Sprintf("Showing %d to %d of %d entries · page %d of %d",
		m.info.From, m.info.To, m.info.Total, m.info.Page, m.info.TotalPages)) + "\n")

	if m.showDetail {
		if r, ok := m.selected(); ok {
			if md, ok := m.src.Detail(r.ID); ok {
				b.WriteString("\n" + renderMarkdown(md, m.width-2) + "\n")
			}
		}
	}

	if m.confirmID.Valid() {
		b.WriteString("\n" + styleNotice(true).Render(fmt.Sprintf("Delete %s %s? (y/N)", m.src.Kind(), m.confirmID)) + "\n")
	} else if m.notice.Text != "" {
		b.WriteString("\n" + styleNotice(m.notice.Level == notify.LevelError).Render(m.notice.Text) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func orderLabel(o query.Order) string {
	if o == query.OrderAsc {
		return "oldest first"
	}
	return "newest first"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
