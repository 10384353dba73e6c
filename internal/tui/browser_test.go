package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"catalog-admin/internal/apitest"
	"catalog-admin/internal/collection"
	"catalog-admin/internal/model"
	"catalog-admin/internal/notify"
	"catalog-admin/internal/session"
	"catalog-admin/internal/statusutil"
	"catalog-admin/internal/transport"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

type browserFixture struct {
	srv   *apitest.Server
	hooks *Hooks
}

func newBrowser(t *testing.T, kind model.Kind, pageSize int) (Model, browserFixture) {
	t.Helper()
	t.Setenv("CATADMIN_TUI_MD_STYLE", "dark")

	srv := apitest.New(t)
	sess := session.NewMemory(session.State{Token: apitest.Token, UserID: apitest.AdminID})
	hooks := NewHooks()
	cat := collection.NewCatalog(collection.Deps{
		Client:  transport.New(transport.Options{BaseURL: srv.URL}, sess),
		Session: sess,
		Notify:  hooks,
		Nav:     hooks,
	})
	m, err := New(context.Background(), Options{Catalog: cat, Kind: kind, PageSize: pageSize, Hooks: hooks})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m = drive(t, m, m.fetch())
	return m, browserFixture{srv: srv, hooks: hooks}
}

// drive runs cmd and feeds every resulting message back into the model.
// Spinner ticks are dropped so nothing sleeps.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		next, c := m.Update(msg)
		m = next.(Model)
		m = drive(t, m, c)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	wasSearching := m.searching
	next, cmd := m.Update(msg)
	m = next.(Model)
	if wasSearching || m.searching {
		// The search input only returns cursor blink timers.
		return m
	}
	return drive(t, m, cmd)
}

func ids(rows []row) string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID.String())
	}
	return strings.Join(out, ",")
}

func TestBrowserPagesSubcategoriesWithParentNames(t *testing.T) {
	m, _ := newBrowser(t, model.KindSubcategory, 2)
	if m.busy {
		t.Fatalf("expected fetch to finish")
	}
	if got := ids(m.rows); got != "3,2" {
		t.Fatalf("expected newest first 3,2; got %s", got)
	}
	if m.rows[0].Meta != "Books" || m.rows[1].Meta != "Electronics" {
		t.Fatalf("expected parent names; got %q, %q", m.rows[0].Meta, m.rows[1].Meta)
	}

	m = press(t, m, "n")
	if got := ids(m.rows); got != "1" || m.st.Page != 2 {
		t.Fatalf("expected page 2 = [1]; got %s (page %d)", got, m.st.Page)
	}
	m = press(t, m, "n")
	if m.st.Page != 2 {
		t.Fatalf("expected page clamped to 2; got %d", m.st.Page)
	}
	m = press(t, m, "s")
	if got := ids(m.rows); got != "3" {
		t.Fatalf("expected oldest-first page 2 = [3]; got %s", got)
	}
}

func TestBrowserFilterAndSearch(t *testing.T) {
	m, _ := newBrowser(t, model.KindUser, 10)
	if got := ids(m.rows); got != "7,3,2" {
		t.Fatalf("expected 7,3,2; got %s", got)
	}

	m = press(t, m, "f")
	if m.st.Status != statusutil.FilterActive {
		t.Fatalf("expected active filter; got %q", m.st.Status)
	}
	if got := ids(m.rows); got != "7,2" {
		t.Fatalf("expected active users 7,2; got %s", got)
	}
	m = press(t, m, "f")
	m = press(t, m, "f")
	if m.st.Status != statusutil.FilterAll {
		t.Fatalf("expected filter to cycle back to all; got %q", m.st.Status)
	}

	m = press(t, m, "/")
	for _, r := range "OMAR" {
		m = press(t, m, string(r))
	}
	if got := ids(m.rows); got != "3" {
		t.Fatalf("expected case-insensitive search to keep [3]; got %s", got)
	}
	m = press(t, m, "enter")
	if m.searching {
		t.Fatalf("expected enter to leave search mode")
	}
	// Keys act on the list again once search mode is left.
	m = press(t, m, "f")
	if m.st.Status != statusutil.FilterActive || len(m.rows) != 0 {
		t.Fatalf("expected no active user named omar; got %s", ids(m.rows))
	}
	if !strings.Contains(m.View(), "No users found.") {
		t.Fatalf("expected empty-state line in view")
	}
}

func TestBrowserToggleUpdatesRowAndServer(t *testing.T) {
	m, fx := newBrowser(t, model.KindCategory, 10)
	if got := ids(m.rows); got != "2,1" {
		t.Fatalf("expected 2,1; got %s", got)
	}
	if m.rows[0].Active {
		t.Fatalf("expected Books to start inactive")
	}

	m = press(t, m, "t")
	if !m.rows[0].Active {
		t.Fatalf("expected Books active after toggle")
	}
	if m.notice.Level != notify.LevelSuccess || m.notice.Text != "Category status updated to active" {
		t.Fatalf("unexpected notice: %+v", m.notice)
	}
	row, _ := fx.srv.Row("category", 2)
	if row["status"] != "active" {
		t.Fatalf("expected server status active; got %v", row["status"])
	}
}

func TestBrowserToggleFailureRollsBack(t *testing.T) {
	m, fx := newBrowser(t, model.KindCategory, 10)
	fx.srv.Fail(http.MethodPut, "/category/2", http.StatusInternalServerError, `{"message":"boom"}`)

	m = press(t, m, "t")
	if m.rows[0].Active {
		t.Fatalf("expected Books back to inactive after failed toggle")
	}
	if m.notice.Level != notify.LevelError {
		t.Fatalf("expected an error notice; got %+v", m.notice)
	}
}

func TestBrowserDeleteNeedsConfirmation(t *testing.T) {
	m, fx := newBrowser(t, model.KindCategory, 10)

	m = press(t, m, "d")
	if !strings.Contains(m.View(), "Delete category 2? (y/N)") {
		t.Fatalf("expected confirmation prompt in view")
	}
	m = press(t, m, "n")
	if fx.srv.Count(http.MethodDelete, "/category/2") != 0 {
		t.Fatalf("expected no delete request after declining")
	}

	m = press(t, m, "d")
	m = press(t, m, "y")
	if got := ids(m.rows); got != "1" {
		t.Fatalf("expected only 1 left; got %s", got)
	}
	if m.notice.Text != "Category deleted successfully" {
		t.Fatalf("unexpected notice: %+v", m.notice)
	}
}

func TestBrowserQuitsWhenSessionExpires(t *testing.T) {
	m, fx := newBrowser(t, model.KindUser, 10)
	fx.srv.Expire()

	m = press(t, m, "r")
	if got := ids(m.rows); got != "7,3,2" {
		t.Fatalf("expected rows kept on expiry; got %s", got)
	}
	if m.notice.Text != collection.MsgSessionExpired {
		t.Fatalf("expected expiry notice; got %+v", m.notice)
	}

	msg := m.waitLogin()()
	if _, ok := msg.(loginMsg); !ok {
		t.Fatalf("expected loginMsg; got %T", msg)
	}
	next, cmd := m.Update(msg)
	m = next.(Model)
	if !m.expired {
		t.Fatalf("expected expired flag")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit")
	}
}

func TestBrowserDetailPane(t *testing.T) {
	m, _ := newBrowser(t, model.KindCategory, 10)
	m = press(t, m, "j")
	m = press(t, m, "enter")
	v := m.View()
	if !strings.Contains(v, "Electronics") || !strings.Contains(v, "cat/electronics.png") {
		t.Fatalf("expected detail for Electronics in view; got:\n%s", v)
	}
	if !strings.Contains(v, "Showing 1 to 2 of 2 entries") {
		t.Fatalf("expected footer in view")
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(context.Background(), Options{Catalog: &collection.Catalog{}, Kind: "product", Hooks: NewHooks()})
	if err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestRowDelegateFitsWidth(t *testing.T) {
	d := newRowDelegate()
	r := row{ID: "12", Title: strings.Repeat("Very long name ", 10), Meta: "meta", Active: true}
	for _, w := range []int{30, 80} {
		for _, sel := range []bool{false, true} {
			got := d.Render(r, w, sel)
			if xansi.StringWidth(got) != w {
				t.Fatalf("width %d selected=%v: got %d cells", w, sel, xansi.StringWidth(got))
			}
		}
	}
	if d.Render(r, 2, false) != "" {
		t.Fatalf("expected empty render for tiny width")
	}
}
