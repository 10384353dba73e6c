package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-admin/internal/transport"
)

func TestMemoryLifecycle(t *testing.T) {
	m := NewMemory(State{})
	if _, ok := m.Credential(); ok {
		t.Fatalf("expected no credential initially")
	}
	if err := m.Init(State{Token: " tok ", UserID: "9", Email: "a@b.c"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if tok, ok := m.Credential(); !ok || tok != "tok" {
		t.Fatalf("expected trimmed credential, got %q %v", tok, ok)
	}
	if id, ok := m.UserID(); !ok || id != "9" {
		t.Fatalf("expected user id 9, got %q", id)
	}
	_ = m.Clear()
	if m.Current().LoggedIn() {
		t.Fatalf("expected cleared session")
	}
}

func TestProfilePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	p, err := OpenProfile(ctx, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := p.Init(State{Token: "tok-1", UserID: "12", Email: "root@example.com", Role: "admin"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	_ = p.Close()

	p2, err := OpenProfile(ctx, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()

	got := p2.Current()
	if got.Token != "tok-1" || got.UserID != "12" || got.Email != "root@example.com" || got.Role != "admin" {
		t.Fatalf("unexpected persisted state: %+v", got)
	}

	if err := p2.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := p2.Credential(); ok {
		t.Fatalf("expected no credential after clear")
	}
	if _, ok := p2.UserID(); ok {
		t.Fatalf("expected no user id after clear")
	}
}

func TestProfileLegacyTokenKey(t *testing.T) {
	p, err := OpenProfile(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()
	if _, err := p.db.Exec(`INSERT INTO profile(k, v) VALUES('token', 'legacy')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if tok, ok := p.Credential(); !ok || tok != "legacy" {
		t.Fatalf("expected legacy token fallback, got %q", tok)
	}
}

func loginServer(t *testing.T, status int, body string) *transport.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != LoginPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return transport.New(transport.Options{BaseURL: srv.URL}, nil)
}

func TestLogin(t *testing.T) {
	c := loginServer(t, 200, `{"token":"abc","user":{"_id":"u-5","role":"admin","status":"active"}}`)
	st := NewMemory(State{})
	got, err := Login(context.Background(), c, st, " admin@example.com ", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.UserID != "u-5" || got.Role != "admin" || got.Email != "admin@example.com" {
		t.Fatalf("unexpected state: %+v", got)
	}
	if tok, _ := st.Credential(); tok != "abc" {
		t.Fatalf("expected session initialized, got %q", tok)
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	c := loginServer(t, 200, `{"token":"abc","user":{"id":3,"status":"inactive"}}`)
	st := NewMemory(State{})
	if _, err := Login(context.Background(), c, st, "a@b.c", "x"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected disabled account error, got %v", err)
	}
	if st.Current().LoggedIn() {
		t.Fatalf("disabled login must not initialize the session")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	c := loginServer(t, 401, `{"message":"nope"}`)
	_, err := Login(context.Background(), c, NewMemory(State{}), "a@b.c", "x")
	if transport.KindOf(err) != transport.KindClientRejected {
		t.Fatalf("expected client rejection for bad credentials, got %v", err)
	}
}
