package transport

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"catalog-admin/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
)

type staticCreds struct {
	token  string
	userID string
}

func (s staticCreds) Credential() (string, bool) { return s.token, s.token != "" }
func (s staticCreds) UserID() (string, bool)     { return s.userID, s.userID != "" }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/"}, staticCreds{token: "tok-1", userID: "7"})
}

func TestDoJSONPayloadHeaders(t *testing.T) {
	var gotCT, gotAuth, gotTunnel, gotUser, gotPath string
	var gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotTunnel = r.Header.Get(DefaultTunnelHeader)
		gotUser = r.Header.Get(HeaderUserID)
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"id": 3, "name": "Shoes"}`))
	})

	resp, err := c.Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/category",
		Payload: JSON(Field{"name", "Shoes"}, Field{"status", "active"}),
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if gotPath != "/api/category" {
		t.Fatalf("expected path /api/category, got %q", gotPath)
	}
	if gotCT != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotCT)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotTunnel != "true" {
		t.Fatalf("expected tunnel-bypass header, got %q", gotTunnel)
	}
	if gotUser != "7" {
		t.Fatalf("expected user id header, got %q", gotUser)
	}
	if !strings.Contains(gotBody, `"name":"Shoes"`) {
		t.Fatalf("unexpected body: %s", gotBody)
	}
	obj, ok := resp.Body.(map[string]any)
	if !ok || obj["name"] != "Shoes" {
		t.Fatalf("unexpected decoded body: %#v", resp.Body)
	}
}

func TestDoMultipartPayloadNeverSendsJSONContentType(t *testing.T) {
	var fields = map[string]string{}
	var fileName, fileData, gotCT string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		mt, params, err := mime.ParseMediaType(gotCT)
		if err != nil || mt != "multipart/form-data" {
			http.Error(w, "not multipart", http.StatusBadRequest)
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			b, _ := io.ReadAll(p)
			if p.FileName() != "" {
				fileName = p.FileName()
				fileData = string(b)
				continue
			}
			fields[p.FormName()] = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	file := &model.Attachment{Filename: "shoe.png", ContentType: "image/png", Data: []byte("PNG")}
	p := Auto("image", file, Field{"name", "Shoes"}, Field{"status", "active"}).With(MethodOverrideField, "PUT")
	if p.Encoding() != EncodingMultipart {
		t.Fatalf("expected multipart encoding, got %s", p.Encoding())
	}
	if _, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "subcategory/4", Payload: p}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if strings.Contains(gotCT, "json") {
		t.Fatalf("multipart request must not carry a JSON content type: %q", gotCT)
	}
	if fields["name"] != "Shoes" || fields["_method"] != "PUT" || fields["status"] != "active" {
		t.Fatalf("unexpected form fields: %#v", fields)
	}
	if fileName != "shoe.png" || fileData != "PNG" {
		t.Fatalf("unexpected file part: %q %q", fileName, fileData)
	}
}

func TestAutoWithoutFileIsJSON(t *testing.T) {
	if got := Auto("image", nil, Field{"name", "x"}).Encoding(); got != EncodingJSON {
		t.Fatalf("expected json, got %s", got)
	}
	if got := Empty().With("a", 1).Encoding(); got != EncodingJSON {
		t.Fatalf("expected With on empty payload to become json, got %s", got)
	}
	p := JSON(Field{"a", 1}, Field{"b", 2}).With("a", 3)
	if v, _ := p.Value("a"); v != 3 {
		t.Fatalf("expected replaced value 3, got %v", v)
	}
	if len(p.Fields()) != 2 {
		t.Fatalf("expected 2 fields after replace, got %d", len(p.Fields()))
	}
}

func TestDoClassifiesOutcomes(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		ct       string
		body     string
		discard  bool
		wantKind ErrorKind
		wantMsg  string
	}{
		{name: "ok json", status: 200, ct: "application/json", body: `[]`, wantKind: KindNone},
		{name: "ok empty", status: 204, wantKind: KindNone},
		{name: "ok html", status: 200, ct: "text/html", body: "<html>ngrok</html>", wantKind: KindMalformedResponse},
		{name: "ok html discarded", status: 200, ct: "text/html", body: "<html/>", discard: true, wantKind: KindNone},
		{name: "ok bad json", status: 200, ct: "application/json", body: `{"a":`, wantKind: KindMalformedResponse},
		{name: "unauthorized", status: 401, ct: "application/json", body: `{"message":"expired"}`, wantKind: KindAuthExpired},
		{name: "message", status: 422, ct: "application/json", body: `{"message":"Name taken"}`, wantKind: KindClientRejected, wantMsg: "Name taken"},
		{name: "error field", status: 400, ct: "application/json", body: `{"error":"Bad input"}`, wantKind: KindClientRejected, wantMsg: "Bad input"},
		{name: "errors array", status: 422, ct: "application/json", body: `{"message":"x","errors":[{"msg":"Email invalid"},"Phone short"]}`, wantKind: KindClientRejected, wantMsg: "Email invalid, Phone short"},
		{name: "errors map", status: 422, ct: "application/json", body: `{"errors":{"name":["Name required"],"email":["Email taken"]}}`, wantKind: KindClientRejected, wantMsg: "Email taken, Name required"},
		{name: "no message", status: 404, wantKind: KindClientRejected, wantMsg: "request rejected (404)"},
		{name: "server", status: 500, ct: "application/json", body: `{"message":"boom"}`, wantKind: KindServerFault},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.ct != "" {
					w.Header().Set("Content-Type", tc.ct)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Do(context.Background(), Request{Path: "/users", DiscardBody: tc.discard})
			if got := KindOf(err); got != tc.wantKind {
				t.Fatalf("expected kind %q, got %q (err=%v)", tc.wantKind, got, err)
			}
			if tc.wantMsg != "" {
				var ce *ClientRejectedError
				if !errors.As(err, &ce) {
					t.Fatalf("expected ClientRejectedError, got %T", err)
				}
				if ce.Message != tc.wantMsg {
					t.Fatalf("expected message %q, got %q", tc.wantMsg, ce.Message)
				}
			}
		})
	}
}

func TestDoUnreachableIsServerFault(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url}, nil)
	_, err := c.Do(context.Background(), Request{Path: "/users"})
	if KindOf(err) != KindServerFault {
		t.Fatalf("expected server fault, got %v", err)
	}
}

func TestDoWithoutCredentialOmitsAuthorization(t *testing.T) {
	var sawAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	})
	c.creds = staticCreds{}
	if _, err := c.Do(context.Background(), Request{Path: "/users"}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if sawAuth {
		t.Fatalf("expected no Authorization header without a credential")
	}
}

func TestRejectionMessageTruncatesPlainTextOnRuneBoundary(t *testing.T) {
	raw := []byte(strings.Repeat("é", 300))
	msg := rejectionMessage(raw, http.StatusBadRequest)
	if !utf8.ValidString(msg) {
		t.Fatalf("expected valid UTF-8; got %q", msg)
	}
	if w := xansi.StringWidth(msg); w != maxPlainMessage {
		t.Fatalf("expected %d cells; got %d", maxPlainMessage, w)
	}
	if !strings.HasSuffix(msg, "…") {
		t.Fatalf("expected ellipsis on truncated message; got %q", msg)
	}
	if got := rejectionMessage([]byte("  Bad gateway  "), http.StatusBadRequest); got != "Bad gateway" {
		t.Fatalf("expected short message untouched; got %q", got)
	}
}
