package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalog-admin/internal/apitest"
	"catalog-admin/internal/collection"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// setupConsole points the CLI at a fresh backend and config dir.
func setupConsole(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.New(t)
	t.Setenv("CATADMIN_CONFIG_DIR", t.TempDir())
	t.Setenv("CATADMIN_API_ROOT", srv.URL)
	t.Setenv("CATADMIN_LOG_OUTPUT", "none")
	t.Setenv("CATADMIN_FORMAT", "json")
	return srv
}

func login(t *testing.T) {
	t.Helper()
	if _, stderr, err := runCLI(t, []string{"login", "--email", apitest.Email, "--password", apitest.Password}); err != nil {
		t.Fatalf("login: %v\n%s", err, stderr)
	}
}

func decodeData(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("bad json: %v\n%s", err, out)
	}
	return env
}

func dataObject(t *testing.T, out []byte) map[string]any {
	t.Helper()
	data, ok := decodeData(t, out)["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object; got %s", out)
	}
	return data
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("\x89PNG fake"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestLoginWhoamiLogout(t *testing.T) {
	setupConsole(t)

	out, stderr, err := runCLI(t, []string{"login", "--email", apitest.Email, "--password", apitest.Password})
	if err != nil {
		t.Fatalf("login: %v\n%s", err, stderr)
	}
	if got := dataObject(t, out)["userId"]; got != apitest.AdminID {
		t.Fatalf("expected userId %s; got %v", apitest.AdminID, got)
	}
	if !strings.Contains(string(stderr), "Login successful") {
		t.Fatalf("expected success notice; got %q", stderr)
	}

	out, _, err = runCLI(t, []string{"whoami"})
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	who := dataObject(t, out)
	if who["loggedIn"] != true || who["email"] != apitest.Email || who["role"] != "admin" {
		t.Fatalf("unexpected whoami: %v", who)
	}

	if _, _, err := runCLI(t, []string{"logout"}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, _, _ = runCLI(t, []string{"whoami"})
	if dataObject(t, out)["loggedIn"] != false {
		t.Fatalf("expected logged out; got %s", out)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setupConsole(t)

	_, stderr, err := runCLI(t, []string{"login", "--email", apitest.Email, "--password", "nope"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsReported(err) {
		t.Fatalf("expected error to be marked reported")
	}
	if !strings.Contains(string(stderr), "email or password is incorrect") {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	srv := setupConsole(t)

	_, stderr, err := runCLI(t, []string{"users", "list"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if ExitCode(err) != ExitAuthExpired {
		t.Fatalf("expected exit code %d; got %d", ExitAuthExpired, ExitCode(err))
	}
	if !strings.Contains(string(stderr), "catadmin login") {
		t.Fatalf("expected login hint; got %q", stderr)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no requests; got %d", n)
	}
}

func TestUsersListFiltersAndClampsPage(t *testing.T) {
	setupConsole(t)
	login(t)

	out, stderr, err := runCLI(t, []string{"users", "list", "--status", "active", "--page-size", "1", "--page", "5"})
	if err != nil {
		t.Fatalf("list: %v\n%s", err, stderr)
	}
	env := decodeData(t, out)
	meta := env["meta"].(map[string]any)
	if meta["total"] != float64(2) || meta["totalPages"] != float64(2) || meta["page"] != float64(2) {
		t.Fatalf("unexpected meta: %v", meta)
	}
	data := env["data"].([]any)
	if len(data) != 1 || data[0].(map[string]any)["id"] != "2" {
		t.Fatalf("expected [user 2]; got %v", data)
	}

	out, _, err = runCLI(t, []string{"users", "list", "--search", "MONA", "--format", "table"})
	if err != nil {
		t.Fatalf("list table: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "Mona Salem") || !strings.Contains(s, "Showing 1 to 1 of 1 entries") {
		t.Fatalf("unexpected table output:\n%s", s)
	}
	if strings.Contains(s, "Omar") {
		t.Fatalf("search should have dropped Omar:\n%s", s)
	}
}

func TestListRejectsBadFlags(t *testing.T) {
	setupConsole(t)
	login(t)

	_, stderr, err := runCLI(t, []string{"categories", "list", "--order", "sideways"})
	if err == nil || !strings.Contains(string(stderr), "invalid sort order") {
		t.Fatalf("expected sort order error; got %v %q", err, stderr)
	}
}

func TestSubcategoriesListShowsParentName(t *testing.T) {
	setupConsole(t)
	login(t)

	out, _, err := runCLI(t, []string{"subcategories", "show", "3"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	sub := dataObject(t, out)
	if sub["name"] != "Novels" || sub["categoryId"] != "2" || sub["categoryName"] != "Books" {
		t.Fatalf("unexpected subcategory: %v", sub)
	}

	_, stderr, err := runCLI(t, []string{"subcategories", "show", "99"})
	if err == nil || !strings.Contains(string(stderr), "not found") {
		t.Fatalf("expected not found; got %v %q", err, stderr)
	}
}

func TestCategoriesAddUploadsImage(t *testing.T) {
	srv := setupConsole(t)
	login(t)

	img := writeImage(t, "toys.png")
	out, stderr, err := runCLI(t, []string{"categories", "add", "--name", "Toys", "--description", "Fun", "--image", img})
	if err != nil {
		t.Fatalf("add: %v\n%s", err, stderr)
	}
	cat := dataObject(t, out)
	if cat["id"] != "3" || cat["image"] != "category/toys.png" || cat["active"] != true {
		t.Fatalf("unexpected category: %v", cat)
	}
	if !strings.Contains(string(stderr), "Category added successfully") {
		t.Fatalf("expected success notice; got %q", stderr)
	}

	req, ok := srv.LastRequest(http.MethodPost, "/category")
	if !ok {
		t.Fatalf("expected POST /category")
	}
	if !strings.HasPrefix(req.ContentType, "multipart/form-data") || req.FileName != "toys.png" {
		t.Fatalf("expected multipart upload; got %q file %q", req.ContentType, req.FileName)
	}
	if req.Fields["user_id"] != apitest.AdminID || req.Fields["status"] != "active" {
		t.Fatalf("unexpected fields: %v", req.Fields)
	}
}

func TestCategoriesAddValidation(t *testing.T) {
	srv := setupConsole(t)
	login(t)

	out, _, err := runCLI(t, []string{"categories", "add", "--name", "   "})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("expected exit code %d; got %d", ExitInvalid, ExitCode(err))
	}
	errs, ok := decodeData(t, out)["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected errors object; got %s", out)
	}
	if errs["name"] != "Category name required" || errs["image"] != "Image required" {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if srv.Count(http.MethodPost, "/category") != 0 {
		t.Fatalf("invalid form must not reach the server")
	}
}

func TestSubcategoriesAddChecksParent(t *testing.T) {
	srv := setupConsole(t)
	login(t)

	img := writeImage(t, "x.png")
	out, _, err := runCLI(t, []string{"subcategories", "add", "--name", "Tablets", "--category", "99", "--image", img})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	errs := decodeData(t, out)["errors"].(map[string]any)
	if errs["categoryId"] != "Selected category does not exist" {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if srv.Count(http.MethodPost, "/subcategory") != 0 {
		t.Fatalf("invalid form must not reach the server")
	}
}

func TestSubcategoriesUpdateWithImageUsesMethodOverride(t *testing.T) {
	srv := setupConsole(t)
	login(t)

	img := writeImage(t, "laptops2.png")
	out, stderr, err := runCLI(t, []string{"subcategories", "update", "2", "--image", img})
	if err != nil {
		t.Fatalf("update: %v\n%s", err, stderr)
	}
	sub := dataObject(t, out)
	if sub["image"] != "subcategory/laptops2.png" || sub["categoryName"] != "Electronics" || sub["name"] != "Laptops" {
		t.Fatalf("unexpected subcategory: %v", sub)
	}
	req, ok := srv.LastRequest(http.MethodPost, "/subcategory/2")
	if !ok {
		t.Fatalf("expected POST override")
	}
	if req.Fields["_method"] != http.MethodPut || req.Fields["categoryId"] != "1" || req.Fields["category_id"] != "1" {
		t.Fatalf("unexpected fields: %v", req.Fields)
	}
}

func TestUsersUpdateOnlyChangesGivenFlags(t *testing.T) {
	srv := setupConsole(t)
	login(t)

	out, stderr, err := runCLI(t, []string{"users", "update", "2", "--contact", "0112-223-3345"})
	if err != nil {
		t.Fatalf("update: %v\n%s", err, stderr)
	}
	if got := dataObject(t, out)["phone"]; got != "01122233345" {
		t.Fatalf("expected digits-only phone; got %v", got)
	}
	req, _ := srv.LastRequest(http.MethodPut, "/users/2")
	if req.Fields["name"] != "Mona Salem" || req.Fields["email"] != "mona@example.com" || req.Fields["status"] != "active" {
		t.Fatalf("expected untouched fields resent; got %v", req.Fields)
	}
	if _, sent := req.Fields["password"]; sent {
		t.Fatalf("password must not be sent when unchanged")
	}
}

func TestUsersToggle(t *testing.T) {
	srv := setupConsole(t)
	login(t)

	out, stderr, err := runCLI(t, []string{"users", "toggle", "3"})
	if err != nil {
		t.Fatalf("toggle: %v\n%s", err, stderr)
	}
	if dataObject(t, out)["active"] != true {
		t.Fatalf("expected Omar active; got %s", out)
	}
	if !strings.Contains(string(stderr), "User status updated to active") {
		t.Fatalf("expected notice; got %q", stderr)
	}
	row, _ := srv.Row("users", 3)
	if row["status"] != "active" {
		t.Fatalf("expected server row active; got %v", row["status"])
	}
}

func TestUsersAddDuplicateEmailShowsServerMessage(t *testing.T) {
	setupConsole(t)
	login(t)

	_, stderr, err := runCLI(t, []string{"users", "add",
		"--name", "Copy", "--email", apitest.Email, "--contact", "01234567890",
		"--password", "longpass1", "--confirm-password", "longpass1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsReported(err) || ExitCode(err) != ExitFailure {
		t.Fatalf("expected reported failure; got %v (exit %d)", err, ExitCode(err))
	}
	if !strings.Contains(string(stderr), "The email has already been taken.") {
		t.Fatalf("expected server message; got %q", stderr)
	}
}

func TestCategoriesDelete(t *testing.T) {
	srv := setupConsole(t)
	login(t)

	out, _, err := runCLI(t, []string{"categories", "delete", "1"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if dataObject(t, out)["deleted"] != true {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, ok := srv.Row("category", 1); ok {
		t.Fatalf("expected category 1 gone")
	}
}

func TestExpiredSessionIsCleared(t *testing.T) {
	srv := setupConsole(t)
	login(t)
	srv.Expire()

	_, stderr, err := runCLI(t, []string{"categories", "list"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if ExitCode(err) != ExitAuthExpired {
		t.Fatalf("expected exit code %d; got %d (%v)", ExitAuthExpired, ExitCode(err), err)
	}
	if strings.Count(string(stderr), collection.MsgSessionExpired) != 1 {
		t.Fatalf("expected one expiry notice; got %q", stderr)
	}
	if !strings.Contains(string(stderr), "catadmin login") {
		t.Fatalf("expected login hint; got %q", stderr)
	}

	out, _, _ := runCLI(t, []string{"whoami"})
	if dataObject(t, out)["loggedIn"] != false {
		t.Fatalf("expected session cleared; got %s", out)
	}
}

func TestBrowseRejectsUnknownKind(t *testing.T) {
	setupConsole(t)

	_, _, err := runCLI(t, []string{"browse", "products"})
	if err == nil || !IsReported(err) {
		t.Fatalf("expected reported error; got %v", err)
	}
}

func TestExitCodeDefaults(t *testing.T) {
	if ExitCode(errors.New("boom")) != ExitFailure {
		t.Fatalf("expected generic failure code")
	}
	if ExitCode(reported(errNotLoggedIn)) != ExitAuthExpired {
		t.Fatalf("expected auth code through the reported wrapper")
	}
}
