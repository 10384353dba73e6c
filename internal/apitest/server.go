// Package apitest runs an in-process admin backend for tests. Each kind uses a
// different id field and list envelope, the way real deployments of the
// backend disagree with each other.
package apitest

import (
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

const (
	Token    = "test-token"
	AdminID  = "7"
	Email    = "admin@example.com"
	Password = "secret-pass"
)

// Captured is one request as the backend saw it.
type Captured struct {
	Method      string
	Path        string
	ContentType string
	Header      http.Header
	Fields      map[string]string
	FileField   string
	FileName    string
	FileData    []byte
}

type failure struct {
	status int
	body   string
}

type table struct {
	idKey string
	next  int
	rows  []map[string]any
}

type Server struct {
	URL string

	mu       sync.Mutex
	tables   map[string]*table
	requests []Captured
	fails    map[string][]failure
	expired  bool
	srv      *httptest.Server
}

// New starts the backend and seeds it with two categories, three
// subcategories and three users.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		tables: map[string]*table{
			"users":       {idKey: "id"},
			"category":    {idKey: "category_id"},
			"subcategory": {idKey: "ID"},
		},
		fails: map[string][]failure{},
	}
	s.seed()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s.register(e)

	s.srv = httptest.NewServer(e)
	s.URL = s.srv.URL + "/api"
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) seed() {
	s.insert("users", map[string]any{"name": "Admin", "email": Email, "phone": "01000000000", "role": "admin", "status": "active"})
	s.insert("users", map[string]any{"name": "Mona Salem", "email": "mona@example.com", "phone": "01122233344", "role": "customer", "is_active": 1})
	s.insert("users", map[string]any{"name": "Omar Adel", "email": "omar@example.com", "phone": "01555566677", "role": "customer", "status": "inactive"})
	s.tables["users"].rows[0]["id"] = 7
	s.tables["users"].next = 7

	s.insert("category", map[string]any{"name": "Electronics", "description": "Phones and **laptops**", "image": "cat/electronics.png", "status": 1})
	s.insert("category", map[string]any{"name": "Books", "description": "", "image": "cat/books.png", "status": "inactive"})

	s.insert("subcategory", map[string]any{"name": "Phones", "categoryId": 1, "status": "active", "image": "sub/phones.png"})
	s.insert("subcategory", map[string]any{"name": "Laptops", "categoryId": 1, "status": true, "image": "sub/laptops.png"})
	s.insert("subcategory", map[string]any{"name": "Novels", "category_id": "2", "status": 0, "image": "sub/novels.png"})
}

func (s *Server) insert(name string, row map[string]any) map[string]any {
	tb := s.tables[name]
	tb.next++
	row[tb.idKey] = tb.next
	tb.rows = append(tb.rows, row)
	return row
}

// Fail makes the next call to method+path answer status with body instead of
// being served.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.fails[key] = append(s.fails[key], failure{status: status, body: body})
}

// Expire makes every authenticated call answer 401 from now on.
func (s *Server) Expire() {
	s.mu.Lock()
	s.expired = true
	s.mu.Unlock()
}

func (s *Server) Requests() []Captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Captured(nil), s.requests...)
}

// LastRequest returns the most recent request matching method and path.
func (s *Server) LastRequest(method, path string) (Captured, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		r := s.requests[i]
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Captured{}, false
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Row returns a copy of the stored row, by the table's own id field.
func (s *Server) Row(name string, id int) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tb := s.tables[name]
	if tb == nil {
		return nil, false
	}
	if i := tb.find(strconv.Itoa(id)); i >= 0 {
		out := make(map[string]any, len(tb.rows[i]))
		for k, v := range tb.rows[i] {
			out[k] = v
		}
		return out, true
	}
	return nil, false
}

func (tb *table) find(id string) int {
	for i, row := range tb.rows {
		if rowID(row[tb.idKey]) == id {
			return i
		}
	}
	return -1
}

func rowID(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case string:
		return t
	}
	return ""
}

func (s *Server) register(e *echo.Echo) {
	e.Use(s.capture)
	e.POST("/api/adminlogin", s.login)

	api := e.Group("/api", s.auth)
	api.GET("/users", s.list("users", "users"))
	api.POST("/users", s.create("users"))
	api.PUT("/users/:id", s.update("users"))
	api.DELETE("/users/:id", s.remove("users"))

	api.GET("/category", s.list("category", ""))
	api.POST("/category", s.create("category"))
	api.PUT("/category/:id", s.update("category"))
	api.DELETE("/category/:id", s.remove("category"))

	api.GET("/subcategory", s.list("subcategory", "data"))
	api.POST("/subcategory", s.create("subcategory"))
	api.PUT("/subcategory/:id", s.update("subcategory"))
	api.POST("/subcategory/:id", s.overrideUpdate("subcategory"))
	api.DELETE("/subcategory/:id", s.remove("subcategory"))
}

// capture records the request and serves injected failures.
func (s *Server) capture(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		rc := Captured{
			Method:      req.Method,
			Path:        strings.TrimPrefix(req.URL.Path, "/api"),
			ContentType: req.Header.Get(echo.HeaderContentType),
			Header:      req.Header.Clone(),
			Fields:      map[string]string{},
		}
		fields, err := readFields(c, &rc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"message": err.Error()})
		}
		c.Set("fields", fields)
		c.Set("file", rc.FileName)

		s.mu.Lock()
		s.requests = append(s.requests, rc)
		key := rc.Method + " " + rc.Path
		var f *failure
		if q := s.fails[key]; len(q) > 0 {
			f = &q[0]
			s.fails[key] = q[1:]
		}
		s.mu.Unlock()

		if f != nil {
			if f.body == "" {
				return c.NoContent(f.status)
			}
			return c.Blob(f.status, echo.MIMEApplicationJSON, []byte(f.body))
		}
		return next(c)
	}
}

func readFields(c echo.Context, rc *Captured) (map[string]any, error) {
	req := c.Request()
	fields := map[string]any{}
	if req.Body == nil || req.Method == http.MethodGet || req.Method == http.MethodDelete {
		return fields, nil
	}
	mt, _, _ := mime.ParseMediaType(rc.ContentType)
	if mt == echo.MIMEMultipartForm {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				fields[k] = vs[0]
				rc.Fields[k] = vs[0]
			}
		}
		for k, fhs := range form.File {
			if len(fhs) == 0 {
				continue
			}
			f, err := fhs[0].Open()
			if err != nil {
				return nil, err
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, err
			}
			rc.FileField, rc.FileName, rc.FileData = k, fhs[0].Filename, data
		}
		return fields, nil
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil || len(raw) == 0 {
		return fields, err
	}
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		rc.Fields[k] = stringify(v)
	}
	return fields, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	b, _ := sonic.Marshal(v)
	return string(b)
}

func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		expired := s.expired
		s.mu.Unlock()
		if expired || c.Request().Header.Get(echo.HeaderAuthorization) != "Bearer "+Token {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthenticated."})
		}
		return next(c)
	}
}

func fieldsOf(c echo.Context) map[string]any {
	m, _ := c.Get("fields").(map[string]any)
	return m
}

func (s *Server) login(c echo.Context) error {
	f := fieldsOf(c)
	if f["email"] != Email || f["password"] != Password {
		return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"token":  Token,
		"user":   map[string]any{"id": 7, "email": Email, "role": "admin", "status": "active"},
	})
}

func (s *Server) list(name, envelope string) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		rows := make([]map[string]any, len(s.tables[name].rows))
		copy(rows, s.tables[name].rows)
		s.mu.Unlock()
		if envelope == "" {
			return c.JSON(http.StatusOK, rows)
		}
		return c.JSON(http.StatusOK, map[string]any{envelope: rows})
	}
}

var writable = map[string][]string{
	"users":       {"name", "email", "phone", "role", "status", "address", "description"},
	"category":    {"name", "description", "status", "user_id"},
	"subcategory": {"name", "categoryId", "category_id", "status", "description"},
}

func (s *Server) apply(name string, row map[string]any, f map[string]any, c echo.Context) {
	for _, k := range writable[name] {
		if v, ok := f[k]; ok {
			row[k] = v
		}
	}
	if file, _ := c.Get("file").(string); file != "" {
		row["image"] = name + "/" + file
	}
}

func (s *Server) create(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		f := fieldsOf(c)
		if strings.TrimSpace(stringify(f["name"])) == "" {
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"message": "The given data was invalid.",
				"errors":  map[string]any{"name": []any{"The name field is required."}},
			})
		}
		if name == "users" && s.emailTaken(stringify(f["email"])) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"message": "The given data was invalid.",
				"errors":  map[string]any{"email": []any{"The email has already been taken."}},
			})
		}
		s.mu.Lock()
		row := map[string]any{}
		s.apply(name, row, f, c)
		if name == "users" {
			// New accounts always start active.
			row["status"] = "active"
		}
		row = s.insert(name, row)
		out := clone(row)
		s.mu.Unlock()
		if name == "users" {
			return c.JSON(http.StatusCreated, map[string]any{"message": "User registered", "user": out})
		}
		return c.JSON(http.StatusCreated, map[string]any{"data": out})
	}
}

func (s *Server) emailTaken(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tables["users"].rows {
		if email != "" && row["email"] == email {
			return true
		}
	}
	return false
}

func (s *Server) update(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		f := fieldsOf(c)
		s.mu.Lock()
		tb := s.tables[name]
		i := tb.find(c.Param("id"))
		if i < 0 {
			s.mu.Unlock()
			return c.JSON(http.StatusNotFound, map[string]any{"message": "Not found"})
		}
		s.apply(name, tb.rows[i], f, c)
		out := clone(tb.rows[i])
		s.mu.Unlock()
		return c.JSON(http.StatusOK, out)
	}
}

func (s *Server) overrideUpdate(name string) echo.HandlerFunc {
	up := s.update(name)
	return func(c echo.Context) error {
		if stringify(fieldsOf(c)["_method"]) != http.MethodPut {
			return c.JSON(http.StatusMethodNotAllowed, map[string]any{"message": "The POST method is not supported for this route."})
		}
		return up(c)
	}
}

func (s *Server) remove(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		tb := s.tables[name]
		i := tb.find(c.Param("id"))
		if i < 0 {
			return c.JSON(http.StatusNotFound, map[string]any{"message": "Not found"})
		}
		tb.rows = append(tb.rows[:i], tb.rows[i+1:]...)
		return c.NoContent(http.StatusNoContent)
	}
}

func clone(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
