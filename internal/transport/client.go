package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTunnelHeader = "ngrok-skip-browser-warning"
	HeaderUserID        = "X-User-Id"
	HeaderRequestID     = "X-Request-Id"

	maxBodyBytes = 16 << 20
)

// Credentials is the read side of the session: every call attaches whatever
// is there, without judging it.
type Credentials interface {
	Credential() (string, bool)
	UserID() (string, bool)
}

type Options struct {
	BaseURL      string
	TunnelHeader string
	HTTP         *http.Client
	Logger       logrus.FieldLogger
}

// Client executes one HTTP call per Do and classifies the outcome. It never
// retries.
type Client struct {
	baseURL      string
	tunnelHeader string
	http         *http.Client
	creds        Credentials
	log          logrus.FieldLogger
}

func New(opts Options, creds Credentials) *Client {
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	th := strings.TrimSpace(opts.TunnelHeader)
	if th == "" {
		th = DefaultTunnelHeader
	}
	lg := opts.Logger
	if lg == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		lg = l
	}
	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		tunnelHeader: th,
		http:         hc,
		creds:        creds,
		log:          lg,
	}
}

type Request struct {
	Method  string
	Path    string
	Payload Payload

	// DiscardBody skips decoding a successful response (deletes, follow-ups).
	DiscardBody bool
}

type Response struct {
	Status int
	Header http.Header
	// Body is the decoded JSON document, or nil for empty/discarded bodies.
	Body any
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Do sends req and returns the decoded response on 2xx, or one of
// *AuthExpiredError, *ClientRejectedError, *ServerFaultError,
// *MalformedResponseError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	body, contentType, err := req.Payload.encode()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path), body)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	c.setHeaders(httpReq, contentType, reqID)

	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       req.Path,
		"encoding":   req.Payload.Encoding().String(),
		"request_id": reqID,
	})

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		entry.WithError(err).Warn("api request failed")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ServerFaultError{Err: err}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	entry = entry.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	out, err := classify(req, resp, raw, readErr)
	if err != nil {
		entry.WithField("kind", string(KindOf(err))).Warn("api request unsuccessful")
		return nil, err
	}
	entry.Debug("api request")
	return out, nil
}

func (c *Client) setHeaders(r *http.Request, contentType, reqID string) {
	r.Header.Set("Accept", "application/json")
	r.Header.Set(c.tunnelHeader, "true")
	r.Header.Set(HeaderRequestID, reqID)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if c.creds == nil {
		return
	}
	if tok, ok := c.creds.Credential(); ok {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	if uid, ok := c.creds.UserID(); ok {
		r.Header.Set(HeaderUserID, uid)
	}
}

func classify(req Request, resp *http.Response, raw []byte, readErr error) (*Response, error) {
	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized:
		return nil, &AuthExpiredError{Path: req.Path}
	case status >= 400 && status < 500:
		return nil, &ClientRejectedError{Status: status, Message: rejectionMessage(raw, status)}
	case status < 200 || status >= 300:
		return nil, &ServerFaultError{Status: status}
	}

	out := &Response{Status: status, Header: resp.Header}
	if req.DiscardBody {
		return out, nil
	}
	if readErr != nil {
		return nil, &ServerFaultError{Status: status, Err: readErr}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out, nil
	}
	ct := resp.Header.Get("Content-Type")
	if !IsJSONContentType(ct) {
		return nil, &MalformedResponseError{Status: status, ContentType: ct}
	}
	var doc any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, &MalformedResponseError{Status: status, ContentType: ct, Err: err}
	}
	out.Body = doc
	return out, nil
}

func IsJSONContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

// IsCanceled reports whether err comes from the caller's context rather than
// the backend.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
