package transport

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	xansi "github.com/charmbracelet/x/ansi"
)

// maxPlainMessage caps, in terminal cells, a message taken from a non-JSON
// error body.
const maxPlainMessage = 200

// ErrorKind names an outcome class of a failed operation.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindAuthExpired       ErrorKind = "AuthExpired"
	KindValidationFailed  ErrorKind = "ValidationFailed"
	KindClientRejected    ErrorKind = "ClientRejected"
	KindServerFault       ErrorKind = "ServerFault"
	KindMalformedResponse ErrorKind = "MalformedResponse"
)

// AuthExpiredError is a 401 from the backend.
type AuthExpiredError struct {
	Path string
}

func (e *AuthExpiredError) Error() string {
	return "session expired: please log in again"
}

// ClientRejectedError is any other 4xx; Message is taken from the body.
type ClientRejectedError struct {
	Status  int
	Message string
}

func (e *ClientRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected (%d)", e.Status)
	}
	return e.Message
}

// ServerFaultError is a 5xx or a failure to reach the backend at all
// (Status 0, Err set).
type ServerFaultError struct {
	Status int
	Err    error
}

func (e *ServerFaultError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return "server unreachable: " + e.Err.Error()
		}
		return "server unreachable"
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

func (e *ServerFaultError) Unwrap() error { return e.Err }

// MalformedResponseError is a success status whose body is not the JSON we
// asked for.
type MalformedResponseError struct {
	Status      int
	ContentType string
	Err         error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return "invalid response from server: " + e.Err.Error()
	}
	if e.ContentType == "" {
		return "invalid response from server: missing content type"
	}
	return "invalid response from server: unexpected content type " + e.ContentType
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// KindOf classifies err. Validation errors are recognized structurally so this
// package does not depend on the form layer.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ae *AuthExpiredError
	if errors.As(err, &ae) {
		return KindAuthExpired
	}
	var ve interface{ FieldErrors() map[string]string }
	if errors.As(err, &ve) {
		return KindValidationFailed
	}
	var ce *ClientRejectedError
	if errors.As(err, &ce) {
		return KindClientRejected
	}
	var me *MalformedResponseError
	if errors.As(err, &me) {
		return KindMalformedResponse
	}
	return KindServerFault
}

func IsAuthExpired(err error) bool { return KindOf(err) == KindAuthExpired }

// rejectionMessage pulls a human message out of an error body. A non-empty
// "errors" collection wins over "message"/"error" and is joined with ", ".
func rejectionMessage(raw []byte, status int) string {
	fallback := fmt.Sprintf("request rejected (%d)", status)
	if len(strings.TrimSpace(string(raw))) == 0 {
		return fallback
	}
	var body any
	if err := sonic.Unmarshal(raw, &body); err != nil {
		// Plain-text error pages still carry a readable message.
		return xansi.Truncate(strings.TrimSpace(string(raw)), maxPlainMessage, "…")
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return fallback
	}

	msg := ""
	if s, ok := obj["message"].(string); ok && strings.TrimSpace(s) != "" {
		msg = s
	} else if s, ok := obj["error"].(string); ok && strings.TrimSpace(s) != "" {
		msg = s
	}

	if errs, ok := obj["errors"]; ok {
		if parts := collectMessages(errs); len(parts) > 0 {
			msg = strings.Join(parts, ", ")
		}
	}
	if msg == "" {
		return fallback
	}
	return msg
}

func collectMessages(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	case []any:
		for _, x := range t {
			out = append(out, collectMessages(x)...)
		}
	case map[string]any:
		for _, k := range []string{"msg", "message", "error"} {
			if s, ok := t[k].(string); ok && s != "" {
				return []string{s}
			}
		}
		// Field-keyed maps ({"email": ["taken"]}); keep key order stable.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, collectMessages(t[k])...)
		}
	}
	return out
}
