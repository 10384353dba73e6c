package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"catalog-admin/internal/model"
	"catalog-admin/internal/transport"
)

const LoginPath = "/adminlogin"

// ErrAccountDisabled is returned when the backend accepts the credentials of
// an inactive account.
var ErrAccountDisabled = errors.New("your account is disabled; please contact the administrator")

// Login exchanges email/password for a token and initializes st with it. It
// is the only writer of a session besides Clear.
func Login(ctx context.Context, c *transport.Client, st Store, email, password string) (State, error) {
	email = strings.TrimSpace(email)
	resp, err := c.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   LoginPath,
		Payload: transport.JSON(
			transport.Field{Key: "email", Value: email},
			transport.Field{Key: "password", Value: password},
		),
	})
	if err != nil {
		var ae *transport.AuthExpiredError
		if errors.As(err, &ae) {
			// A 401 here means bad credentials, not an expired session.
			return State{}, &transport.ClientRejectedError{Status: http.StatusUnauthorized, Message: "email or password is incorrect"}
		}
		return State{}, err
	}
	body, ok := resp.Body.(map[string]any)
	if !ok {
		return State{}, &transport.MalformedResponseError{Status: resp.Status, ContentType: resp.Header.Get("Content-Type"), Err: errors.New("login response is not an object")}
	}

	user, _ := body["user"].(map[string]any)
	rec := model.Record(user)

	status := rec.String("status")
	if status == "" {
		if s, _ := body["status"].(string); s != "success" {
			status = s
		}
	}
	if strings.EqualFold(status, "inactive") {
		return State{}, ErrAccountDisabled
	}

	token, _ := body["token"].(string)
	next := State{
		Token: strings.TrimSpace(token),
		Email: email,
		Role:  rec.String("role"),
	}
	if v, ok := rec.First("id", "_id", "ID"); ok {
		next.UserID = model.Stringify(v)
	}
	if !next.LoggedIn() {
		return State{}, &transport.MalformedResponseError{Status: resp.Status, ContentType: resp.Header.Get("Content-Type"), Err: errors.New("login response has no token")}
	}
	if err := st.Init(next); err != nil {
		return State{}, err
	}
	return next, nil
}
