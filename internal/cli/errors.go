package cli

import (
	"errors"

	"catalog-admin/internal/mutate"
	"catalog-admin/internal/transport"
	"catalog-admin/internal/tui"
)

var errNotLoggedIn = errors.New("not logged in; run `catadmin login` first")

// reportedError marks an error the user has already been shown, either by
// writeErr or by a store notification.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil || IsReported(err) {
		return err
	}
	return reportedError{err: err}
}

// IsReported tells main whether err still needs printing.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// Exit codes.
const (
	ExitFailure     = 1
	ExitInvalid     = 2
	ExitAuthExpired = 3
)

func ExitCode(err error) int {
	var ve *mutate.ValidationError
	switch {
	case errors.As(err, &ve):
		return ExitInvalid
	case transport.IsAuthExpired(err), errors.Is(err, errNotLoggedIn), errors.Is(err, tui.ErrSessionExpired):
		return ExitAuthExpired
	default:
		return ExitFailure
	}
}
