package finder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// Kind classifies every error the client returns.
type Kind int

const (
	UnknownError Kind = iota
	InvalidInput
	Timeout
	NetworkError
	ServerError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case Timeout:
		return "timeout"
	case NetworkError:
		return "network error"
	case ServerError:
		return "server error"
	default:
		return "unknown error"
	}
}

const (
	msgTimeout       = "request timeout - please check your connection and try again"
	msgUploadTimeout = "upload timed out - please try with a smaller file"
	msgNetwork       = "network error - please check your connection"
	msgUnreachable   = "unable to connect to server"
	msgUnexpected    = "an unexpected error occurred"
)

// Error is the single error shape returned by Client operations.
// Message is safe to show to an end user.
type Error struct {
	Kind    Kind
	Op      string
	Status  int // HTTP status, ServerError only
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind, so callers can
// write errors.Is(err, finder.ErrTimeout).
func (e *Error) Is(target error) bool {
	s, ok := target.(sentinel)
	return ok && Kind(s) == e.Kind
}

type sentinel Kind

func (s sentinel) Error() string { return Kind(s).String() }

var (
	ErrInvalidInput error = sentinel(InvalidInput)
	ErrTimeout      error = sentinel(Timeout)
	ErrNetwork      error = sentinel(NetworkError)
	ErrServer       error = sentinel(ServerError)
	ErrUnknown      error = sentinel(UnknownError)
)

// KindOf returns the kind of err. Errors that did not come from this package
// report UnknownError.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return UnknownError
}

func invalidf(op, format string, args ...any) *Error {
	return &Error{Kind: InvalidInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

// normalize maps an arbitrary failure onto the error taxonomy. Errors that are
// already *Error pass through unchanged.
func normalize(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Op == "" {
			fe.Op = op
		}
		return fe
	}
	var readErr *bodyError
	switch {
	case errors.As(err, &readErr):
		msg := strings.TrimSpace(readErr.err.Error())
		if msg == "" {
			msg = msgUnexpected
		}
		return &Error{Kind: UnknownError, Op: op, Message: msg, Err: err}
	case isTimeout(err):
		return &Error{Kind: Timeout, Op: op, Message: msgTimeout, Err: err}
	case isNetwork(err):
		return &Error{Kind: NetworkError, Op: op, Message: msgNetwork, Err: err}
	default:
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = msgUnexpected
		}
		return &Error{Kind: UnknownError, Op: op, Message: msg, Err: err}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// bodyError is a failure reading the local upload source. http.Client wraps
// it in *url.Error like a transport failure, but the service was never the
// problem.
type bodyError struct {
	err error
}

func (e *bodyError) Error() string { return e.err.Error() }

func (e *bodyError) Unwrap() error { return e.err }

// sourceReader tags read failures from r as *bodyError.
type sourceReader struct {
	r io.Reader
}

func (s sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = &bodyError{err: err}
	}
	return n, err
}

// isNetwork reports failures where no response was received. http.Client
// wraps every transport failure in *url.Error.
func isNetwork(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// serverError builds a ServerError from a non-2xx response body. The message
// prefers the body's "message" field, then "detail".
func serverError(op string, status int, body []byte) *Error {
	return &Error{
		Kind:    ServerError,
		Op:      op,
		Status:  status,
		Message: serverMessage(status, body),
	}
}

func serverMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("server error (status %d)", status)
	if len(body) == 0 {
		return fallback
	}
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	if msg := detailMessage(payload.Detail); msg != "" {
		return msg
	}
	return fallback
}

// detailMessage accepts a plain string or a list of validation entries with a
// "msg" field.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		if m := strings.TrimSpace(e.Msg); m != "" {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, "; ")
}
