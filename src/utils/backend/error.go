package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

type Kind string

const (
	// No response was received
	KindNetwork Kind = "network"

	// Request aborted after its deadline
	KindTimeout Kind = "timeout"

	// Non-2xx response
	KindHttp Kind = "http"

	// 2xx response that declares a failure
	KindApplication Kind = "application"
)

var (
	ErrNetwork     = &Error{Kind: KindNetwork}
	ErrTimeout     = &Error{Kind: KindTimeout}
	ErrHttp        = &Error{Kind: KindHttp}
	ErrApplication = &Error{Kind: KindApplication}

	ErrFailedToParse = errors.New("failed to parse response")
	ErrNoApiKey      = errors.New("no active api key")
)

// Failure of a remote call. Matches the Err* sentinels of the same kind with errors.Is.
type Error struct {
	Kind Kind

	// HTTP status, set for KindHttp
	Status int

	// Message extracted from the response, raw text if it wasn't JSON
	Message string

	// Raw response body
	Body string

	Err error
}

func (self *Error) Error() string {
	switch self.Kind {
	case KindHttp:
		if self.Message != "" {
			return fmt.Sprintf("http %d: %s", self.Status, self.Message)
		}
		return fmt.Sprintf("http %d", self.Status)
	case KindTimeout:
		if self.Err != nil {
			return "timeout: " + self.Err.Error()
		}
		return "timeout"
	}

	if self.Message != "" {
		return string(self.Kind) + ": " + self.Message
	}
	if self.Err != nil {
		return string(self.Kind) + ": " + self.Err.Error()
	}
	return string(self.Kind)
}

func (self *Error) Unwrap() error {
	return self.Err
}

func (self *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return self.Kind == t.Kind
}

func NewApplicationError(message string) error {
	return &Error{Kind: KindApplication, Message: message}
}

func NewHttpError(status int, body []byte) error {
	return &Error{
		Kind:    KindHttp,
		Status:  status,
		Message: ParseErrorMessage(body),
		Body:    string(body),
	}
}

// Converts transport errors into typed errors. Already typed errors are returned as is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ErrFailedToParse, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}

	return &Error{Kind: KindNetwork, Err: err}
}

// Returns the kind of a remote error, empty for local errors
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}

// Extracts `detail` or `message` from a JSON error body. Anything else is returned as trimmed text.
func ParseErrorMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}

	text := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err != nil {
		return text
	}

	if detail := parseDetail(payload.Detail); detail != "" {
		return detail
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	return text
}

// Detail is either a string or a list of validation errors with a `msg` field
func parseDetail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []struct {
		Msg string        `json:"msg"`
		Loc []interface{} `json:"loc"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg == "" {
				continue
			}
			if len(item.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			} else {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return strings.TrimSpace(string(raw))
}
