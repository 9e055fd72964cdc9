package position

import (
	"errors"
	"strconv"
	"strings"

	"voiceguide/pkg/messages"
)

// Code is a geolocation failure reason, numbered like the browser API.
type Code int

const (
	Unknown             Code = 0
	PermissionDenied    Code = 1
	PositionUnavailable Code = 2
	Timeout             Code = 3
)

func (c Code) String() string {
	switch c {
	case PermissionDenied:
		return "PERMISSION_DENIED"
	case PositionUnavailable:
		return "POSITION_UNAVAILABLE"
	case Timeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Message is the message key shown to the visitor.
func (c Code) Message() string {
	switch c {
	case PermissionDenied:
		return messages.PermissionDenied
	case PositionUnavailable:
		return messages.PositionUnavailable
	case Timeout:
		return messages.Timeout
	default:
		return messages.UnknownError
	}
}

// ParseCode reads a code by number ("1") or by name ("PERMISSION_DENIED").
// Anything else is Unknown.
func ParseCode(s string) Code {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		switch Code(n) {
		case PermissionDenied, PositionUnavailable, Timeout:
			return Code(n)
		}
		return Unknown
	}
	switch strings.ToUpper(s) {
	case "PERMISSION_DENIED":
		return PermissionDenied
	case "POSITION_UNAVAILABLE":
		return PositionUnavailable
	case "TIMEOUT":
		return Timeout
	default:
		return Unknown
	}
}

// LocationError is a failure reported by a watcher.
type LocationError struct {
	Code Code
}

func (e *LocationError) Error() string {
	return e.Code.Message()
}

// Is matches any LocationError with the same code.
func (e *LocationError) Is(target error) bool {
	var t *LocationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrPermissionDenied    = &LocationError{Code: PermissionDenied}
	ErrPositionUnavailable = &LocationError{Code: PositionUnavailable}
	ErrTimeout             = &LocationError{Code: Timeout}
	ErrUnknown             = &LocationError{Code: Unknown}

	// ErrUnsupported means there is no watcher to go live with.
	ErrUnsupported = errors.New(messages.Unsupported)

	// ErrNotStarted is returned by Select on a stopped simulated source.
	ErrNotStarted = errors.New("position source is not started")
)

// MessageKey returns the messages key describing err.
func MessageKey(err error) string {
	var le *LocationError
	switch {
	case errors.As(err, &le):
		return le.Code.Message()
	case errors.Is(err, ErrUnsupported):
		return messages.Unsupported
	default:
		return messages.UnknownError
	}
}
