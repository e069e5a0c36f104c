// AngelaMos | 2026
// notify.go

// Package notify delivers account notifications such as the welcome email
// sent when an administrator or manager creates a user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"os"
	"syscall"

	"github.com/wneessen/go-mail"
)

const (
	TypeSMTP       = "smtp"
	TypeTimeout    = "timeout"
	TypeConnection = "connection"
	TypeAddress    = "address"
	TypeUnknown    = "unknown"
)

type Welcome struct {
	Name     string
	Email    string
	Role     string
	LoginURL string
}

type Sender interface {
	SendWelcome(ctx context.Context, to string, msg Welcome) error
}

// DispatchError wraps a transport failure with its classification.
type DispatchError struct {
	Type string
	Err  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Classify maps a sender failure onto one of the Type constants.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) && dispatchErr.Type != "" {
		return dispatchErr.Type
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return TypeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TypeTimeout
	}

	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return TypeSMTP
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return TypeSMTP
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) ||
		errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return TypeConnection
	}

	return TypeUnknown
}
