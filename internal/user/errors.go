// AngelaMos | 2026
// errors.go

package user

import (
	"errors"

	"github.com/carterperez-dev/templates/account-service/internal/core"
	"github.com/carterperez-dev/templates/account-service/internal/notify"
)

const (
	MsgNotAllowedCreate     = "Not allowed to create users."
	MsgNotAllowedEdit       = "Not allowed to edit this user."
	MsgNotAllowedAssignRole = "Not allowed to assign this role."
	MsgNotAllowedView       = "Not allowed to view this user."
	MsgNotAllowedList       = "Not allowed to list users."
	MsgEmailExists          = "Email already exists."
	MsgUserNotFound         = "User not found."
	MsgEmailDispatch        = "User created but welcome email could not be sent."
	MsgEmailResend          = "Welcome email could not be sent."
)

var (
	ErrForbiddenOperation = errors.New("forbidden operation")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrEmailDispatch      = errors.New("email dispatch failure")
)

type ErrorKind int

const (
	KindForbiddenOperation ErrorKind = iota + 1
	KindDuplicateEmail
	KindEntityNotFound
	KindEmailDispatchFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindForbiddenOperation:
		return "ForbiddenOperation"
	case KindDuplicateEmail:
		return "DuplicateEmail"
	case KindEntityNotFound:
		return "EntityNotFound"
	case KindEmailDispatchFailure:
		return "EmailDispatchFailure"
	default:
		return "Unknown"
	}
}

// Error is the closed set of business failures returned by Service.
// Type is only set for KindEmailDispatchFailure and names the transport
// failure class (smtp, timeout, connection, unknown).
type Error struct {
	Kind    ErrorKind
	Message string
	Type    string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindForbiddenOperation:
		return target == ErrForbiddenOperation || target == core.ErrForbidden
	case KindDuplicateEmail:
		return target == ErrDuplicateEmail || target == core.ErrDuplicateKey
	case KindEntityNotFound:
		return target == ErrEntityNotFound || target == core.ErrNotFound
	case KindEmailDispatchFailure:
		return target == ErrEmailDispatch || target == core.ErrBadGateway
	}
	return false
}

func AsError(err error) (*Error, bool) {
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr, true
	}
	return nil, false
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbiddenOperation, Message: message}
}

func duplicateEmail() *Error {
	return &Error{Kind: KindDuplicateEmail, Message: MsgEmailExists}
}

func notFound(cause error) *Error {
	return &Error{Kind: KindEntityNotFound, Message: MsgUserNotFound, Err: cause}
}

func emailDispatch(message string, cause error) *Error {
	return &Error{
		Kind:    KindEmailDispatchFailure,
		Message: message,
		Type:    notify.Classify(cause),
		Err:     cause,
	}
}
