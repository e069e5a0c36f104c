// AngelaMos | 2026
// notify_test.go

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), TypeTimeout},
		{"os deadline", os.ErrDeadlineExceeded, TypeTimeout},
		{"net timeout", timeoutError{}, TypeTimeout},
		{"smtp reply", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, TypeSMTP},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, TypeConnection},
		{"dns", &net.DNSError{Err: "no such host", Name: "smtp.invalid"}, TypeConnection},
		{"reset", fmt.Errorf("write: %w", syscall.ECONNRESET), TypeConnection},
		{"already classified", &DispatchError{Type: TypeAddress, Err: errors.New("bad")}, TypeAddress},
		{"unclassified dispatch", &DispatchError{Err: context.DeadlineExceeded}, TypeTimeout},
		{"other", errors.New("boom"), TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestDispatchError(t *testing.T) {
	cause := errors.New("550 rejected")
	err := &DispatchError{Type: TypeSMTP, Err: cause}

	assert.Equal(t, "smtp: 550 rejected", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sender.SendWelcome(t.Context(), "budi@example.com", Welcome{
		Name:  "Budi Santoso",
		Email: "budi@example.com",
		Role:  "User",
	})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"to":"budi@example.com"`)
	assert.Contains(t, buf.String(), welcomeSubject)
}
