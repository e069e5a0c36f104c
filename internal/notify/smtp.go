// AngelaMos | 2026
// smtp.go

package notify

import (
	"context"
	"fmt"
	"sync"
	"text/template"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/carterperez-dev/templates/account-service/internal/config"
)

const welcomeSubject = "Welcome to your new account"

var welcomeText = template.Must(template.New("welcome").Parse(
	`Hello {{.Name}},

An account has been created for you with the role {{.Role}}.

Sign in with {{.Email}} at {{.LoginURL}}

If you did not expect this email, please contact your administrator.
`))

type SMTPSender struct {
	mu       sync.Mutex
	client   *mail.Client
	from     string
	fromName string
	timeout  time.Duration
}

func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPSender{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
	}, nil
}

func (s *SMTPSender) SendWelcome(
	ctx context.Context,
	to string,
	msg Welcome,
) error {
	m, err := s.buildWelcome(to, msg)
	if err != nil {
		return err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return &DispatchError{Type: Classify(err), Err: err}
	}

	return nil
}

func (s *SMTPSender) buildWelcome(to string, msg Welcome) (*mail.Msg, error) {
	m := mail.NewMsg()

	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return nil, &DispatchError{
			Type: TypeAddress,
			Err:  fmt.Errorf("set from: %w", err),
		}
	}

	if err := m.To(to); err != nil {
		return nil, &DispatchError{
			Type: TypeAddress,
			Err:  fmt.Errorf("set recipient: %w", err),
		}
	}

	m.Subject(welcomeSubject)

	if err := m.SetBodyTextTemplate(welcomeText, msg); err != nil {
		return nil, &DispatchError{
			Type: TypeUnknown,
			Err:  fmt.Errorf("render welcome body: %w", err),
		}
	}

	return m, nil
}

func tlsPolicy(policy string) mail.TLSPolicy {
	switch policy {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}
