// Package notify sends a completion email once a task reaches a
// terminal state, an optional ambient concern the source does not model
// but that the teacher's dependency set (wneessen/go-mail) is already
// wired for elsewhere in the pack.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/rakunlabs/algofab/internal/config"
)

// Notifier sends task-completion emails. A zero-value Notifier (nil
// receiver-safe only via the constructor returning a disabled instance)
// is a no-op when Notify.SMTPHost isn't configured.
type Notifier struct {
	cfg     config.Notify
	client  *mail.Client
	enabled bool
}

// New builds a Notifier from cfg. If SMTPHost is empty the returned
// Notifier is disabled and Send becomes a no-op, keeping notification an
// opt-in ambient concern rather than a hard dependency.
func New(cfg config.Notify) (*Notifier, error) {
	if cfg.SMTPHost == "" {
		return &Notifier{enabled: false}, nil
	}

	opts := []mail.Option{mail.WithPort(cfg.SMTPPort)}
	if cfg.Username != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(cfg.Username), mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: build smtp client: %w", err)
	}
	return &Notifier{cfg: cfg, client: client, enabled: true}, nil
}

// TaskComplete emails to about a task's completion. It returns nil
// without sending anything if the notifier is disabled.
func (n *Notifier) TaskComplete(ctx context.Context, to, taskID, algorithmID string, failed bool) error {
	if !n.enabled {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("notify: set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("notify: set to address: %w", err)
	}

	status := "completed"
	if failed {
		status = "failed"
	}
	msg.Subject(fmt.Sprintf("algofab task %s %s", taskID, status))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("Task %s running algorithm %s has %s.", taskID, algorithmID, status))

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	return nil
}
