package account

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ezeeyahoo/alot/internal/mail"
)

// Sender delivers a composed mail.
type Sender interface {
	Send(ctx context.Context, env *mail.Envelope) error
}

// SendmailSender pipes the rendered mail into a local command, usually
// sendmail or msmtp.
type SendmailSender struct {
	Cmd string
}

func (s *SendmailSender) Send(ctx context.Context, env *mail.Envelope) error {
	if strings.TrimSpace(s.Cmd) == "" {
		return fmt.Errorf("empty sendmail command")
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", s.Cmd)
	cmd.Stdin = strings.NewReader(renderMail(env))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("sendmail failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// renderMail serializes headers and body in wire order.
func renderMail(env *mail.Envelope) string {
	var b strings.Builder
	for _, key := range env.Keys() {
		for _, v := range env.GetAll(key) {
			fmt.Fprintf(&b, "%s: %s\n", key, v)
		}
	}
	b.WriteString("\n")
	b.WriteString(env.Body())
	return b.String()
}
