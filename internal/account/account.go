package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/ezeeyahoo/alot/internal/config"
	"github.com/ezeeyahoo/alot/internal/mail"
)

// Account is a configured mail identity with a way to send from it.
type Account struct {
	Realname string
	Address  string
	sender   Sender
}

// String renders the identity for a From header.
func (a *Account) String() string {
	return mail.FormatAddress(a.Realname, a.Address)
}

// Send delivers an envelope through the account's transport.
func (a *Account) Send(ctx context.Context, env *mail.Envelope) error {
	if a.sender == nil {
		return fmt.Errorf("account %s has no sendmail command configured", a.Address)
	}
	return a.sender.Send(ctx, env)
}

// Manager holds the configured accounts in order.
type Manager struct {
	accounts []*Account
}

func NewManager(accounts ...*Account) *Manager {
	return &Manager{accounts: accounts}
}

// FromConfig builds the account list from configuration.
func FromConfig(cfgs []config.AccountConfig) *Manager {
	m := &Manager{}
	for _, c := range cfgs {
		m.accounts = append(m.accounts, &Account{
			Realname: c.Realname,
			Address:  c.Address,
			sender:   &SendmailSender{Cmd: c.SendmailCmd},
		})
	}
	return m
}

func (m *Manager) Accounts() []*Account { return m.accounts }

// Addresses returns every configured address.
func (m *Manager) Addresses() []string {
	out := make([]string, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a.Address)
	}
	return out
}

// ByAddress finds the account owning an address, case insensitively.
func (m *Manager) ByAddress(addr string) *Account {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Address, addr) {
			return a
		}
	}
	return nil
}
