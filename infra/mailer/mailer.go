// Package mailer delivers withdrawal receipts. Two senders exist: Mock logs
// the receipt and SMTP pushes real mail through a relay such as MailHog.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
)

// Mock is the development sender. It writes the receipt to the log and always
// succeeds.
type Mock struct {
	logger *slog.Logger
}

// NewMock builds the logging sender.
func NewMock(logger *slog.Logger) *Mock {
	return &Mock{logger: logger}
}

// SendWithdrawReceipt implements notification.Sender.
func (m *Mock) SendWithdrawReceipt(ctx context.Context, pix domain.PixKey, amount money.Money, when time.Time) error {
	m.logger.Info("withdraw receipt",
		"to", pix.Mask(),
		"amount", amount.String(),
		"at", when.Format(time.RFC3339),
	)
	return nil
}

// SMTP sends receipts through a plain SMTP relay. Email keys receive the mail
// directly; for phone and random keys there is no mailbox, so the receipt is
// addressed to the configured fallback recipient.
type SMTP struct {
	addr   string
	from   string
	logger *slog.Logger
}

// NewSMTP builds the SMTP sender for host:port.
func NewSMTP(host string, port int, from string, logger *slog.Logger) *SMTP {
	return &SMTP{
		addr:   fmt.Sprintf("%s:%d", host, port),
		from:   from,
		logger: logger,
	}
}

// SendWithdrawReceipt implements notification.Sender.
func (s *SMTP) SendWithdrawReceipt(ctx context.Context, pix domain.PixKey, amount money.Money, when time.Time) error {
	to := s.from
	if pix.Type() == domain.PixKeyEmail {
		to = pix.Key()
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Saque PIX efetuado\r\n\r\nSaque PIX de %s efetuado em %s para a chave %s.\r\n",
		s.from, to, amount.String(), when.Format("02/01/2006 15:04"), pix.Mask(),
	)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send withdraw receipt: %w", err)
	}
	s.logger.Info("withdraw receipt sent", "to", pix.Mask())
	return nil
}
