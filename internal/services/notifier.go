package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/signupd/pkg/logger"
	"github.com/charlesng35/signupd/pkg/mail"
	"github.com/charlesng35/signupd/pkg/metrics"
)

// Notifier delivers the activation code to a freshly registered user.
type Notifier interface {
	SendActivationCode(ctx context.Context, email, code string) error
}

// MailNotifier sends activation codes over SMTP. When delivery is disabled
// via configuration the code is logged instead, which keeps local
// development and end-to-end tests workable without a relay.
type MailNotifier struct {
	mailer mail.Mailer
	expiry time.Duration
	log    *zap.Logger
}

// NewMailNotifier wraps the given mailer. The expiry is only used to phrase
// the email body.
func NewMailNotifier(mailer mail.Mailer, expiry time.Duration) (*MailNotifier, error) {
	if mailer == nil {
		return nil, errors.New("mail notifier: mailer is required")
	}
	return &MailNotifier{
		mailer: mailer,
		expiry: expiry,
		log:    logger.WithModule("notifier"),
	}, nil
}

func (n *MailNotifier) SendActivationCode(ctx context.Context, email, code string) error {
	msg := mail.Message{
		To:      []string{email},
		Subject: "Activate your account",
		Body:    n.activationBody(code),
	}

	err := n.mailer.Send(ctx, msg)
	if errors.Is(err, mail.ErrSMTPDisabled) {
		n.log.Info("smtp disabled, logging activation code instead",
			zap.String("email", email),
			zap.String("code", code),
		)
		metrics.ActivationEmails.WithLabelValues("sent").Inc()
		return nil
	}
	if err != nil {
		metrics.ActivationEmails.WithLabelValues("failed").Inc()
		return fmt.Errorf("mail notifier: send: %w", err)
	}

	metrics.ActivationEmails.WithLabelValues("sent").Inc()
	return nil
}

func (n *MailNotifier) activationBody(code string) string {
	body := fmt.Sprintf("Welcome!\n\nYour activation code is %s.", code)
	if n.expiry > 0 {
		body += fmt.Sprintf(" It expires in %s.", n.expiry)
	}
	return body + "\n\nIf you did not create an account, you can ignore this message.\n"
}
