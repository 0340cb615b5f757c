package mail

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSMTPClient struct {
	from    string
	rcpts   []string
	data    strings.Builder
	quit    bool
	authErr error
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (f *fakeSMTPClient) Mail(from string) error { f.from = from; return nil }
func (f *fakeSMTPClient) Rcpt(rcpt string) error { f.rcpts = append(f.rcpts, rcpt); return nil }
func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.data}, nil
}
func (f *fakeSMTPClient) Quit() error                      { f.quit = true; return nil }
func (f *fakeSMTPClient) Close() error                     { return nil }
func (f *fakeSMTPClient) StartTLS(*tls.Config) error       { return nil }
func (f *fakeSMTPClient) Auth(smtp.Auth) error             { return f.authErr }
func (f *fakeSMTPClient) Extension(string) (bool, string)  { return false, "" }

func newFakeMailer(cfg SMTPSettings, client *fakeSMTPClient) *smtpMailer {
	server, _ := net.Pipe()
	return &smtpMailer{
		cfg: cfg,
		dialFn: func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
			return server, client, nil
		},
		authFn: defaultAuthFunc,
	}
}

func TestSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587})
	require.NoError(t, err)
}

func TestSendDeliversMessage(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@example.com",
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"user@example.com", "user@example.com", " "},
		Subject: "Your activation code",
		Body:    "Code: 0042\n",
	})
	require.NoError(t, err)

	require.Equal(t, "noreply@example.com", client.from)
	require.Equal(t, []string{"user@example.com"}, client.rcpts)
	require.True(t, client.quit)

	payload := client.data.String()
	require.Contains(t, payload, "Subject: Your activation code")
	require.Contains(t, payload, "Code: 0042")
}

func TestSendRejectsInvalidAddresses(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@example.com",
	}, client)

	err := mailer.Send(context.Background(), Message{To: []string{"not an address"}})
	require.Error(t, err)

	err = mailer.Send(context.Background(), Message{To: nil})
	require.Error(t, err)
}

func TestFormatMessageEscapesHeaderInjection(t *testing.T) {
	out := formatMessage("a@example.com", []string{"b@example.com"}, "hi\r\nBcc: evil@example.com", "body")
	require.NotContains(t, out, "\r\nBcc:")
}
