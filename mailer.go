package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// MailMessage carries the content for a single outbound email.
type MailMessage struct {
	To      string
	From    string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers transactional emails, e.g. password reset links.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

type SMTPMailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type smtpMailer struct {
	cfg    SMTPMailerConfig
	logger Logger
}

func NewSMTPMailer(cfg SMTPMailerConfig) Mailer {
	return &smtpMailer{
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (m *smtpMailer) WithLogger(logger Logger) *smtpMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

func (m *smtpMailer) Send(ctx context.Context, msg MailMessage) error {
	message := mail.NewMsg()

	if err := message.From(msg.From); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid sender address").
			WithTextCode(TextCodeDeliveryFailed)
	}

	if err := message.To(msg.To); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid recipient address").
			WithTextCode(TextCodeDeliveryFailed)
	}

	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		message.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create mail client").
			WithTextCode(TextCodeDeliveryFailed)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		m.logger.Error("mail delivery failed", "to", msg.To, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "email delivery failed").
			WithTextCode(TextCodeDeliveryFailed)
	}

	return nil
}

// LoggerMailer prints outbound mail instead of sending it, meant for
// local development where no SMTP relay is available.
type LoggerMailer struct {
	Logger Logger
}

func (m LoggerMailer) Send(_ context.Context, msg MailMessage) error {
	logger := m.Logger
	if logger == nil {
		logger = defLogger{}
	}

	logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	logger.Info("mail", "to", msg.To, "subject", msg.Subject)
	logger.Info("mail body", "text", msg.Text)

	return nil
}
