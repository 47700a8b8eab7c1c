package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/textproto"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"

	"github.com/mailblast/mailblast/internal/config"
	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/model"
)

// SMTPTransport implements Transport over an authenticated SMTP relay.
type SMTPTransport struct {
	cfg    config.SMTPConfig
	sender string
	log    *logger.Logger
	conn   mail.SendCloser
}

// NewSMTP creates an SMTPTransport. The relay username defaults to
// the sender address when the config leaves it empty.
func NewSMTP(cfg config.SMTPConfig, sender string, log *logger.Logger) *SMTPTransport {
	return &SMTPTransport{
		cfg:    cfg,
		sender: sender,
		log:    log.WithComponent("smtp"),
	}
}

// Connect dials and authenticates against the relay. The connection
// is held open for the whole run; sequential sends reuse it.
func (t *SMTPTransport) Connect(ctx context.Context) error {
	user := t.cfg.Username
	if user == "" {
		user = t.sender
	}

	t.log.Info().Str("addr", t.cfg.Addr()).Str("tls_mode", t.cfg.TLSMode).Msg("connecting to relay")

	d := mail.NewDialer(t.cfg.Host, t.cfg.Port, user, t.cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         t.cfg.Host,
		InsecureSkipVerify: t.cfg.InsecureSkipVerify,
	}

	switch t.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: t.cfg.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negotiates STARTTLS when offered
	}

	conn, err := d.Dial()
	if err != nil {
		return fmt.Errorf("smtp connect: %w", err)
	}
	t.conn = conn

	t.log.Info().Msg("relay connection authenticated")
	return nil
}

// Send transmits one message over the open relay connection.
func (t *SMTPTransport) Send(ctx context.Context, msg *model.RenderedMessage) (model.Outcome, error) {
	if t.conn == nil {
		return model.OutcomeOther, errors.New("smtp send: not connected")
	}

	m := buildMessage(msg, t.cfg.Host)
	if err := mail.Send(t.conn, m); err != nil {
		return classifySMTP(err), fmt.Errorf("smtp send: %w", err)
	}
	return model.OutcomeSent, nil
}

// Close quits the relay session.
func (t *SMTPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	t.log.Info().Msg("relay connection closed")
	return nil
}

// buildMessage converts a RenderedMessage into the wire message.
func buildMessage(msg *model.RenderedMessage, host string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-Id", fmt.Sprintf("<%s@%s>", uuid.NewString(), host))

	switch c := msg.Content.(type) {
	case model.PlainContent:
		m.SetBody("text/plain", c.Text)
	case model.MultipartContent:
		m.SetBody("text/plain", c.Text)
		if c.HTML != "" {
			m.AddAlternative("text/html", c.HTML)
		}
		for _, att := range c.Attachments {
			m.Attach(att.Filename, mail.SetCopyFunc(copyAttachment(att)))
		}
	}
	return m
}

// copyAttachment writes the decoded attachment bytes into the message
// body; go-mail re-encodes them for transport.
func copyAttachment(att model.Attachment) func(io.Writer) error {
	return func(w io.Writer) error {
		data, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			return fmt.Errorf("decode attachment %s: %w", att.Filename, err)
		}
		_, err = w.Write(data)
		return err
	}
}

// classifySMTP maps an SMTP reply code to an outcome. 550/551/553 are
// mailbox/recipient rejections, 552/554 reject the message content or
// transaction; anything else (including non-protocol errors) counts
// as other.
func classifySMTP(err error) model.Outcome {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 550, 551, 553:
			return model.OutcomeRecipientRefused
		case 552, 554:
			return model.OutcomeContentRejected
		}
	}
	return model.OutcomeOther
}
