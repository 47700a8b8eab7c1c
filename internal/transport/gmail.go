package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mailblast/mailblast/internal/config"
	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/model"
)

const gmailBoundary = "mailblast_part_boundary"

// GmailTransport implements Transport using the Gmail API. It expects
// either service account credentials JSON with domain-wide delegation
// for the sender mailbox, or OAuth2 client credentials with a refresh
// token for a personal account.
type GmailTransport struct {
	cfg     config.GmailConfig
	sender  string
	log     *logger.Logger
	service *gmail.Service
}

// NewGmail creates a GmailTransport for the given sender address.
func NewGmail(cfg config.GmailConfig, sender string, log *logger.Logger) *GmailTransport {
	return &GmailTransport{
		cfg:    cfg,
		sender: sender,
		log:    log.WithComponent("gmail"),
	}
}

// Connect builds the authenticated Gmail service.
func (t *GmailTransport) Connect(ctx context.Context) error {
	client, err := t.httpClient(ctx)
	if err != nil {
		return err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("gmail: failed to create service: %w", err)
	}
	t.service = svc

	t.log.Info().Str("sender", t.sender).Msg("gmail service ready")
	return nil
}

func (t *GmailTransport) httpClient(ctx context.Context) (*http.Client, error) {
	if t.cfg.CredentialsJSON != "" {
		jwtConfig, err := google.JWTConfigFromJSON([]byte(t.cfg.CredentialsJSON), gmail.GmailSendScope)
		if err != nil {
			return nil, fmt.Errorf("gmail: failed to parse credentials: %w", err)
		}
		// Domain-wide delegation: impersonate the sender mailbox
		jwtConfig.Subject = t.sender
		return jwtConfig.Client(ctx), nil
	}

	oauthCfg := &oauth2.Config{
		ClientID:     t.cfg.ClientID,
		ClientSecret: t.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	token := &oauth2.Token{RefreshToken: t.cfg.RefreshToken}
	return oauthCfg.Client(ctx, token), nil
}

// Send transmits one message through the Gmail send endpoint.
func (t *GmailTransport) Send(ctx context.Context, msg *model.RenderedMessage) (model.Outcome, error) {
	if t.service == nil {
		return model.OutcomeOther, errors.New("gmail send: not connected")
	}

	raw := rawMessage(msg)
	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	if _, err := t.service.Users.Messages.Send("me", gmailMsg).Context(ctx).Do(); err != nil {
		return classifyGmail(err), fmt.Errorf("gmail send: %w", err)
	}
	return model.OutcomeSent, nil
}

// Close is a no-op; the Gmail service holds no persistent connection.
func (t *GmailTransport) Close() error {
	t.service = nil
	return nil
}

// rawMessage assembles the RFC 2822 form of a rendered message.
func rawMessage(msg *model.RenderedMessage) string {
	headers := []string{
		"From: " + msg.From,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
	}

	switch c := msg.Content.(type) {
	case model.PlainContent:
		lines := append(headers,
			"Content-Type: text/plain; charset=UTF-8",
			"",
			c.Text,
		)
		return strings.Join(lines, "\r\n")
	case model.MultipartContent:
		lines := append(headers,
			"Content-Type: multipart/mixed; boundary="+gmailBoundary,
			"",
			"--"+gmailBoundary,
			"Content-Type: text/plain; charset=UTF-8",
			"Content-Transfer-Encoding: 7bit",
			"",
			c.Text,
			"",
		)
		if c.HTML != "" {
			lines = append(lines,
				"--"+gmailBoundary,
				"Content-Type: text/html; charset=UTF-8",
				"Content-Transfer-Encoding: 7bit",
				"",
				c.HTML,
				"",
			)
		}
		for _, att := range c.Attachments {
			lines = append(lines,
				"--"+gmailBoundary,
				"Content-Type: application/octet-stream",
				"Content-Transfer-Encoding: base64",
				fmt.Sprintf("Content-Disposition: attachment; filename=%q", att.Filename),
				"",
				att.Content,
				"",
			)
		}
		lines = append(lines, "--"+gmailBoundary+"--")
		return strings.Join(lines, "\r\n")
	}
	return strings.Join(headers, "\r\n")
}

// classifyGmail maps a Gmail API error to an outcome. The API reports
// both bad recipients and bad payloads as HTTP 400; the error message
// is the only signal separating the two.
func classifyGmail(err error) model.Outcome {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return model.OutcomeOther
	}
	if apiErr.Code == 400 {
		lower := strings.ToLower(apiErr.Message)
		if strings.Contains(lower, "recipient") || strings.Contains(lower, "address") {
			return model.OutcomeRecipientRefused
		}
		return model.OutcomeContentRejected
	}
	return model.OutcomeOther
}
