// Package message renders one outbound message per recipient from the
// campaign template.
package message

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/model"
	"github.com/mailblast/mailblast/internal/template"
)

// Renderer builds RenderedMessages from a template and a recipient.
// Apart from reading attachment bytes it performs no I/O and keeps no
// state between calls, so rendering the same inputs twice yields
// structurally identical output.
type Renderer struct {
	from string
	log  *logger.Logger
}

// NewRenderer creates a Renderer stamping messages with the given
// From address.
func NewRenderer(from string, log *logger.Logger) *Renderer {
	return &Renderer{
		from: from,
		log:  log.WithComponent("renderer"),
	}
}

// Render personalizes the template for one recipient and selects the
// message structure: multipart when there is an HTML body or at least
// one attachment, single-part plain text otherwise. Parts keep a
// fixed order: plain text, HTML, then attachments as given.
//
// An unreadable attachment is logged and skipped; the message is
// still produced without it.
func (r *Renderer) Render(tmpl model.Template, rcpt model.Recipient, attachmentPaths []string) model.RenderedMessage {
	msg := model.RenderedMessage{
		Subject: template.Personalize(tmpl.Subject, rcpt.Name),
		From:    r.from,
		To:      rcpt.Email,
	}

	text := template.Personalize(tmpl.Body, rcpt.Name)

	// Structure selection keys on the attachments as supplied, not on
	// how many survive loading: a run where every attachment is
	// unreadable still produces a multipart message.
	if tmpl.HTMLBody == "" && len(attachmentPaths) == 0 {
		msg.Content = model.PlainContent{Text: text}
		return msg
	}

	attachments := r.loadAttachments(attachmentPaths)

	var html string
	if tmpl.HTMLBody != "" {
		html = template.Personalize(tmpl.HTMLBody, rcpt.Name)
	}
	msg.Content = model.MultipartContent{
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	}
	return msg
}

// loadAttachments reads and encodes each attachment, preserving the
// given order and dropping files that cannot be read.
func (r *Renderer) loadAttachments(paths []string) []model.Attachment {
	var attachments []model.Attachment
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn().Str("path", path).Err(err).Msg("attachment not readable, skipped")
			continue
		}
		attachments = append(attachments, model.Attachment{
			Filename: filepath.Base(path),
			Content:  base64.StdEncoding.EncodeToString(data),
		})
	}
	return attachments
}
