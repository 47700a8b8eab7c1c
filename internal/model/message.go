package model

// Template holds the subject/body text a campaign is rendered from.
// Any literal "{name}" token is substituted per recipient. Loaded once
// per run, immutable afterwards.
type Template struct {
	Subject  string
	Body     string
	HTMLBody string
}

// Attachment is one file carried by a multipart message. Content is
// the base64-encoded file bytes; Filename is the file's base name,
// used in the disposition header.
type Attachment struct {
	Filename string
	Content  string
}

// Content is the body variant of a rendered message. The variant is
// chosen once at render time: PlainContent when there is neither an
// HTML part nor any attachment, MultipartContent otherwise.
type Content interface {
	isContent()
}

// PlainContent is a single-part plain-text body.
type PlainContent struct {
	Text string
}

// MultipartContent carries a plain-text part, an optional HTML part,
// and zero or more attachments, in that order.
type MultipartContent struct {
	Text        string
	HTML        string
	Attachments []Attachment
}

func (PlainContent) isContent()     {}
func (MultipartContent) isContent() {}

// RenderedMessage is one outbound message, derived from a Template and
// a Recipient, discarded after transmission.
type RenderedMessage struct {
	Subject string
	From    string
	To      string
	Content Content
}
