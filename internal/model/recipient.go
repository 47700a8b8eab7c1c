package model

import (
	"regexp"
	"strings"
)

// addressPattern is the format rule a candidate email must satisfy:
// local part of [A-Za-z0-9._%+-], a domain of [A-Za-z0-9.-], and a
// top-level segment of at least two letters.
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidAddress reports whether s is an acceptable email address.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Recipient is a validated (email, display name) pair targeted by one
// outbound message. Immutable after construction.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewRecipient builds a Recipient from a validated email and an
// optional display name. A blank name defaults to the local part of
// the address (text before the first "@").
func NewRecipient(email, name string) Recipient {
	if name == "" {
		name = LocalPart(email)
	}
	return Recipient{Email: email, Name: name}
}

// FormatAddress renders a name and email as an RFC 5322 address:
// "Name <email>" when a name is set, the bare email otherwise.
func FormatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return name + " <" + email + ">"
}

// LocalPart returns the text before the first "@" of an address.
func LocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
