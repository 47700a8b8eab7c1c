// Package template loads subject/body templates and applies the
// per-recipient {name} substitution.
package template

import (
	"fmt"
	"os"
	"strings"
)

// Token is the only placeholder recognized in templates. There is no
// escape syntax: a literal "{name}" intended as text cannot be
// preserved.
const Token = "{name}"

// separator splits a template file into subject and body.
const separator = "---"

// Load reads a template file. When the file contains "---", the text
// before the first occurrence is the subject and the text after is
// the body, both trimmed. Otherwise the whole file is the body and
// the subject is empty.
func Load(path string) (subject, body string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read template %s: %w", path, err)
	}

	content := string(data)
	if before, after, found := strings.Cut(content, separator); found {
		return strings.TrimSpace(before), strings.TrimSpace(after), nil
	}
	return "", strings.TrimSpace(content), nil
}

// Personalize replaces every occurrence of the {name} token with name.
func Personalize(s, name string) string {
	return strings.ReplaceAll(s, Token, name)
}
