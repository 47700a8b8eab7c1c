// Package samples writes example input files for a first run.
package samples

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleCSV = `email,name
john.doe@example.com,John Doe
jane.smith@example.com,Jane Smith
travel.fan@example.com,Travel Enthusiast
`

const sampleTemplate = `Discover something new, {name}!
---
Dear {name},

This is a sample outreach template. Everything above the "---" line
becomes the subject, everything below becomes the body, and every
{name} token is replaced with the recipient's display name.

Best regards,
The Outreach Team
`

const envExample = `# Sender account
MAILBLAST_SENDER_ADDRESS=you@example.com
MAILBLAST_SENDER_NAME=Your Name
# Provider: smtp or gmail
MAILBLAST_SENDER_PROVIDER=smtp

# SMTP relay (app password for Gmail relays)
MAILBLAST_SMTP_HOST=smtp.gmail.com
MAILBLAST_SMTP_PORT=587
MAILBLAST_SMTP_PASSWORD=your-app-password

# Dispatch
MAILBLAST_SEND_DEFAULT_SUBJECT=Hello {name}
MAILBLAST_SEND_RATE_LIMIT_DELAY=1s
`

// Files returns the names of the files Create writes.
func Files() []string {
	return []string{"sample_emails.csv", "sample_template.txt", ".env.example"}
}

// Create writes the sample recipient list, template, and environment
// file into dir, overwriting existing copies.
func Create(dir string) error {
	files := map[string]string{
		"sample_emails.csv":   sampleCSV,
		"sample_template.txt": sampleTemplate,
		".env.example":        envExample,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
