// Package recipients loads and validates the recipient list from a
// delimited text source.
package recipients

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/model"
)

// ErrSourceNotFound is returned when the recipient source does not
// resolve to a readable file. Callers report it and carry on with the
// empty list; only the total absence of recipients is terminal.
var ErrSourceNotFound = errors.New("recipient source not found")

// Loader reads a delimited text source into an ordered sequence of
// validated recipients.
type Loader struct {
	delimiter rune
	log       *logger.Logger
}

// NewLoader creates a Loader splitting rows on the given delimiter.
func NewLoader(delimiter rune, log *logger.Logger) *Loader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Loader{
		delimiter: delimiter,
		log:       log.WithComponent("recipients"),
	}
}

// Load reads the source at path and returns its recipients in source
// order. Duplicate addresses are preserved; each one receives its own
// message. Rows with an invalid address are logged and dropped, rows
// with an empty address are dropped silently.
//
// Header detection inspects the first row only: it is treated as a
// header when it contains the substring "email" (case-insensitive) or
// contains no "@". This is a heuristic and misfires on headers that
// contain "@" or data rows that mention "email"; it is kept as-is
// because every existing recipient file relies on it.
func (l *Loader) Load(path string) ([]model.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		l.log.Error().Str("path", path).Err(err).Msg("recipient source not readable")
		return nil, ErrSourceNotFound
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = l.delimiter
	r.FieldsPerRecord = -1

	var (
		recipients []model.Recipient
		rejected   int
		rowNum     int
		first      = true
	)

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowNum++
			l.log.Warn().Int("row", rowNum).Err(err).Msg("unparseable row skipped")
			continue
		}

		if first {
			first = false
			if isHeader(row, l.delimiter) {
				continue
			}
		}
		rowNum++

		if len(row) == 0 {
			continue
		}

		email := strings.TrimSpace(row[0])
		name := ""
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}

		if email == "" {
			continue
		}
		if !model.IsValidAddress(email) {
			rejected++
			l.log.Warn().Int("row", rowNum).Str("value", email).Msg("invalid email address rejected")
			continue
		}

		recipients = append(recipients, model.NewRecipient(email, name))
	}

	l.log.Info().
		Int("accepted", len(recipients)).
		Int("rejected", rejected).
		Msg("recipient list loaded")

	return recipients, nil
}

// isHeader applies the first-line heuristic to a parsed row.
func isHeader(row []string, delimiter rune) bool {
	line := strings.Join(row, string(delimiter))
	return strings.Contains(strings.ToLower(line), "email") || !strings.Contains(line, "@")
}
