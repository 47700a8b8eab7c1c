package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mailblast/mailblast/internal/config"
	"github.com/mailblast/mailblast/internal/dispatch"
	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/message"
	"github.com/mailblast/mailblast/internal/model"
	"github.com/mailblast/mailblast/internal/recipients"
	"github.com/mailblast/mailblast/internal/samples"
	"github.com/mailblast/mailblast/internal/template"
	"github.com/mailblast/mailblast/internal/transport"
)

// fallbackBody is used when neither flag nor template supplies a body.
const fallbackBody = `Hello {name},

This message was sent by mailblast. Pass --body or --template to
replace this placeholder text with your own campaign content.`

var rootCmd = &cobra.Command{
	Use:   "mailblast",
	Short: "Personalized bulk email outreach from a CSV recipient list",
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Render and send one message per recipient",
	RunE:  runSend,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and recipient list without sending",
	RunE:  runValidate,
}

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Write sample recipient, template, and env files",
	RunE:  runSamples,
}

var (
	flagCSV          string
	flagSubject      string
	flagBody         string
	flagTemplate     string
	flagHTMLTemplate string
	flagAttachments  []string
	flagDelimiter    string
	flagDryRun       bool
	flagSamplesDir   string
)

func init() {
	sendCmd.Flags().StringVar(&flagCSV, "csv", "emails.csv", "CSV file with recipient addresses")
	sendCmd.Flags().StringVar(&flagSubject, "subject", "", "subject line (overrides template)")
	sendCmd.Flags().StringVar(&flagBody, "body", "", "plain-text body (overrides template)")
	sendCmd.Flags().StringVar(&flagTemplate, "template", "", "template file (subject --- body)")
	sendCmd.Flags().StringVar(&flagHTMLTemplate, "html-template", "", "HTML template file")
	sendCmd.Flags().StringArrayVar(&flagAttachments, "attach", nil, "file to attach (repeatable)")
	sendCmd.Flags().StringVar(&flagDelimiter, "delimiter", ",", "field delimiter in the CSV file")
	sendCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "log would-be sends without sending")

	validateCmd.Flags().StringVar(&flagCSV, "csv", "emails.csv", "CSV file with recipient addresses")
	validateCmd.Flags().StringVar(&flagDelimiter, "delimiter", ",", "field delimiter in the CSV file")

	samplesCmd.Flags().StringVar(&flagSamplesDir, "dir", ".", "directory to write sample files into")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(samplesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads and validates configuration and builds the logger.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	return cfg, log, nil
}

func delimiterRune() rune {
	if flagDelimiter == `\t` {
		return '\t'
	}
	for _, r := range flagDelimiter {
		return r
	}
	return ','
}

// loadRecipients loads the CSV source, treating a missing file as a
// reported (not fatal) condition and an empty result as terminal.
func loadRecipients(log *logger.Logger) ([]model.Recipient, error) {
	loader := recipients.NewLoader(delimiterRune(), log)
	list, err := loader.Load(flagCSV)
	if err != nil {
		if errors.Is(err, recipients.ErrSourceNotFound) {
			return nil, fmt.Errorf("recipient file %s not found", flagCSV)
		}
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no valid recipients found in %s", flagCSV)
	}
	return list, nil
}

// buildTemplate resolves subject and bodies: explicit flags win over
// template files, which win over the configured default subject and
// the built-in fallback body.
func buildTemplate(cfg *config.Config) (model.Template, error) {
	tmpl := model.Template{
		Subject: cfg.Send.DefaultSubject,
		Body:    flagBody,
	}

	if flagTemplate != "" {
		subject, body, err := template.Load(flagTemplate)
		if err != nil {
			return tmpl, err
		}
		if flagSubject == "" && subject != "" {
			tmpl.Subject = subject
		}
		if flagBody == "" && body != "" {
			tmpl.Body = body
		}
	}
	if flagSubject != "" {
		tmpl.Subject = flagSubject
	}

	if flagHTMLTemplate != "" {
		_, html, err := template.Load(flagHTMLTemplate)
		if err != nil {
			return tmpl, err
		}
		tmpl.HTMLBody = html
	}

	if tmpl.Body == "" {
		tmpl.Body = fallbackBody
	}

	return tmpl, nil
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	list, err := loadRecipients(log)
	if err != nil {
		return err
	}

	tmpl, err := buildTemplate(cfg)
	if err != nil {
		return err
	}

	tr, err := transport.New(cfg, log)
	if err != nil {
		return err
	}

	from := model.FormatAddress(cfg.Sender.Name, cfg.Sender.Address)
	renderer := message.NewRenderer(from, log)
	dispatcher := dispatch.New(tr, renderer, cfg.Send.RateLimitDelay, flagDryRun, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := dispatcher.Run(ctx, list, tmpl, flagAttachments)

	fmt.Printf("Results: %d sent, %d failed, %d skipped\n", report.Sent, report.Failed, report.Skipped)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, log, err := setup()
	if err != nil {
		return err
	}

	list, err := loadRecipients(log)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration OK; %d valid recipients in %s\n", len(list), flagCSV)
	return nil
}

func runSamples(cmd *cobra.Command, args []string) error {
	if err := samples.Create(flagSamplesDir); err != nil {
		return err
	}
	fmt.Println("Sample files created:")
	for _, name := range samples.Files() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
