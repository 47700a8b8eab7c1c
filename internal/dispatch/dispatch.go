// Package dispatch drives the sequential send loop: render, send,
// tally, pace, one recipient at a time.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/message"
	"github.com/mailblast/mailblast/internal/model"
	"github.com/mailblast/mailblast/internal/transport"
)

// Dispatcher sends one message per recipient, strictly in order. A
// pacing delay between sends keeps the run under relay-imposed
// throughput limits; one recipient's failure never aborts the rest of
// the sequence.
type Dispatcher struct {
	transport transport.Transport
	renderer  *message.Renderer
	delay     time.Duration
	dryRun    bool
	log       *logger.Logger
}

// New creates a Dispatcher.
func New(t transport.Transport, r *message.Renderer, delay time.Duration, dryRun bool, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		transport: t,
		renderer:  r,
		delay:     delay,
		dryRun:    dryRun,
		log:       log.WithComponent("dispatch").WithRun(uuid.NewString()),
	}
}

// Run sends the campaign to every recipient in order and returns the
// tally. The tally is owned by the loop alone; no other component
// touches it. Cancelling the context stops the run between sends and
// counts the remaining recipients as skipped.
func (d *Dispatcher) Run(ctx context.Context, recipients []model.Recipient, tmpl model.Template, attachments []string) model.RunReport {
	var report model.RunReport

	if len(recipients) == 0 {
		d.log.Warn().Msg("no valid recipients to send to")
		return report
	}

	if d.dryRun {
		d.log.Info().Int("count", len(recipients)).Msg("dry run: no mail will be sent")
		for _, rcpt := range recipients {
			d.log.Info().Str("to", rcpt.Email).Str("name", rcpt.Name).Msg("would send")
		}
		return report
	}

	if err := d.transport.Connect(ctx); err != nil {
		d.log.Error().Err(err).Msg("failed to connect to mail relay")
		report.Skipped = len(recipients)
		return report
	}
	defer func() {
		if err := d.transport.Close(); err != nil {
			d.log.Warn().Err(err).Msg("error closing relay connection")
		}
	}()

	d.log.Info().Int("count", len(recipients)).Msg("starting send run")

	for i, rcpt := range recipients {
		if err := ctx.Err(); err != nil {
			report.Skipped = len(recipients) - i
			d.log.Warn().Err(err).Int("skipped", report.Skipped).Msg("run cancelled")
			break
		}

		msg := d.renderer.Render(tmpl, rcpt, attachments)

		start := time.Now()
		outcome, err := d.transport.Send(ctx, &msg)
		d.log.SendResult(rcpt.Email, string(outcome), time.Since(start), err)

		if outcome.Failed() {
			report.Failed++
		} else {
			report.Sent++
		}

		// Pacing between sends, not after the last one
		if i < len(recipients)-1 {
			d.sleep(ctx)
		}
	}

	d.log.Info().
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("send run completed")

	return report
}

// sleep waits out the rate-limit delay, waking early on cancellation.
func (d *Dispatcher) sleep(ctx context.Context) {
	if d.delay <= 0 {
		return
	}
	t := time.NewTimer(d.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
