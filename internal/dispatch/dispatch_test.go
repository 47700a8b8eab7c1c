package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/message"
	"github.com/mailblast/mailblast/internal/model"
)

// fakeTransport scripts per-recipient outcomes keyed by address.
type fakeTransport struct {
	outcomes   map[string]model.Outcome
	sent       []string
	connectErr error
	connected  bool
	closed     bool
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeTransport) Send(ctx context.Context, msg *model.RenderedMessage) (model.Outcome, error) {
	f.sent = append(f.sent, msg.To)
	if out, ok := f.outcomes[msg.To]; ok {
		return out, errors.New("scripted failure")
	}
	return model.OutcomeSent, nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func testDispatcher(t *testing.T, tr *fakeTransport, dryRun bool) *Dispatcher {
	t.Helper()
	log := logger.New("error", "json")
	renderer := message.NewRenderer("sender@example.com", log)
	return New(tr, renderer, 0, dryRun, log)
}

var tmpl = model.Template{Subject: "Hi {name}", Body: "Hello {name}"}

func recipientList(emails ...string) []model.Recipient {
	list := make([]model.Recipient, 0, len(emails))
	for _, e := range emails {
		list = append(list, model.NewRecipient(e, ""))
	}
	return list
}

func TestRunTalliesAllSent(t *testing.T) {
	tr := &fakeTransport{}
	d := testDispatcher(t, tr, false)

	report := d.Run(context.Background(), recipientList("a@x.com", "b@x.com", "c@x.com"), tmpl, nil)

	assert.Equal(t, model.RunReport{Sent: 3}, report)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, tr.sent)
	assert.True(t, tr.closed)
}

func TestRunFailureIsolation(t *testing.T) {
	// The first recipient fails; the rest of the sequence still runs.
	tr := &fakeTransport{outcomes: map[string]model.Outcome{
		"a@x.com": model.OutcomeRecipientRefused,
	}}
	d := testDispatcher(t, tr, false)

	report := d.Run(context.Background(), recipientList("a@x.com", "b@x.com"), tmpl, nil)

	assert.Equal(t, model.RunReport{Sent: 1, Failed: 1}, report)
	assert.Len(t, tr.sent, 2)
}

func TestRunAllFailureKindsCountAsFailed(t *testing.T) {
	tr := &fakeTransport{outcomes: map[string]model.Outcome{
		"a@x.com": model.OutcomeRecipientRefused,
		"b@x.com": model.OutcomeContentRejected,
		"c@x.com": model.OutcomeOther,
	}}
	d := testDispatcher(t, tr, false)

	report := d.Run(context.Background(), recipientList("a@x.com", "b@x.com", "c@x.com"), tmpl, nil)

	assert.Equal(t, model.RunReport{Failed: 3}, report)
}

func TestRunEmptyList(t *testing.T) {
	tr := &fakeTransport{}
	d := testDispatcher(t, tr, false)

	report := d.Run(context.Background(), nil, tmpl, nil)

	assert.Equal(t, model.RunReport{}, report)
	assert.False(t, tr.connected, "empty list must not open a connection")
}

func TestRunDryRunSendsNothing(t *testing.T) {
	tr := &fakeTransport{}
	d := testDispatcher(t, tr, true)

	report := d.Run(context.Background(), recipientList("a@x.com"), tmpl, nil)

	assert.Equal(t, model.RunReport{}, report)
	assert.False(t, tr.connected)
	assert.Empty(t, tr.sent)
}

func TestRunConnectFailureSkipsAll(t *testing.T) {
	tr := &fakeTransport{connectErr: errors.New("auth failed")}
	d := testDispatcher(t, tr, false)

	report := d.Run(context.Background(), recipientList("a@x.com", "b@x.com"), tmpl, nil)

	assert.Equal(t, model.RunReport{Skipped: 2}, report)
	assert.Empty(t, tr.sent)
}

func TestRunCancellationSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &fakeTransport{}
	d := testDispatcher(t, tr, false)

	report := d.Run(ctx, recipientList("a@x.com", "b@x.com"), tmpl, nil)

	require.Equal(t, 2, report.Skipped)
	assert.Empty(t, tr.sent)
	assert.True(t, tr.closed)
}
