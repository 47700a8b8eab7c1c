package model

// Outcome classifies the result of one transmission attempt.
type Outcome string

const (
	OutcomeSent             Outcome = "sent"
	OutcomeRecipientRefused Outcome = "recipient_refused"
	OutcomeContentRejected  Outcome = "content_rejected"
	OutcomeOther            Outcome = "other_error"
)

// Failed reports whether the outcome counts against the failed tally.
func (o Outcome) Failed() bool {
	return o != OutcomeSent
}

// RunReport is the send tally for one invocation. It is owned and
// mutated exclusively by the dispatch loop.
type RunReport struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Total returns the number of recipients accounted for.
func (r RunReport) Total() int {
	return r.Sent + r.Failed + r.Skipped
}
