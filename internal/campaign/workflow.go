// Package campaign implements the email-campaign workflow: a per-session
// state machine that validates a draft, requests AI content generation, and
// submits the result for delivery. Generation and delivery are performed by
// external collaborators behind the Generator and Sender interfaces; this
// package never produces email text or talks to a mail provider itself.
package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/sales-dashboard/internal/model"
	"github.com/sells-group/sales-dashboard/internal/monitoring"
)

// Phase is the current state of the workflow.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDrafting   Phase = "drafting"
	PhaseGenerating Phase = "generating"
	PhaseGenerated  Phase = "generated"
	PhaseSending    Phase = "sending"
	PhaseSent       Phase = "sent"
	PhaseSendFailed Phase = "send_failed"
)

// Draft is the mutable campaign record owned by one workflow session. It is
// discarded with the session; nothing is persisted.
type Draft struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	Subject       string  `json:"subject"`
	LeadScore     float64 `json:"lead_score"`
	QuoteValue    float64 `json:"quote_value"`
	ItemCount     int     `json:"item_count"`
	GeneratedBody string  `json:"generated_body,omitempty"`
}

// GenerationInput is the payload handed to the external generator.
type GenerationInput struct {
	CustomerName string
	LeadScore    float64
	QuoteValue   float64
	ItemCount    int
}

// SendInput is the payload handed to the external sender. Body carries the
// generated text for senders that deliver it directly; the remote backend
// regenerates server-side and ignores it.
type SendInput struct {
	CustomerName  string
	CustomerEmail string
	Subject       string
	LeadScore     float64
	QuoteValue    float64
	ItemCount     int
	Body          string
}

// SendOutcome is the provider's verdict. Success=false carries the
// provider's message and is treated like a transport failure.
type SendOutcome struct {
	Success bool
	Message string
}

// Generator produces a personalized email body for a draft.
type Generator interface {
	GenerateEmail(ctx context.Context, in GenerationInput) (string, error)
}

// Sender delivers a generated email.
type Sender interface {
	Send(ctx context.Context, in SendInput) (SendOutcome, error)
}

// DefaultSubject pre-fills new drafts.
const DefaultSubject = "Exclusive IT Solutions for Your Business"

// DefaultSentWindow is how long the workflow rests in PhaseSent before
// reverting to PhaseGenerated. The sent banner is transient display state,
// not a persisted fact.
const DefaultSentWindow = 5 * time.Second

// Workflow is a single campaign session. Methods are safe for concurrent
// use; the Generating and Sending phases guard against a second in-flight
// exchange of the same kind.
type Workflow struct {
	mu sync.Mutex

	id         string
	phase      Phase
	draft      Draft
	gen        Generator
	sender     Sender
	sentWindow time.Duration

	genSeq uint64 // monotonic; stale generation responses are discarded
	closed bool
	revert *time.Timer
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithSentWindow overrides the sent-banner display window.
func WithSentWindow(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.sentWindow = d
		}
	}
}

// New creates an idle workflow session.
func New(gen Generator, sender Sender, opts ...Option) *Workflow {
	w := &Workflow{
		id:         uuid.NewString(),
		phase:      PhaseIdle,
		draft:      Draft{Subject: DefaultSubject},
		gen:        gen,
		sender:     sender,
		sentWindow: DefaultSentWindow,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the session identifier used in logs.
func (w *Workflow) ID() string {
	return w.id
}

// Phase returns the current workflow phase.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Draft returns a snapshot of the current draft.
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// SelectLead copies a lead's name, score, value, and item count into the
// draft and enters PhaseDrafting. The customer email is never copied; it
// must be entered manually. Valid only from PhaseIdle or PhaseDrafting.
func (w *Workflow) SelectLead(l model.Lead) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseIdle && w.phase != PhaseDrafting {
		return &ValidationError{Reason: "a lead can only be selected before generation starts"}
	}

	w.draft.CustomerName = l.CompanyName
	w.draft.LeadScore = l.LeadScore
	w.draft.QuoteValue = l.QuoteValue
	w.draft.ItemCount = l.ItemCount
	w.phase = PhaseDrafting

	zap.L().Debug("campaign: lead selected",
		zap.String("session", w.id),
		zap.String("customer", l.CompanyName),
	)
	return nil
}

// Field editors. Editing while in PhaseGenerated intentionally does not
// re-enter PhaseDrafting; a fresh generation overwrites the body regardless.

// SetCustomerName updates the draft's customer name.
func (w *Workflow) SetCustomerName(name string) {
	w.edit(func(d *Draft) { d.CustomerName = name })
}

// SetCustomerEmail updates the draft's recipient address.
func (w *Workflow) SetCustomerEmail(email string) {
	w.edit(func(d *Draft) { d.CustomerEmail = email })
}

// SetSubject updates the draft's subject line.
func (w *Workflow) SetSubject(subject string) {
	w.edit(func(d *Draft) { d.Subject = subject })
}

// SetLeadScore updates the draft's lead score. A score of exactly 0 counts
// as unset for generation validation; see RequestGeneration.
func (w *Workflow) SetLeadScore(score float64) {
	w.edit(func(d *Draft) { d.LeadScore = score })
}

// SetQuoteValue updates the draft's quote value.
func (w *Workflow) SetQuoteValue(v float64) {
	w.edit(func(d *Draft) { d.QuoteValue = v })
}

// SetItemCount updates the draft's item count.
func (w *Workflow) SetItemCount(n int) {
	w.edit(func(d *Draft) { d.ItemCount = n })
}

func (w *Workflow) edit(fn func(*Draft)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.draft)
	if w.phase == PhaseIdle {
		w.phase = PhaseDrafting
	}
}

// validateGeneration checks the generation preconditions. Zero means unset
// for score, value, and count: a legitimately zero quote or score cannot
// pass validation. Known quirk, preserved deliberately.
func validateGeneration(d Draft) error {
	switch {
	case d.CustomerName == "":
		return &ValidationError{Reason: "customer name is required"}
	case d.LeadScore == 0:
		return &ValidationError{Reason: "lead score is required"}
	case d.QuoteValue == 0:
		return &ValidationError{Reason: "quote value is required"}
	case d.ItemCount == 0:
		return &ValidationError{Reason: "item count is required"}
	}
	return nil
}

// RequestGeneration validates the draft and runs one generation exchange
// with the external generator. On success the generated body is stored and
// the workflow enters PhaseGenerated. On failure the prior phase is
// restored and the draft is untouched.
//
// Only one generation may be in flight; a concurrent call fails validation.
// If ctx is cancelled while the exchange is pending, the call returns
// immediately and the late response is discarded unless it is still the
// newest request when it lands.
func (w *Workflow) RequestGeneration(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return &ValidationError{Reason: "session is closed"}
	}
	if w.phase == PhaseGenerating {
		w.mu.Unlock()
		return &ValidationError{Reason: "a generation request is already in flight"}
	}
	if w.phase == PhaseSending {
		w.mu.Unlock()
		return &ValidationError{Reason: "a send request is in flight"}
	}
	if err := validateGeneration(w.draft); err != nil {
		w.mu.Unlock()
		return err
	}

	prior := w.phase
	w.phase = PhaseGenerating
	w.genSeq++
	seq := w.genSeq
	in := GenerationInput{
		CustomerName: w.draft.CustomerName,
		LeadScore:    w.draft.LeadScore,
		QuoteValue:   w.draft.QuoteValue,
		ItemCount:    w.draft.ItemCount,
	}
	w.mu.Unlock()

	type result struct {
		body string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		body, err := w.gen.GenerateEmail(ctx, in)
		w.finishGeneration(seq, prior, body, err)
		done <- result{body: body, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return &RemoteError{Op: "generate", Err: res.err}
		}
		return nil
	case <-ctx.Done():
		// Abandoned: restore the prior phase now; the in-flight exchange
		// resolves in the background and is discarded if superseded.
		w.abortGeneration(seq, prior)
		return &RemoteError{Op: "generate", Err: ctx.Err()}
	}
}

// finishGeneration applies a generation result. Responses that are stale
// (a newer request was issued) or arrive after Close are dropped without
// mutating the draft.
func (w *Workflow) finishGeneration(seq uint64, prior Phase, body string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.genSeq != seq {
		monitoring.RecordGeneration("stale")
		zap.L().Debug("campaign: discarding stale generation response",
			zap.String("session", w.id),
			zap.Uint64("seq", seq),
		)
		return
	}

	if err != nil {
		monitoring.RecordGeneration("failure")
		if w.phase == PhaseGenerating {
			w.phase = prior
		}
		zap.L().Warn("campaign: generation failed",
			zap.String("session", w.id),
			zap.Error(err),
		)
		return
	}

	w.draft.GeneratedBody = body
	w.phase = PhaseGenerated
	monitoring.RecordGeneration("success")
	zap.L().Info("campaign: email generated",
		zap.String("session", w.id),
		zap.String("customer", w.draft.CustomerName),
		zap.Int("body_bytes", len(body)),
	)
}

// abortGeneration restores the prior phase after the caller stopped waiting.
// The sequence stays claimed so a late response for it is still applied only
// if no newer request superseded it.
func (w *Workflow) abortGeneration(seq uint64, prior Phase) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.genSeq == seq && w.phase == PhaseGenerating {
		w.phase = prior
	}
}

// validateSend checks the send preconditions.
func validateSend(d Draft) error {
	switch {
	case d.CustomerEmail == "":
		return &ValidationError{Reason: "recipient email is required"}
	case d.GeneratedBody == "":
		return &ValidationError{Reason: "generate an email before sending"}
	}
	return nil
}

// RequestSend submits the generated draft to the external sender. On a
// successful delivery the workflow shows PhaseSent for the configured
// window, then reverts to PhaseGenerated. An explicit success=false verdict
// and a transport failure are handled identically: PhaseSendFailed with the
// provider's message surfaced, body unchanged, retry permitted.
func (w *Workflow) RequestSend(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return &ValidationError{Reason: "session is closed"}
	}
	if w.phase == PhaseSending {
		w.mu.Unlock()
		return &ValidationError{Reason: "a send request is already in flight"}
	}
	if w.phase == PhaseGenerating {
		w.mu.Unlock()
		return &ValidationError{Reason: "a generation request is in flight"}
	}
	if err := validateSend(w.draft); err != nil {
		w.mu.Unlock()
		return err
	}

	w.phase = PhaseSending
	in := SendInput{
		CustomerName:  w.draft.CustomerName,
		CustomerEmail: w.draft.CustomerEmail,
		Subject:       w.draft.Subject,
		LeadScore:     w.draft.LeadScore,
		QuoteValue:    w.draft.QuoteValue,
		ItemCount:     w.draft.ItemCount,
		Body:          w.draft.GeneratedBody,
	}
	w.mu.Unlock()

	outcome, err := w.sender.Send(ctx, in)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return &ValidationError{Reason: "session is closed"}
	}

	if err != nil || !outcome.Success {
		w.phase = PhaseSendFailed
		monitoring.RecordSend("failure")
		zap.L().Warn("campaign: send failed",
			zap.String("session", w.id),
			zap.String("recipient", in.CustomerEmail),
			zap.String("provider_message", outcome.Message),
			zap.Error(err),
		)
		return &RemoteError{Op: "send", Message: outcome.Message, Err: err}
	}

	w.phase = PhaseSent
	monitoring.RecordSend("success")
	zap.L().Info("campaign: email sent",
		zap.String("session", w.id),
		zap.String("recipient", in.CustomerEmail),
	)

	// Transient banner: revert to the retryable resting phase after the
	// display window.
	if w.revert != nil {
		w.revert.Stop()
	}
	w.revert = time.AfterFunc(w.sentWindow, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.closed && w.phase == PhaseSent {
			w.phase = PhaseGenerated
		}
	})

	return nil
}

// Retry re-invokes the send after a failure. Valid only from PhaseSendFailed;
// the generated body is reused as-is.
func (w *Workflow) Retry(ctx context.Context) error {
	w.mu.Lock()
	if w.phase != PhaseSendFailed {
		w.mu.Unlock()
		return &ValidationError{Reason: "nothing to retry"}
	}
	// Return control to the retryable resting phase, then send again.
	w.phase = PhaseGenerated
	w.mu.Unlock()
	return w.RequestSend(ctx)
}

// Close abandons the session. In-flight exchanges are not awaited; their
// late responses are discarded without mutation.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.revert != nil {
		w.revert.Stop()
		w.revert = nil
	}
}
