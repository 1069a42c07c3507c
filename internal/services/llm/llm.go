// Package llm wraps the third-party text generation APIs used for fortunes.
//
// Calls never panic or throw: every outcome, including a missing credential,
// is reported as a Result so the caller can decide whether to fall back.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golf-fortune-engine/internal/models"
)

// Outcome classifies a generation attempt.
type Outcome int

const (
	// OutcomeOK means Text holds the model output.
	OutcomeOK Outcome = iota
	// OutcomeUnavailable covers missing credentials, network errors, timeouts and non-2xx statuses.
	OutcomeUnavailable
	// OutcomeMalformed means the service answered but the body could not be used.
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Request is a single chat completion request.
type Request struct {
	System           string
	Prompt           string
	Temperature      float64
	TopP             float64
	MaxTokens        int
	FrequencyPenalty float64
	PresencePenalty  float64
	JSONMode         bool
}

// Result is the tagged outcome of a generation call.
type Result struct {
	Outcome  Outcome
	Text     string
	Err      error
	Attempts int
	Latency  time.Duration
}

// OK reports whether the call produced text.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Ok builds a successful result.
func Ok(text string) Result {
	return Result{Outcome: OutcomeOK, Text: text}
}

// Unavailable builds a result for transport level failures.
func Unavailable(err error) Result {
	return Result{Outcome: OutcomeUnavailable, Err: fmt.Errorf("%w: %w", models.ErrRemoteUnavailable, err)}
}

// Malformed builds a result for unusable response bodies.
func Malformed(err error) Result {
	return Result{Outcome: OutcomeMalformed, Err: fmt.Errorf("%w: %w", models.ErrRemoteMalformed, err)}
}

// TextGenerator produces free text or JSON from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) Result
	Model() string
}

// disabledClient stands in when no credential is configured.
type disabledClient struct {
	model string
}

// NewDisabled returns a generator whose every call reports a missing credential.
func NewDisabled(model string) TextGenerator {
	return &disabledClient{model: model}
}

func (d *disabledClient) Generate(context.Context, Request) Result {
	return Unavailable(models.ErrMissingCredential)
}

func (d *disabledClient) Model() string {
	return d.model
}

// IsMissingCredential reports whether r failed because no API key was configured.
func IsMissingCredential(r Result) bool {
	return r.Err != nil && errors.Is(r.Err, models.ErrMissingCredential)
}

// withDefaultTimeout bounds ctx by timeout unless it already has a deadline.
func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// sleepBackoff waits 2^(attempt-1) * base, returning early if ctx is done.
func sleepBackoff(ctx context.Context, base time.Duration, attempt int) error {
	if attempt <= 0 {
		return nil
	}
	timer := time.NewTimer(base * time.Duration(1<<uint(attempt-1)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
