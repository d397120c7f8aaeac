package oob

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	oerrors "oobctl/errors"
)

// Attempt is one vendor variant of a desired action: a method, an endpoint
// path under the target's base URL, and a payload. Cascades are ordered by
// vendor-compatibility priority (standard endpoint first, then OEM
// variants, then legacy endpoints), so adding a variant is a data change.
type Attempt struct {
	Name    string // variant label for operator-facing messages
	Method  string
	Path    string // path under https://<address>
	Payload any    // marshalled to JSON; nil means no body

	// Success overrides the transport's message when this attempt lands,
	// so the result attributes the outcome to the right variant.
	Success string

	// FollowUp, when set, is sent once this attempt succeeds and the
	// settling delay has elapsed. Used for the off-then-on power
	// sequence. A failed follow-up is a terminal partial failure: the
	// primary attempt already changed hardware state and is never
	// retried or reverted.
	FollowUp *Attempt

	// PartialFailure prefixes the message reported when this attempt
	// lands but its follow-up does not.
	PartialFailure string
}

// CascadeResult is the aggregate outcome of running a cascade.
type CascadeResult struct {
	Succeeded bool

	// Partial is set when a destructive first phase landed but the
	// restoring second phase did not (powered off, failed to
	// re-energize). Operationally distinct from a plain failure: the
	// hardware needs manual attention.
	Partial bool

	Status  int
	Message string

	// Err carries the failure classification; nil on success.
	Err error
}

// Engine runs a cascade of attempts against one target, stopping at the
// first success or the first failure the policy treats as terminal.
type Engine struct {
	transport Transport
	policy    Policy
	sleep     func(time.Duration)
}

// NewEngine builds an engine around the given transport. The transport is
// injected so tests can substitute a fake.
func NewEngine(transport Transport, policy Policy) *Engine {
	return &Engine{
		transport: transport,
		policy:    policy,
		sleep:     time.Sleep,
	}
}

// Run executes the attempts in order. The first success wins. A failure
// whose status the policy does not mark retryable stops the cascade
// immediately: an unreachable or unauthorized target fails identically for
// every vendor variant, so exhausting them wastes time against hardware.
// If every attempt fails retryably, the result aggregates each variant's
// status and message so the operator can tell "no variant worked" from
// "target unreachable".
func (e *Engine) Run(target Target, attempts []Attempt) CascadeResult {
	var failures []string
	lastStatus := StatusTransportFailure

	for _, attempt := range attempts {
		outcome := e.send(target, attempt)

		if outcome.Succeeded {
			if attempt.FollowUp == nil {
				return CascadeResult{
					Succeeded: true,
					Status:    outcome.Status,
					Message:   successMessage(attempt, outcome),
				}
			}
			return e.runFollowUp(target, attempt)
		}

		lastStatus = outcome.Status
		failures = append(failures, fmt.Sprintf("%s: %d %s", attempt.Name, outcome.Status, outcome.Message))

		if !e.policy.Retryable(outcome.Status) {
			code := oerrors.ClassifyStatus(outcome.Status)
			log.Printf("[OOB CASCADE] %s failed terminally (%d), not trying further variants", attempt.Name, outcome.Status)
			return CascadeResult{
				Status:  outcome.Status,
				Message: outcome.Message,
				Err:     oerrors.New(code, outcome.Message),
			}
		}

		log.Printf("[OOB CASCADE] %s rejected (%d), trying next variant", attempt.Name, outcome.Status)
	}

	msg := "all variants failed: " + strings.Join(failures, "; ")
	return CascadeResult{
		Status:  lastStatus,
		Message: msg,
		Err:     oerrors.New(oerrors.ErrProtocolRejected, msg),
	}
}

// runFollowUp handles the second phase of a two-phase attempt. The primary
// already succeeded, so whatever happens here the cascade is over.
func (e *Engine) runFollowUp(target Target, attempt Attempt) CascadeResult {
	log.Printf("[OOB CASCADE] %s landed, settling %s before follow-up", attempt.Name, e.policy.SettleDelay)
	e.sleep(e.policy.SettleDelay)

	outcome := e.send(target, *attempt.FollowUp)
	if outcome.Succeeded {
		return CascadeResult{
			Succeeded: true,
			Status:    outcome.Status,
			Message:   successMessage(*attempt.FollowUp, outcome),
		}
	}

	prefix := attempt.PartialFailure
	if prefix == "" {
		prefix = "first phase succeeded but follow-up failed"
	}
	msg := fmt.Sprintf("%s: %s: %d %s", prefix, attempt.FollowUp.Name, outcome.Status, outcome.Message)
	return CascadeResult{
		Partial: true,
		Status:  outcome.Status,
		Message: msg,
		Err:     oerrors.New(oerrors.ErrPartialPower, msg),
	}
}

func (e *Engine) send(target Target, attempt Attempt) AttemptOutcome {
	var body []byte
	if attempt.Payload != nil {
		var err error
		body, err = json.Marshal(attempt.Payload)
		if err != nil {
			return AttemptOutcome{
				Status:  StatusTransportFailure,
				Message: fmt.Sprintf("encoding %s payload: %v", attempt.Name, err),
			}
		}
	}

	url := fmt.Sprintf("https://%s%s", target.Address, attempt.Path)
	return e.transport.Send(attempt.Method, url, body)
}

func successMessage(attempt Attempt, outcome AttemptOutcome) string {
	if attempt.Success != "" {
		return attempt.Success
	}
	return outcome.Message
}
