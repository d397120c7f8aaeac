package oob

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "oobctl/errors"
)

// fakeTransport replays scripted outcomes and records every call.
type fakeTransport struct {
	outcomes []AttemptOutcome
	calls    []fakeCall
}

type fakeCall struct {
	method string
	url    string
	body   string
}

func (f *fakeTransport) Send(method, url string, body []byte) AttemptOutcome {
	f.calls = append(f.calls, fakeCall{method, url, string(body)})
	if len(f.outcomes) == 0 {
		return AttemptOutcome{Status: StatusTransportFailure, Message: "no scripted outcome"}
	}
	out := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return out
}

func ok(status int) AttemptOutcome {
	return AttemptOutcome{Succeeded: true, Status: status, Message: "Success"}
}

func fail(status int, msg string) AttemptOutcome {
	return AttemptOutcome{Status: status, Message: msg}
}

var testTarget = Target{Address: "10.0.0.5", Username: "admin", Password: "secret"}

func twoAttempts() []Attempt {
	return []Attempt{
		{Name: "standard", Method: http.MethodPatch, Path: "/a", Success: "done (standard)"},
		{Name: "OEM", Method: http.MethodPatch, Path: "/b", Success: "done (OEM)"},
	}
}

func TestRunFirstSuccessWins(t *testing.T) {
	transport := &fakeTransport{outcomes: []AttemptOutcome{ok(200)}}
	engine := NewEngine(transport, DefaultPolicy())

	result := engine.Run(testTarget, twoAttempts())

	require.True(t, result.Succeeded)
	assert.Equal(t, 200, result.Status)
	assert.Equal(t, "done (standard)", result.Message)
	assert.Len(t, transport.calls, 1)
	assert.Equal(t, "https://10.0.0.5/a", transport.calls[0].url)
}

func TestRunAdvancesOnRetryableStatus(t *testing.T) {
	transport := &fakeTransport{outcomes: []AttemptOutcome{
		fail(400, "schema rejected"),
		ok(200),
	}}
	engine := NewEngine(transport, DefaultPolicy())

	result := engine.Run(testTarget, twoAttempts())

	require.True(t, result.Succeeded)
	assert.Equal(t, "done (OEM)", result.Message, "success attributed to the second variant")
	assert.Len(t, transport.calls, 2)
	assert.Nil(t, result.Err)
}

func TestRunStopsOnTerminalStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode oerrors.ErrorCode
	}{
		{"unauthorized", 401, oerrors.ErrAuth},
		{"forbidden", 403, oerrors.ErrAuth},
		{"not found", 404, oerrors.ErrNotFound},
		{"server error", 500, oerrors.ErrServer},
		{"transport failure", StatusTransportFailure, oerrors.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{outcomes: []AttemptOutcome{fail(tt.status, "nope")}}
			engine := NewEngine(transport, DefaultPolicy())

			result := engine.Run(testTarget, twoAttempts())

			assert.False(t, result.Succeeded)
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, "nope", result.Message)
			assert.Len(t, transport.calls, 1, "must not try further variants")
			assert.Equal(t, tt.wantCode, oerrors.GetCode(result.Err))
		})
	}
}

func TestRunExhaustionAggregatesEveryVariant(t *testing.T) {
	transport := &fakeTransport{outcomes: []AttemptOutcome{
		fail(400, "first rejection"),
		fail(400, "second rejection"),
	}}
	engine := NewEngine(transport, DefaultPolicy())

	result := engine.Run(testTarget, twoAttempts())

	assert.False(t, result.Succeeded)
	assert.Equal(t, 400, result.Status)
	assert.Contains(t, result.Message, "standard: 400 first rejection")
	assert.Contains(t, result.Message, "OEM: 400 second rejection")
	assert.Equal(t, oerrors.ErrProtocolRejected, oerrors.GetCode(result.Err))
}

func TestRunConfigurableRetryStatuses(t *testing.T) {
	policy := DefaultPolicy()
	policy.RetryStatuses = []int{400, 409}

	transport := &fakeTransport{outcomes: []AttemptOutcome{
		fail(409, "conflict"),
		ok(204),
	}}
	engine := NewEngine(transport, policy)

	result := engine.Run(testTarget, twoAttempts())

	assert.True(t, result.Succeeded)
	assert.Len(t, transport.calls, 2)
}

func TestRunFollowUpSuccess(t *testing.T) {
	attempts := []Attempt{
		{
			Name:   "force off",
			Method: http.MethodPost,
			Path:   "/reset",
			FollowUp: &Attempt{
				Name:    "power on",
				Method:  http.MethodPost,
				Path:    "/reset",
				Success: "power-cycled",
			},
			PartialFailure: "host powered off but failed to re-energize",
		},
	}

	transport := &fakeTransport{outcomes: []AttemptOutcome{ok(204), ok(204)}}

	policy := DefaultPolicy()
	policy.SettleDelay = 5 * time.Second

	var slept time.Duration
	engine := NewEngine(transport, policy)
	engine.sleep = func(d time.Duration) { slept = d }

	result := engine.Run(testTarget, attempts)

	require.True(t, result.Succeeded)
	assert.Equal(t, "power-cycled", result.Message)
	assert.Len(t, transport.calls, 2)
	assert.Equal(t, 5*time.Second, slept, "settling delay between off and on")
}

func TestRunFollowUpFailureIsPartial(t *testing.T) {
	attempts := []Attempt{
		{
			Name:   "force off",
			Method: http.MethodPost,
			Path:   "/reset",
			FollowUp: &Attempt{
				Name:   "power on",
				Method: http.MethodPost,
				Path:   "/reset",
			},
			PartialFailure: "host powered off but failed to re-energize",
		},
	}

	transport := &fakeTransport{outcomes: []AttemptOutcome{
		ok(204),
		fail(500, "boom"),
	}}
	engine := NewEngine(transport, DefaultPolicy())
	engine.sleep = func(time.Duration) {}

	result := engine.Run(testTarget, attempts)

	assert.False(t, result.Succeeded)
	assert.True(t, result.Partial)
	assert.Equal(t, 500, result.Status)
	assert.Contains(t, result.Message, "host powered off but failed to re-energize")
	assert.True(t, oerrors.IsPartialPower(result.Err))
	assert.Len(t, transport.calls, 2, "a succeeded off phase is never retried")
}

func TestRunMarshalsPayload(t *testing.T) {
	attempts := []Attempt{{
		Name:    "standard",
		Method:  http.MethodPatch,
		Path:    "/a",
		Payload: map[string]string{"ResetType": "ForceRestart"},
	}}
	transport := &fakeTransport{outcomes: []AttemptOutcome{ok(200)}}
	engine := NewEngine(transport, DefaultPolicy())

	engine.Run(testTarget, attempts)

	require.Len(t, transport.calls, 1)
	assert.JSONEq(t, `{"ResetType":"ForceRestart"}`, transport.calls[0].body)
}
