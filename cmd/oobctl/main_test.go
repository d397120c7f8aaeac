package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oobctl/pkg/oob"
)

// fakeTransport scripts BMC responses and records every call.
type fakeTransport struct {
	outcomes []oob.AttemptOutcome
	calls    []string
}

func (f *fakeTransport) Send(method, url string, body []byte) oob.AttemptOutcome {
	f.calls = append(f.calls, method+" "+url)
	if len(f.outcomes) == 0 {
		return oob.AttemptOutcome{Status: oob.StatusTransportFailure, Message: "no scripted outcome"}
	}
	out := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return out
}

func decodeResult(t *testing.T, buf *bytes.Buffer) oob.Result {
	t.Helper()
	var result oob.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	return result
}

func TestSetBootEndToEnd(t *testing.T) {
	// Standard endpoint rejects the schema, the Dell OEM variant lands.
	transport := &fakeTransport{outcomes: []oob.AttemptOutcome{
		{Status: 400, Message: "HTTP error: 400 Bad Request"},
		{Succeeded: true, Status: 200, Message: "Success"},
	}}

	var out bytes.Buffer
	exit := execute([]string{"10.0.0.5", "admin", "secret", "set_boot"}, &out, transport)

	assert.Equal(t, 0, exit)
	result := decodeResult(t, &out)
	assert.False(t, result.Failed)
	assert.True(t, result.Changed)
	assert.Equal(t, 200, result.StatusCode)
	assert.Contains(t, result.Msg, "OEM")

	require.Len(t, transport.calls, 2)
	assert.Equal(t, "PATCH https://10.0.0.5/redfish/v1/Systems/1", transport.calls[0])
	assert.Equal(t, "PATCH https://10.0.0.5/redfish/v1/Systems/System.Embedded.1", transport.calls[1])
}

func TestResetTerminalAuthFailure(t *testing.T) {
	transport := &fakeTransport{outcomes: []oob.AttemptOutcome{
		{Status: 401, Message: "HTTP error: 401 Unauthorized"},
	}}

	var out bytes.Buffer
	exit := execute([]string{"10.0.0.5", "admin", "wrong", "reset"}, &out, transport)

	assert.Equal(t, 1, exit)
	result := decodeResult(t, &out)
	assert.True(t, result.Failed)
	assert.Equal(t, 401, result.StatusCode)
	assert.Len(t, transport.calls, 1, "auth failure must not cascade across variants")
}

func TestUnknownAction(t *testing.T) {
	transport := &fakeTransport{}

	var out bytes.Buffer
	exit := execute([]string{"10.0.0.5", "admin", "secret", "frobnicate"}, &out, transport)

	assert.Equal(t, 1, exit)
	result := decodeResult(t, &out)
	assert.True(t, result.Failed)
	assert.Contains(t, result.Msg, "unknown action")
	assert.Empty(t, transport.calls)
}

func TestWrongArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", nil},
		{"too few", []string{"10.0.0.5", "admin"}},
		{"too many", []string{"10.0.0.5", "admin", "secret", "reset", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{}

			var out bytes.Buffer
			exit := execute(tt.args, &out, transport)

			assert.Equal(t, 1, exit)
			result := decodeResult(t, &out)
			assert.True(t, result.Failed)
			assert.Contains(t, result.Msg, "usage:")
			assert.Empty(t, transport.calls)
		})
	}
}

func TestPasswordStartingWithDash(t *testing.T) {
	transport := &fakeTransport{outcomes: []oob.AttemptOutcome{
		{Succeeded: true, Status: 200, Message: "Success"},
	}}

	var out bytes.Buffer
	exit := execute([]string{"10.0.0.5", "admin", "--secret", "set_boot"}, &out, transport)

	assert.Equal(t, 0, exit)
	assert.Len(t, transport.calls, 1)
}
