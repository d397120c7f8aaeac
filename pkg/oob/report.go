package oob

import (
	"encoding/json"
	"io"
)

// Result is the one-line machine-readable record handed back to the
// invoking orchestrator on stdout.
type Result struct {
	Failed     bool   `json:"failed"`
	Changed    bool   `json:"changed"`
	StatusCode int    `json:"status_code"`
	Msg        string `json:"msg"`
}

// ResultFrom normalizes a cascade outcome. Changed mirrors success: these
// actions have side effects, so a successful invocation always changed the
// target. A partial power failure reports failed=true, changed=false with
// its own message; the distinct text is the operator's cue that the host
// was left powered off.
func ResultFrom(cascade CascadeResult) Result {
	return Result{
		Failed:     !cascade.Succeeded,
		Changed:    cascade.Succeeded,
		StatusCode: cascade.Status,
		Msg:        cascade.Message,
	}
}

// UsageResult reports a malformed invocation. No target was contacted, so
// the status code is the transport sentinel.
func UsageResult(msg string) Result {
	return Result{
		Failed:     true,
		StatusCode: StatusTransportFailure,
		Msg:        msg,
	}
}

// Write emits the record as a single JSON line.
func (r Result) Write(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// ExitCode maps the record to the process exit status.
func (r Result) ExitCode() int {
	if r.Failed {
		return 1
	}
	return 0
}
