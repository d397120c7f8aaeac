// Package oob drives the out-of-band management controller (BMC) of a
// single machine over the Redfish REST dialect, including the vendor OEM
// deviations old iDRAC/iLO firmware needs. The transport layer deals with
// the quirks those controllers ship with: self-signed certificates,
// deprecated TLS cipher suites, and redirects that must be replayed by
// hand for non-idempotent methods.
package oob

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// StatusTransportFailure is the status sentinel reported when the
	// request never produced an HTTP response (DNS, TCP, TLS, timeout).
	StatusTransportFailure = -1

	// DefaultTimeout bounds every single network call.
	DefaultTimeout = 30 * time.Second
)

// Target identifies one BMC and the credentials to reach it. Credentials
// are held for the lifetime of the invocation only; nothing persists them.
type Target struct {
	Address  string // host or host:port of the management interface
	Username string
	Password string
}

// AttemptOutcome is the result of sending one request to the BMC.
type AttemptOutcome struct {
	Succeeded bool
	Status    int // HTTP status, or StatusTransportFailure
	Message   string
}

// Transport sends one authenticated request to the BMC and reports the
// outcome. It never panics and never returns an error: every failure mode
// is folded into the outcome so the cascade can reason about it.
type Transport interface {
	Send(method, url string, body []byte) AttemptOutcome
}

// HTTPTransport is the real Transport. One instance per invocation; it is
// an explicitly constructed client, never the process-wide default.
type HTTPTransport struct {
	target Target
	client *http.Client
}

// NewHTTPTransport builds a transport for the given target. The TLS
// context skips certificate and hostname verification and re-admits the
// legacy cipher suites Go disables by default, because a lot of deployed
// BMC firmware negotiates nothing newer.
func NewHTTPTransport(target Target, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS10,
		CipherSuites:       legacyCipherSuites(),
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
		// Redirects are replayed manually so the Basic auth header and
		// request body survive the hop. Auto-following would drop both
		// for PATCH/POST.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &HTTPTransport{target: target, client: client}
}

// legacyCipherSuites returns Go's default suites plus the deprecated ones,
// roughly what OpenSSL's "DEFAULT:@SECLEVEL=1" re-admits.
func legacyCipherSuites() []uint16 {
	var ids []uint16
	for _, cs := range tls.CipherSuites() {
		ids = append(ids, cs.ID)
	}
	for _, cs := range tls.InsecureCipherSuites() {
		ids = append(ids, cs.ID)
	}
	return ids
}

// Send issues the request, following at most one redirect. The follow-up
// request carries the same method, headers, and body as the original.
func (t *HTTPTransport) Send(method, rawURL string, body []byte) AttemptOutcome {
	resp, err := t.do(method, rawURL, body)
	if err != nil {
		return AttemptOutcome{
			Status:  StatusTransportFailure,
			Message: fmt.Sprintf("URL error: %v", err),
		}
	}
	defer drainAndClose(resp)

	if !isRedirect(resp.StatusCode) {
		return outcomeFromResponse(resp, "Success")
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return AttemptOutcome{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d redirect without Location header", resp.StatusCode),
		}
	}

	redirectURL := resolveLocation(rawURL, location)
	log.Printf("[OOB HTTP] following redirect to %s", redirectURL)

	followUp, err := t.do(method, redirectURL, body)
	if err != nil {
		return AttemptOutcome{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("redirect to %s failed: %v", location, err),
		}
	}
	defer drainAndClose(followUp)

	// One hop only. A second redirect is a terminal failure.
	if isRedirect(followUp.StatusCode) {
		return AttemptOutcome{
			Status:  followUp.StatusCode,
			Message: fmt.Sprintf("redirect to %s answered with another redirect (HTTP %d)", location, followUp.StatusCode),
		}
	}

	return outcomeFromResponse(followUp, fmt.Sprintf("Success (after redirect to %s)", location))
}

func (t *HTTPTransport) do(method, rawURL string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Basic auth is attached to every constructed request, including the
	// redirect replay: the client stack does not forward it on its own.
	req.SetBasicAuth(t.target.Username, t.target.Password)

	log.Printf("[OOB HTTP] %s %s", method, rawURL)
	return t.client.Do(req)
}

func outcomeFromResponse(resp *http.Response, successMsg string) AttemptOutcome {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return AttemptOutcome{Succeeded: true, Status: resp.StatusCode, Message: successMsg}
	}
	return AttemptOutcome{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

// resolveLocation keeps an absolute Location as-is and resolves a relative
// one against the scheme and host of the original URL.
func resolveLocation(original, location string) string {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location
	}
	u, err := url.Parse(original)
	if err != nil {
		return location
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return u.Scheme + "://" + u.Host + location
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
