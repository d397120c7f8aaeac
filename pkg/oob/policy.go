package oob

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stmcginnis/gofish/redfish"
)

// Environment variables recognized by PolicyFromEnv. An optional .env file
// may be loaded by the caller before reading these.
const (
	EnvRetryStatuses  = "OOB_RETRY_STATUSES"
	EnvTimeoutSeconds = "OOB_TIMEOUT_SECONDS"
	EnvSettleSeconds  = "OOB_SETTLE_SECONDS"
	EnvLegacyReset    = "OOB_LEGACY_RESET"
	EnvResetType      = "OOB_RESET_TYPE"
	EnvBootDevice     = "OOB_BOOT_DEVICE"
)

// Policy holds the tunables of the attempt cascade. The retry trigger and
// the settling delay are empirical, observed-firmware values rather than
// documented protocol contracts, so both are configuration rather than
// constants.
type Policy struct {
	// RetryStatuses are the HTTP statuses after which the next vendor
	// variant is still worth trying. 400 means the endpoint understood
	// the route but rejected the schema; auth, not-found and server
	// errors are terminal.
	RetryStatuses []int

	// Timeout bounds each individual network call.
	Timeout time.Duration

	// SettleDelay is the wait between the power-off and power-on phases
	// of the two-phase reset.
	SettleDelay time.Duration

	// LegacyReset appends the end-of-life Dell manager-reset stage to the
	// power cascade.
	LegacyReset bool

	// ResetType is the reset requested from single-shot reset stages.
	ResetType redfish.ResetType

	// BootDevice is the one-time boot override target.
	BootDevice string
}

// DefaultPolicy returns the policy matching stock BMC behavior.
func DefaultPolicy() Policy {
	return Policy{
		RetryStatuses: []int{400},
		Timeout:       DefaultTimeout,
		SettleDelay:   5 * time.Second,
		ResetType:     redfish.ForceRestartResetType,
		BootDevice:    "Pxe",
	}
}

// PolicyFromEnv starts from the defaults and applies any overrides found
// in the environment. Unparseable values are ignored.
func PolicyFromEnv() Policy {
	p := DefaultPolicy()

	if v := os.Getenv(EnvRetryStatuses); v != "" {
		var statuses []int
		for _, part := range strings.Split(v, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				statuses = append(statuses, n)
			}
		}
		if len(statuses) > 0 {
			p.RetryStatuses = statuses
		}
	}
	if v := os.Getenv(EnvTimeoutSeconds); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv(EnvSettleSeconds); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.SettleDelay = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv(EnvLegacyReset); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.LegacyReset = b
		}
	}
	if v := os.Getenv(EnvResetType); v != "" {
		p.ResetType = redfish.ResetType(v)
	}
	if v := os.Getenv(EnvBootDevice); v != "" {
		p.BootDevice = v
	}

	return p
}

// Retryable reports whether a failed attempt with the given status leaves
// the next vendor variant worth trying.
func (p Policy) Retryable(status int) bool {
	for _, s := range p.RetryStatuses {
		if s == status {
			return true
		}
	}
	return false
}
