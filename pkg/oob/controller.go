package oob

import (
	"fmt"

	oerrors "oobctl/errors"
)

// Action tokens accepted from the orchestrator.
const (
	ActionSetBoot = "set_boot"
	ActionReset   = "reset"
)

// Controller dispatches one desired action against one target. One
// controller per process invocation; it owns no state beyond the engine.
type Controller struct {
	engine *Engine
	policy Policy
}

// NewController builds a controller around the given transport. Tests
// inject a fake transport here.
func NewController(transport Transport, policy Policy) *Controller {
	return &Controller{
		engine: NewEngine(transport, policy),
		policy: policy,
	}
}

// SetBootOverride forces the next boot to the policy's boot device, once.
func (c *Controller) SetBootOverride(target Target) CascadeResult {
	return c.engine.Run(target, BootOverrideAttempts(c.policy.BootDevice))
}

// PowerReset power-cycles the target.
func (c *Controller) PowerReset(target Target) CascadeResult {
	return c.engine.Run(target, PowerResetAttempts(c.policy))
}

// Run dispatches an action token. An unknown token fails without any
// network activity.
func (c *Controller) Run(target Target, action string) CascadeResult {
	switch action {
	case ActionSetBoot:
		return c.SetBootOverride(target)
	case ActionReset:
		return c.PowerReset(target)
	}

	msg := fmt.Sprintf("unknown action: %s", action)
	return CascadeResult{
		Status:  StatusTransportFailure,
		Message: msg,
		Err:     oerrors.New(oerrors.ErrUnknownAction, msg),
	}
}
