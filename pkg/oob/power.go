package oob

import (
	"net/http"

	"github.com/stmcginnis/gofish/redfish"
)

const (
	standardResetPath   = standardSystemPath + "/Actions/ComputerSystem.Reset"
	dellResetPath       = dellSystemPath + "/Actions/ComputerSystem.Reset"
	dellLegacyResetPath = dellSystemPath + "/Actions/Oem/EID_674_Manager.Reset"
)

type resetPayload struct {
	ResetType redfish.ResetType `json:"ResetType"`
}

// PowerResetAttempts builds the reset cascade:
//
//  1. standard reset with the requested type
//  2. Dell OEM reset, same type
//  3. Dell OEM power-on, for targets that are currently off and reject a
//     restart as semantically invalid
//  4. explicit force-off, settle, power-on sequence
//
// An optional legacy manager-reset stage is appended for end-of-life
// firmware when the policy asks for it.
func PowerResetAttempts(policy Policy) []Attempt {
	resetType := policy.ResetType
	if resetType == "" {
		resetType = redfish.ForceRestartResetType
	}

	attempts := []Attempt{
		{
			Name:    "standard reset",
			Method:  http.MethodPost,
			Path:    standardResetPath,
			Payload: resetPayload{ResetType: resetType},
			Success: "Server reset triggered",
		},
		{
			Name:    "Dell OEM reset",
			Method:  http.MethodPost,
			Path:    dellResetPath,
			Payload: resetPayload{ResetType: resetType},
			Success: "Server reset triggered (Dell OEM)",
		},
		{
			Name:    "Dell OEM power on",
			Method:  http.MethodPost,
			Path:    dellResetPath,
			Payload: resetPayload{ResetType: redfish.OnResetType},
			Success: "Server powered on (Dell OEM)",
		},
		{
			Name:           "Dell OEM force off",
			Method:         http.MethodPost,
			Path:           dellResetPath,
			Payload:        resetPayload{ResetType: redfish.ForceOffResetType},
			PartialFailure: "host powered off but failed to re-energize",
			FollowUp: &Attempt{
				Name:    "Dell OEM power on after force off",
				Method:  http.MethodPost,
				Path:    dellResetPath,
				Payload: resetPayload{ResetType: redfish.OnResetType},
				Success: "Server power-cycled (Dell OEM force off/on)",
			},
		},
	}

	if policy.LegacyReset {
		attempts = append(attempts, Attempt{
			Name:    "Dell legacy manager reset",
			Method:  http.MethodPost,
			Path:    dellLegacyResetPath,
			Payload: resetPayload{ResetType: redfish.GracefulRestartResetType},
			Success: "Server reset triggered (Dell legacy OEM)",
		})
	}

	return attempts
}
