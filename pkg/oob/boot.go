package oob

import "net/http"

// Endpoint paths. The standard paths follow the generic Redfish schema;
// the Dell paths cover older iDRAC firmware that exposes the system
// resource under an embedded identifier.
const (
	standardSystemPath = "/redfish/v1/Systems/1"
	dellSystemPath     = "/redfish/v1/Systems/System.Embedded.1"
)

type bootPayload struct {
	Boot bootOverride `json:"Boot"`
}

type bootOverride struct {
	Enabled string `json:"BootSourceOverrideEnabled"`
	Target  string `json:"BootSourceOverrideTarget"`
}

// BootOverrideAttempts builds the cascade for "boot from this device once
// on the next boot": the standard system resource first, then the Dell
// OEM variant.
func BootOverrideAttempts(device string) []Attempt {
	if device == "" {
		device = "Pxe"
	}

	payload := bootPayload{
		Boot: bootOverride{
			Enabled: "Once",
			Target:  device,
		},
	}

	return []Attempt{
		{
			Name:    "standard boot override",
			Method:  http.MethodPatch,
			Path:    standardSystemPath,
			Payload: payload,
			Success: "Boot device set successfully",
		},
		{
			Name:    "Dell OEM boot override",
			Method:  http.MethodPatch,
			Path:    dellSystemPath,
			Payload: payload,
			Success: "Boot device set successfully (Dell OEM)",
		},
	}
}
