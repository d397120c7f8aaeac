package inventory

import (
	"encoding/json"
	"fmt"
	"io"
)

// LoadMachines decodes an exported MAAS machine list (the output of
// `maas <profile> machines read` or the /api/2.0/machines/ endpoint).
func LoadMachines(r io.Reader) ([]Machine, error) {
	var machines []Machine
	if err := json.NewDecoder(r).Decode(&machines); err != nil {
		return nil, fmt.Errorf("decoding machine records: %w", err)
	}
	return machines, nil
}

// LoadSubnets decodes an exported MAAS subnet list.
func LoadSubnets(r io.Reader) ([]Subnet, error) {
	var subnets []Subnet
	if err := json.NewDecoder(r).Decode(&subnets); err != nil {
		return nil, fmt.Errorf("decoding subnet records: %w", err)
	}
	return subnets, nil
}
