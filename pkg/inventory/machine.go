// Package inventory converts exported hardware-inventory machine records
// into the YAML deployment inventory consumed by the PXE provisioning
// tooling. The interesting part is the per-host out-of-band descriptor: it
// maps the inventory source's power-management metadata onto the small set
// of OOB controller types the boot/power tool knows how to drive.
package inventory

import (
	"fmt"
	"strings"
)

// Machine is the subset of a MAAS machine record this tool consumes.
type Machine struct {
	Hostname        string         `json:"hostname"`
	FQDN            string         `json:"fqdn"`
	StatusName      string         `json:"status_name"`
	TagNames        []string       `json:"tag_names"`
	PowerType       string         `json:"power_type"`
	PowerParameters map[string]any `json:"power_parameters"`
	BootInterface   *Interface     `json:"boot_interface"`
	Interfaces      []Interface    `json:"interface_set"`
	BlockDevices    []BlockDevice  `json:"blockdevice_set"`
}

// Interface is one network interface of a machine.
type Interface struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	MACAddress string `json:"mac_address"`
	Links      []Link `json:"links"`
}

// Link is one address binding of an interface.
type Link struct {
	Mode      string `json:"mode"`
	IPAddress string `json:"ip_address"`
}

// BlockDevice is one disk of a machine.
type BlockDevice struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Subnet is the subset of a MAAS subnet record this tool consumes.
type Subnet struct {
	CIDR       string   `json:"cidr"`
	GatewayIP  string   `json:"gateway_ip"`
	DNSServers []string `json:"dns_servers"`
	Managed    bool     `json:"managed"`
	AllowProxy bool     `json:"allow_proxy"`
}

// OOBType enumerates the out-of-band controller kinds downstream tooling
// can drive. Manual is the fallback for machines with no usable
// power-management metadata.
type OOBType string

const (
	OOBIPMI    OOBType = "ipmi"
	OOBVirsh   OOBType = "virsh"
	OOBHMC     OOBType = "hmc"
	OOBILO     OOBType = "ilo"
	OOBIDRAC   OOBType = "idrac"
	OOBRedfish OOBType = "redfish"
	OOBManual  OOBType = "manual"
)

// OOBDescriptor is the per-host out-of-band descriptor handed to the
// boot/power control tool, one host at a time, as its CLI arguments.
type OOBDescriptor struct {
	Type     OOBType `json:"oob_type"                yaml:"oob_type"                jsonschema:"title=OOB controller type"`
	Address  string  `json:"oob_address,omitempty"   yaml:"oob_address,omitempty"   jsonschema:"title=Management address,description=host or host:port of the management interface"`
	Username string  `json:"oob_username,omitempty"  yaml:"oob_username,omitempty"`
	Password string  `json:"oob_password,omitempty"  yaml:"oob_password,omitempty"`
}

// ExtractOOB maps the machine's power-management metadata to an OOB
// descriptor. Vendor power-type strings are matched loosely ("hpilo" and
// "ilo" are both iLO, "drac" covers iDRAC variants); anything unknown
// passes through, and a missing power type falls back to manual.
func ExtractOOB(m Machine) OOBDescriptor {
	powerType := strings.ToLower(m.PowerType)

	var oobType OOBType
	switch {
	case strings.Contains(powerType, "ipmi"):
		oobType = OOBIPMI
	case strings.Contains(powerType, "virsh"):
		oobType = OOBVirsh
	case strings.Contains(powerType, "hmc"):
		oobType = OOBHMC
	case strings.Contains(powerType, "ilo"):
		oobType = OOBILO
	case strings.Contains(powerType, "drac"):
		oobType = OOBIDRAC
	case strings.Contains(powerType, "redfish"):
		oobType = OOBRedfish
	case powerType == "":
		oobType = OOBManual
	default:
		oobType = OOBType(m.PowerType)
	}

	return OOBDescriptor{
		Type:     oobType,
		Address:  powerParam(m.PowerParameters, "power_address"),
		Username: powerParam(m.PowerParameters, "power_user"),
		Password: powerParam(m.PowerParameters, "power_pass"),
	}
}

// powerParam reads one power parameter as a string. MAAS exports mix
// strings and numbers in this map depending on the driver.
func powerParam(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// PrimaryMAC returns the MAC of the boot interface, falling back to the
// first interface.
func (m Machine) PrimaryMAC() string {
	if m.BootInterface != nil && m.BootInterface.MACAddress != "" {
		return m.BootInterface.MACAddress
	}
	if len(m.Interfaces) > 0 {
		return m.Interfaces[0].MACAddress
	}
	return ""
}

// PrimaryIP returns the first static IP, preferring the boot interface.
func (m Machine) PrimaryIP() string {
	if m.BootInterface != nil {
		if ip := staticIP(m.BootInterface.Links); ip != "" {
			return ip
		}
	}
	for _, iface := range m.Interfaces {
		if ip := staticIP(iface.Links); ip != "" {
			return ip
		}
	}
	return ""
}

func staticIP(links []Link) string {
	for _, link := range links {
		if link.Mode == "static" && link.IPAddress != "" {
			return link.IPAddress
		}
	}
	return ""
}

// InstallDisk returns the first physical block device as a /dev path,
// defaulting to /dev/sda.
func (m Machine) InstallDisk() string {
	for _, dev := range m.BlockDevices {
		if dev.Type != "physical" || dev.Name == "" {
			continue
		}
		if strings.HasPrefix(dev.Name, "/dev/") {
			return dev.Name
		}
		return "/dev/" + dev.Name
	}
	return "/dev/sda"
}

// BootInterfaceName returns the boot interface name, falling back to the
// first physical interface and then to eth0.
func (m Machine) BootInterfaceName() string {
	if m.BootInterface != nil && m.BootInterface.Name != "" {
		return m.BootInterface.Name
	}
	for _, iface := range m.Interfaces {
		if iface.Type == "physical" && iface.Name != "" {
			return iface.Name
		}
	}
	return "eth0"
}

// IgnoredInterfaces lists the physical interfaces other than the boot
// interface; the provisioner leaves them unconfigured.
func (m Machine) IgnoredInterfaces(bootInterfaceName string) []string {
	var ignored []string
	for _, iface := range m.Interfaces {
		if iface.Type == "physical" && iface.Name != "" && iface.Name != bootInterfaceName {
			ignored = append(ignored, iface.Name)
		}
	}
	return ignored
}

// Role determines controlplane vs worker from machine tags. The
// configured tag wins; a handful of common aliases are also honored.
func (m Machine) Role(controlplaneTag string) string {
	tags := make(map[string]bool, len(m.TagNames))
	for _, tag := range m.TagNames {
		tags[strings.ToLower(tag)] = true
	}

	if tags[strings.ToLower(controlplaneTag)] {
		return "controlplane"
	}
	for _, alias := range []string{"controlplane", "control-plane", "master", "cp", "controller"} {
		if tags[alias] {
			return "controlplane"
		}
	}
	return "worker"
}

// Deployable reports whether the machine is in a state worth putting in
// the inventory.
func (m Machine) Deployable() bool {
	switch m.StatusName {
	case "Deployed", "Ready", "Allocated", "Deploying":
		return true
	}
	return false
}
