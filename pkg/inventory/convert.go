package inventory

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Host is one pxe_hosts entry of the generated inventory.
type Host struct {
	Name        string `json:"name"         yaml:"name"         jsonschema:"title=Fully qualified hostname"`
	MAC         string `json:"mac"          yaml:"mac"          jsonschema:"title=PXE boot MAC address"`
	IP          string `json:"ip"           yaml:"ip"`
	Role        string `json:"role"         yaml:"role"         jsonschema:"enum=controlplane,enum=worker"`
	InstallDisk string `json:"install_disk" yaml:"install_disk"`

	OOBDescriptor `yaml:",inline"`

	IgnoredInterfaces []string `json:"ignored_interfaces,omitempty" yaml:"ignored_interfaces,omitempty"`
}

// Localhost carries the provisioner-side settings derived from the PXE
// subnet, plus the host list.
type Localhost struct {
	AnsibleConnection        string   `yaml:"ansible_connection"`
	DHCPInterface            string   `yaml:"dhcp_interface"`
	Domain                   string   `yaml:"domain"`
	NetworkGateway           string   `yaml:"network_gateway,omitempty"`
	NetworkNetmask           int      `yaml:"network_netmask,omitempty"`
	NetworkNameservers       []string `yaml:"network_nameservers,omitempty"`
	NetworkMTU               int      `yaml:"network_mtu,omitempty"`
	NetworkIgnoredInterfaces []string `yaml:"network_ignored_interfaces"`
	NetworkPrimaryInterface  string   `yaml:"network_primary_interface,omitempty"`
	LonghornMountPath        string   `yaml:"longhorn_mount_path,omitempty"`
	TalosExtensions          []string `yaml:"talos_extensions,omitempty"`
	PXEHosts                 []Host   `yaml:"pxe_hosts"`
}

// Inventory is the full generated document.
type Inventory struct {
	All struct {
		Hosts struct {
			Localhost *Localhost `yaml:"localhost"`
		} `yaml:"hosts"`
	} `yaml:"all"`
}

// Options control the conversion.
type Options struct {
	Domain          string // appended to unqualified hostnames
	ControlplaneTag string // tag marking controlplane machines
}

// DefaultOptions returns the conversion defaults.
func DefaultOptions() Options {
	return Options{
		Domain:          "pxe.local",
		ControlplaneTag: "controlplane",
	}
}

// Convert maps machine and subnet records onto the deployment inventory.
// Machines that are not deployable or lack a MAC or static IP are skipped
// with a log line rather than failing the whole conversion.
func Convert(machines []Machine, subnets []Subnet, opts Options) *Inventory {
	if opts.Domain == "" {
		opts.Domain = DefaultOptions().Domain
	}
	if opts.ControlplaneTag == "" {
		opts.ControlplaneTag = DefaultOptions().ControlplaneTag
	}

	localhost := &Localhost{
		AnsibleConnection:        "local",
		DHCPInterface:            "eth0",
		Domain:                   opts.Domain,
		NetworkMTU:               1500,
		NetworkIgnoredInterfaces: []string{},
		LonghornMountPath:        "/var/lib/longhorn",
		TalosExtensions: []string{
			"siderolabs/iscsi-tools",
			"siderolabs/util-linux-tools",
		},
		PXEHosts: []Host{},
	}

	if subnet, ok := pxeSubnet(subnets); ok {
		log.Printf("[INVENTORY] PXE subnet: %s", subnet.CIDR)
		applyNetworkSettings(localhost, subnet)
	} else {
		log.Printf("[INVENTORY] no PXE subnet found")
	}

	var bootInterfaces []string
	for _, machine := range machines {
		hostname := machine.Hostname
		if hostname == "" {
			hostname = machine.FQDN
		}

		if !machine.Deployable() {
			log.Printf("[INVENTORY] skipping %s (status: %s)", hostname, machine.StatusName)
			continue
		}

		mac := machine.PrimaryMAC()
		if mac == "" {
			log.Printf("[INVENTORY] skipping %s: no MAC address", hostname)
			continue
		}
		ip := machine.PrimaryIP()
		if ip == "" {
			log.Printf("[INVENTORY] skipping %s: no static IP address", hostname)
			continue
		}

		if !strings.Contains(hostname, ".") {
			hostname = hostname + "." + opts.Domain
		}

		bootInterfaceName := machine.BootInterfaceName()
		bootInterfaces = append(bootInterfaces, bootInterfaceName)

		localhost.PXEHosts = append(localhost.PXEHosts, Host{
			Name:              hostname,
			MAC:               mac,
			IP:                ip,
			Role:              machine.Role(opts.ControlplaneTag),
			InstallDisk:       machine.InstallDisk(),
			OOBDescriptor:     ExtractOOB(machine),
			IgnoredInterfaces: machine.IgnoredInterfaces(bootInterfaceName),
		})
	}

	if name := mostCommon(bootInterfaces); name != "" {
		localhost.NetworkPrimaryInterface = name
	}

	inv := &Inventory{}
	inv.All.Hosts.Localhost = localhost
	return inv
}

// WriteYAML emits the inventory document.
func (inv *Inventory) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(inv); err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	return enc.Close()
}

// Summary counts hosts by role.
func (inv *Inventory) Summary() (controlplane, worker int) {
	for _, h := range inv.All.Hosts.Localhost.PXEHosts {
		if h.Role == "controlplane" {
			controlplane++
		} else {
			worker++
		}
	}
	return controlplane, worker
}

// pxeSubnet picks the DHCP-enabled subnet, falling back to the first one.
func pxeSubnet(subnets []Subnet) (Subnet, bool) {
	for _, subnet := range subnets {
		if subnet.Managed || subnet.AllowProxy {
			return subnet, true
		}
	}
	if len(subnets) > 0 {
		log.Printf("[INVENTORY] no DHCP-enabled subnet found, using first subnet as fallback")
		return subnets[0], true
	}
	return Subnet{}, false
}

func applyNetworkSettings(localhost *Localhost, subnet Subnet) {
	localhost.NetworkGateway = subnet.GatewayIP

	localhost.NetworkNetmask = 24
	if idx := strings.LastIndex(subnet.CIDR, "/"); idx >= 0 {
		if bits, err := strconv.Atoi(subnet.CIDR[idx+1:]); err == nil {
			localhost.NetworkNetmask = bits
		}
	}

	if len(subnet.DNSServers) > 0 {
		localhost.NetworkNameservers = subnet.DNSServers
	} else {
		localhost.NetworkNameservers = []string{"8.8.8.8", "1.1.1.1"}
	}
}

func mostCommon(names []string) string {
	counts := make(map[string]int, len(names))
	best := ""
	bestCount := 0
	for _, name := range names {
		counts[name]++
		if counts[name] > bestCount {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}
