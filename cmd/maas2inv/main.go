// Command maas2inv converts exported MAAS machine and subnet records into
// the YAML deployment inventory the PXE provisioning playbooks consume.
// Querying MAAS itself (CLI profiles, API keys) is left to the operator;
// this tool only does the record mapping.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"oobctl/pkg/inventory"
)

var (
	machinesPath    string
	subnetsPath     string
	outputPath      string
	domain          string
	controlplaneTag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "maas2inv",
		Short: "Generate a PXE deployment inventory from MAAS machine records",
		Long: `maas2inv reads machine and subnet records exported from MAAS
(e.g. "maas <profile> machines read > machines.json") and writes the YAML
inventory used for PXE deployment, including per-host out-of-band
management descriptors.`,
		SilenceUsage: true,
		RunE:         runConvert,
	}

	rootCmd.Flags().StringVarP(&machinesPath, "machines", "m", "machines.json", "Machine records JSON file (- for stdin)")
	rootCmd.Flags().StringVarP(&subnetsPath, "subnets", "s", "", "Subnet records JSON file (optional)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "inventory.yml", "Output inventory file (- for stdout)")
	rootCmd.Flags().StringVarP(&domain, "domain", "d", "pxe.local", "Domain appended to unqualified hostnames")
	rootCmd.Flags().StringVar(&controlplaneTag, "controlplane-tag", "controlplane", "Machine tag marking controlplane nodes")

	rootCmd.AddCommand(newSchemaCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	machinesFile, err := openInput(machinesPath)
	if err != nil {
		return err
	}
	defer machinesFile.Close()

	machines, err := inventory.LoadMachines(machinesFile)
	if err != nil {
		return err
	}
	log.Printf("[INVENTORY] loaded %d machine records", len(machines))

	var subnets []inventory.Subnet
	if subnetsPath != "" {
		subnetsFile, err := openInput(subnetsPath)
		if err != nil {
			return err
		}
		defer subnetsFile.Close()

		subnets, err = inventory.LoadSubnets(subnetsFile)
		if err != nil {
			return err
		}
	}

	inv := inventory.Convert(machines, subnets, inventory.Options{
		Domain:          domain,
		ControlplaneTag: controlplaneTag,
	})

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := inv.WriteYAML(out); err != nil {
		return err
	}

	controlplane, worker := inv.Summary()
	log.Printf("[INVENTORY] wrote %s: %d controlplane, %d worker", outputPath, controlplane, worker)
	return nil
}

// newSchemaCommand emits the JSON Schema of an inventory host entry so
// downstream orchestrators can validate generated inventories.
func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of an inventory host entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := jsonschema.Reflect(&inventory.Host{})
			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
