// Command netwire-aws plans VPC network topologies from declarative
// topology files.
//
// Usage:
//
//	netwire-aws plan topology.yaml       Plan the topology and emit the graph
//	netwire-aws validate topology.yaml   Check the plan for issues
//	netwire-aws lint topology.yaml       Run advisory topology rules
//	netwire-aws init myproject           Create a new project
//	netwire-aws version                  Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "netwire-aws",
		Short: "Plan VPC network topologies",
		Long: `netwire-aws plans an isolated VPC network from a small declarative spec.

Describe the topology in YAML (or HCL):

    ecosystem: acme
    address_block: 10.0.0.0/16
    subnet_bits: 4
    private_subnets: 2
    public_subnets: 2
    private_gateway: true

Then plan it into a dependency-ordered resource graph:

    netwire-aws plan topology.yaml

The graph serializes as JSON or YAML, and renders as a CloudFormation
template, ACK Kubernetes manifests, or a DOT/Mermaid dependency graph.`,
	}

	rootCmd.AddCommand(
		newPlanCmd(),
		newValidateCmd(),
		newLintCmd(),
		newGraphCmd(),
		newDiffCmd(),
		newZonesCmd(),
		newInitCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("netwire-aws %s\n", getVersion())
		},
	}
}
