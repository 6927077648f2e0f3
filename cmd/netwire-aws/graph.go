package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/netwire-aws-go/internal/graph"
	"github.com/lex00/netwire-aws-go/internal/plan"
	"github.com/lex00/netwire-aws-go/topology"
)

func newGraphCmd() *cobra.Command {
	var (
		outputFormat  string
		clusterByKind bool
		zf            zoneFlags
	)

	cmd := &cobra.Command{
		Use:   "graph [topology-file]",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph of the planned topology. Arrows
point from a resource to the resources that must exist before it.

The output can be rendered with Graphviz:
    netwire-aws graph topology.yaml | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    netwire-aws graph topology.yaml -f mermaid

Examples:
    netwire-aws graph topology.yaml
    netwire-aws graph topology.yaml -c              # cluster by resource kind
    netwire-aws graph topology.yaml -f mermaid      # mermaid format`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := defaultTopologyFile
			if len(args) > 0 {
				file = args[0]
			}
			return runGraph(cmd.Context(), file, outputFormat, clusterByKind, zf)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&clusterByKind, "cluster", "c", false, "Cluster resources by kind")
	zf.register(cmd)

	return cmd
}

func runGraph(ctx context.Context, file, format string, cluster bool, zf zoneFlags) error {
	spec, err := topology.Load(file)
	if err != nil {
		return err
	}

	zoneList, err := resolveZones(ctx, spec, zf)
	if err != nil {
		return err
	}

	topo, err := plan.Build(spec, zoneList)
	if err != nil {
		return err
	}

	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	gen := &graph.Generator{
		Format:        graphFormat,
		ClusterByKind: cluster,
	}

	return gen.Generate(topo, os.Stdout)
}
