package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/cfn"
	"github.com/lex00/netwire-aws-go/internal/manifest"
	"github.com/lex00/netwire-aws-go/internal/plan"
	"github.com/lex00/netwire-aws-go/internal/zones"
	"github.com/lex00/netwire-aws-go/topology"
)

// defaultTopologyFile is used when a command gets no file argument.
const defaultTopologyFile = "topology.yaml"

// zoneFlags are the zone-resolution flags shared by planning commands.
// Precedence: --zones, then --live, then the spec's zones list, then the
// built-in region table.
type zoneFlags struct {
	region  string
	zones   []string
	live    bool
	profile string
}

func (f *zoneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", "", "Region override for zone resolution")
	cmd.Flags().StringSliceVar(&f.zones, "zones", nil, "Explicit ordered zone list, bypassing resolution")
	cmd.Flags().BoolVar(&f.live, "live", false, "Resolve zones with a live EC2 DescribeAvailabilityZones call")
	cmd.Flags().StringVar(&f.profile, "profile", "", "AWS shared config profile for --live")
}

// resolveZones picks the zone directory for a planning run and resolves
// once; the list stays fixed for the rest of the run.
func resolveZones(ctx context.Context, spec *topology.Spec, f zoneFlags) ([]netwire.Zone, error) {
	region := spec.Region
	if f.region != "" {
		region = f.region
	}

	switch {
	case len(f.zones) > 0:
		return zones.Fixed(f.zones...).Resolve(ctx, region)
	case f.live:
		cfg, err := zones.LoadAWSConfig(ctx, f.profile, region)
		if err != nil {
			return nil, err
		}
		return zones.NewEC2Directory(zones.NewEC2Client(cfg)).Resolve(ctx, region)
	case len(spec.Zones) > 0:
		return zones.Fixed(spec.Zones...).Resolve(ctx, region)
	default:
		return zones.Static().Resolve(ctx, region)
	}
}

func newPlanCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
		namespace    string
		zf           zoneFlags
	)

	cmd := &cobra.Command{
		Use:   "plan [topology-file]",
		Short: "Plan a topology into a resource graph",
		Long: `Plan loads a topology file, resolves availability zones, and computes the
full resource graph: VPC, subnets, gateways, route tables, routes, and
their ordering edges. Planning is all-or-nothing; on any validation
failure no partial graph is emitted.

Output formats:
    json        the graph as JSON (default)
    yaml        the graph as YAML
    cfn         CloudFormation template, JSON
    cfn-yaml    CloudFormation template, YAML
    k8s         ACK Kubernetes manifests, multi-document YAML

Examples:
    netwire-aws plan topology.yaml
    netwire-aws plan topology.yaml -f cfn -o template.json
    netwire-aws plan topology.yaml -f k8s --namespace ack-system
    netwire-aws plan topology.yaml --zones eu-west-1a,eu-west-1b`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := defaultTopologyFile
			if len(args) > 0 {
				file = args[0]
			}
			return runPlan(cmd.Context(), file, outputFormat, outputFile, namespace, zf)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json, yaml, cfn, cfn-yaml, or k8s")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Kubernetes namespace for k8s output")
	zf.register(cmd)

	return cmd
}

func runPlan(ctx context.Context, file, format, outputFile, namespace string, zf zoneFlags) error {
	spec, err := topology.Load(file)
	if err != nil {
		return planFailed(err)
	}

	zoneList, err := resolveZones(ctx, spec, zf)
	if err != nil {
		return planFailed(err)
	}

	graph, err := plan.Build(spec, zoneList)
	if err != nil {
		return planFailed(err)
	}

	data, err := renderGraph(graph, spec, format, namespace)
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(outputFile, data, 0644)
}

// renderGraph serializes a planned graph in the requested output format.
func renderGraph(graph *netwire.TopologyGraph, spec *topology.Spec, format, namespace string) ([]byte, error) {
	switch format {
	case "json":
		return graph.ToJSON()
	case "yaml":
		return graph.ToYAML()
	case "cfn":
		template, err := cfn.Render(graph, spec.Description)
		if err != nil {
			return nil, err
		}
		return cfn.ToJSON(template)
	case "cfn-yaml":
		template, err := cfn.Render(graph, spec.Description)
		if err != nil {
			return nil, err
		}
		return cfn.ToYAML(template)
	case "k8s":
		return manifest.ToYAML(graph, manifest.Options{Namespace: namespace})
	default:
		return nil, fmt.Errorf("unknown format: %s (use json, yaml, cfn, cfn-yaml, or k8s)", format)
	}
}

// planFailed reports a planning error to stderr; main maps the returned
// error to exit 1.
func planFailed(err error) error {
	fmt.Fprintln(os.Stderr, err)
	return fmt.Errorf("plan failed")
}
