package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/cfn"
	"github.com/lex00/netwire-aws-go/internal/plan"
	"github.com/lex00/netwire-aws-go/internal/schema"
	"github.com/lex00/netwire-aws-go/internal/validation"
	"github.com/lex00/netwire-aws-go/topology"
)

// newValidateCmd creates the "validate" subcommand for checking a topology.
func newValidateCmd() *cobra.Command {
	var (
		outputFormat string
		checkCfn     bool
		zf           zoneFlags
	)

	cmd := &cobra.Command{
		Use:   "validate [topology-file]",
		Short: "Validate a topology and its planned graph",
		Long: `Validate plans the topology and checks the result for issues.

Checks performed:
  - Spec validity: required fields, CIDR syntax, counts
  - Topology validity: address space capacity, gateway combinations
  - Graph integrity: reference kinds, edge ranges, acyclic ordering
  - With --cfn: schema check and cfn-lint of the rendered template

Examples:
    netwire-aws validate topology.yaml
    netwire-aws validate topology.yaml --cfn
    netwire-aws validate topology.yaml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := defaultTopologyFile
			if len(args) > 0 {
				file = args[0]
			}
			return runValidate(cmd.Context(), file, outputFormat, checkCfn, zf)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&checkCfn, "cfn", false, "Also schema-check and cfn-lint the rendered CloudFormation template")
	zf.register(cmd)

	return cmd
}

// runValidate plans the topology and reports every problem found.
func runValidate(ctx context.Context, file, format string, checkCfn bool, zf zoneFlags) error {
	result := netwire.ValidateResult{}

	graph, spec, err := validateGraph(ctx, file, zf)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return outputValidateResult(result, format)
	}
	result.Resources = len(graph.Nodes)

	if checkCfn {
		template, err := cfn.Render(graph, spec.Description)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			return outputValidateResult(result, format)
		}

		schemaResult := schema.ValidateTemplate(template, schema.Options{Strict: true})
		for _, finding := range schemaResult.Errors {
			result.Errors = append(result.Errors, finding.String())
		}
		for _, finding := range schemaResult.Warnings {
			result.Warnings = append(result.Warnings, finding.String())
		}

		lintResult, err := validation.LintTemplate(template)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cfn-lint: %v", err))
		} else {
			result.Errors = append(result.Errors, lintResult.Errors...)
			result.Warnings = append(result.Warnings, lintResult.Warnings...)
		}
	}

	result.Success = len(result.Errors) == 0
	return outputValidateResult(result, format)
}

// validateGraph plans the file and runs the graph integrity check. Zone
// resolution stays offline unless --live was given.
func validateGraph(ctx context.Context, file string, zf zoneFlags) (*netwire.TopologyGraph, *topology.Spec, error) {
	spec, err := topology.Load(file)
	if err != nil {
		return nil, nil, err
	}

	zoneList, err := resolveZones(ctx, spec, zf)
	if err != nil {
		return nil, nil, err
	}

	graph, err := plan.Build(spec, zoneList)
	if err != nil {
		return nil, nil, err
	}

	if err := graph.Validate(); err != nil {
		return nil, nil, err
	}
	return graph, spec, nil
}

func outputValidateResult(result netwire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Printf("Validation passed: %d resources OK\n", result.Resources)
			for _, warnMsg := range result.Warnings {
				fmt.Printf("  WARNING: %s\n", warnMsg)
			}
			return nil
		}

		fmt.Println("Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Printf("  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
