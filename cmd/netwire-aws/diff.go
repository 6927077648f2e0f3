package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/diff"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat    string
		includeInstance bool
	)

	cmd := &cobra.Command{
		Use:   "diff <plan1> <plan2>",
		Short: "Compare two serialized plans",
		Long: `Diff compares two serialized topology graphs (JSON or YAML, as written by
"netwire-aws plan") and reports added, removed, and modified resources.

A changed subnet or VPC CIDR is flagged as a warning: re-planning with
different subnet counts reallocates the low end of the address block, so
a CIDR shift usually means existing subnets would be replaced rather
than kept.

Exits 1 when differences are found.

Examples:
    netwire-aws diff before.json after.json
    netwire-aws diff before.json after.yaml --format json
    netwire-aws diff before.json after.json --include-instance`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], outputFormat, includeInstance)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&includeInstance, "include-instance", false, "Also compare run-scoped values (Instance tag, node tokens)")

	return cmd
}

func runDiff(file1, file2, format string, includeInstance bool) error {
	compared, err := diff.CompareFiles(file1, file2, diff.Options{IncludeInstance: includeInstance})
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	result := netwire.DiffResult{
		Success:  compared.Summary.Total == 0,
		Diff:     compared.Diff,
		Summary:  compared.Summary,
		Warnings: compared.Warnings,
	}

	return outputDiffResult(result, format)
}

func outputDiffResult(result netwire.DiffResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success && len(result.Warnings) == 0 {
			fmt.Println("No differences.")
			return nil
		}

		for _, entry := range result.Diff.Added {
			fmt.Printf("+ %s (%s)\n", entry.Resource, entry.Kind)
		}
		for _, entry := range result.Diff.Removed {
			fmt.Printf("- %s (%s)\n", entry.Resource, entry.Kind)
		}
		for _, entry := range result.Diff.Modified {
			fmt.Printf("~ %s (%s)\n", entry.Resource, entry.Kind)
			for _, change := range entry.Changes {
				fmt.Printf("    %s\n", change)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Printf("WARNING: %s\n", warning)
		}
		fmt.Printf("%d added, %d removed, %d modified\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
