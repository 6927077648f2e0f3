package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/lint"
)

func newLintCmd() *cobra.Command {
	var (
		outputFormat string
		rules        []string
	)

	cmd := &cobra.Command{
		Use:   "lint [topology-file]",
		Short: "Check a topology for advisory issues",
		Long: `Lint checks a topology file for shapes that plan cleanly but are probably
not what the author wanted.

Rules:
    NTW001: Spread subnets across distinct availability zones
    NTW002: Give private subnets an egress path
    NTW003: Pair public subnets with a public gateway
    NTW004: Leave unallocated blocks in the address space
    NTW005: Keep subnets at or above the EC2 minimum size
    NTW006: Balance subnet counts across zones

Examples:
    netwire-aws lint topology.yaml
    netwire-aws lint topology.yaml --rules NTW001,NTW005`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := defaultTopologyFile
			if len(args) > 0 {
				file = args[0]
			}
			return runLint(file, outputFormat, rules)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "Rules to enable (default: all)")

	return cmd
}

func runLint(file, format string, rules []string) error {
	lintResult, err := lint.LintFile(file, lint.Options{EnabledRules: rules})
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	var issues []netwire.LintIssue
	for _, issue := range lintResult.Issues {
		issues = append(issues, netwire.LintIssue{
			Severity: issue.Severity.String(),
			Message:  issue.Message,
			Rule:     issue.Rule,
			File:     issue.File,
		})
	}

	result := netwire.LintResult{
		Success: len(issues) == 0,
		Issues:  issues,
	}

	return outputLintResult(result, format)
}

func outputLintResult(result netwire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Println("No issues found.")
			return nil
		}

		for _, issue := range result.Issues {
			if issue.File != "" {
				fmt.Printf("%s: %s: %s [%s]\n",
					issue.File, issue.Severity, issue.Message, issue.Rule)
			} else {
				fmt.Printf("%s: %s [%s]\n", issue.Severity, issue.Message, issue.Rule)
			}
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(2) // Exit code 2 for issues found
	}

	return nil
}
