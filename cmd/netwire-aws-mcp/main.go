// Command netwire-aws-mcp is an MCP server that exposes netwire-aws tools.
//
// This server implements the Model Context Protocol (MCP) using infrastructure
// from github.com/lex00/wetwire-core-go/mcp and provides the following tools:
//   - netwire_plan: Plan a topology file into a resource graph
//   - netwire_validate: Validate a topology and its planned graph
//   - netwire_lint: Run advisory topology rules
//   - netwire_graph: Visualize resource dependencies (DOT/Mermaid)
//   - netwire_zones: List availability zones for a region
//   - netwire_diff: Compare two serialized plans
//
// Usage:
//
//	netwire-aws-mcp  # Runs on stdio transport
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/lex00/wetwire-core-go/mcp"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/cfn"
	"github.com/lex00/netwire-aws-go/internal/diff"
	"github.com/lex00/netwire-aws-go/internal/graph"
	"github.com/lex00/netwire-aws-go/internal/lint"
	"github.com/lex00/netwire-aws-go/internal/manifest"
	"github.com/lex00/netwire-aws-go/internal/plan"
	"github.com/lex00/netwire-aws-go/internal/schema"
	"github.com/lex00/netwire-aws-go/internal/zones"
	"github.com/lex00/netwire-aws-go/topology"
)

func main() {
	server := mcp.NewServer(mcp.Config{
		Name:    "netwire-aws",
		Version: "1.0.0",
	})

	server.RegisterToolWithSchema("netwire_plan", "Plan a topology file into a dependency-ordered resource graph", handlePlan, planSchema)
	server.RegisterToolWithSchema("netwire_validate", "Validate a topology and its planned graph", handleValidate, validateSchema)
	server.RegisterToolWithSchema("netwire_lint", "Run advisory topology rules", handleLint, lintSchema)
	server.RegisterToolWithSchema("netwire_graph", "Visualize resource dependencies (DOT/Mermaid)", handleGraph, graphSchema)
	server.RegisterToolWithSchema("netwire_zones", "List availability zones for a region", handleZones, zonesSchema)
	server.RegisterToolWithSchema("netwire_diff", "Compare two serialized plans", handleDiff, diffSchema)

	// Run on stdio transport
	if err := server.Start(context.Background()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// Tool input schemas

var planSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topology": map[string]any{
			"type":        "string",
			"description": "Path to the topology file (.yaml or .hcl)",
		},
		"format": map[string]any{
			"type":        "string",
			"enum":        []string{"json", "yaml", "cfn", "cfn-yaml", "k8s"},
			"description": "Output format (default: json)",
		},
		"output": map[string]any{
			"type":        "string",
			"description": "Output file path (default: return content inline)",
		},
		"zones": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Explicit ordered zone list, bypassing resolution",
		},
	},
	"required": []string{"topology"},
}

var validateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topology": map[string]any{
			"type":        "string",
			"description": "Path to the topology file",
		},
		"cfn": map[string]any{
			"type":        "boolean",
			"description": "Also schema-check the rendered CloudFormation template",
		},
	},
	"required": []string{"topology"},
}

var lintSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topology": map[string]any{
			"type":        "string",
			"description": "Path to the topology file",
		},
	},
	"required": []string{"topology"},
}

var graphSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topology": map[string]any{
			"type":        "string",
			"description": "Path to the topology file",
		},
		"format": map[string]any{
			"type":        "string",
			"enum":        []string{"dot", "mermaid"},
			"description": "Output format (default: mermaid)",
		},
	},
	"required": []string{"topology"},
}

var zonesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"region": map[string]any{
			"type":        "string",
			"description": "AWS region name",
		},
	},
	"required": []string{"region"},
}

var diffSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"before": map[string]any{
			"type":        "string",
			"description": "Path to the earlier serialized plan",
		},
		"after": map[string]any{
			"type":        "string",
			"description": "Path to the later serialized plan",
		},
		"include_instance": map[string]any{
			"type":        "boolean",
			"description": "Also compare run-scoped values (Instance tag, node tokens)",
		},
	},
	"required": []string{"before", "after"},
}

// buildGraph loads a topology file, resolves its zones offline, and plans
// it. Shared by the plan, validate, and graph tools.
func buildGraph(ctx context.Context, path string, zoneNames []string) (*netwire.TopologyGraph, *topology.Spec, error) {
	spec, err := topology.Load(path)
	if err != nil {
		return nil, nil, err
	}

	dir := zones.Static()
	switch {
	case len(zoneNames) > 0:
		dir = zones.Fixed(zoneNames...)
	case len(spec.Zones) > 0:
		dir = zones.Fixed(spec.Zones...)
	}
	zoneList, err := dir.Resolve(ctx, spec.Region)
	if err != nil {
		return nil, nil, err
	}

	g, err := plan.Build(spec, zoneList)
	if err != nil {
		return nil, nil, err
	}
	return g, spec, nil
}

// PlanToolResult is the result of the netwire_plan tool.
type PlanToolResult struct {
	Success   bool     `json:"success"`
	Artifact  string   `json:"artifact,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// handlePlan plans a topology file and returns the requested artifact.
func handlePlan(ctx context.Context, args map[string]any) (string, error) {
	topo, _ := args["topology"].(string)
	format, _ := args["format"].(string)
	output, _ := args["output"].(string)

	result := PlanToolResult{}

	if topo == "" {
		result.Errors = append(result.Errors, "topology is required")
		return toJSON(result)
	}
	if format == "" {
		format = "json"
	}

	var zoneNames []string
	if raw, ok := args["zones"].([]any); ok {
		for _, z := range raw {
			if name, ok := z.(string); ok {
				zoneNames = append(zoneNames, name)
			}
		}
	}

	g, spec, err := buildGraph(ctx, topo, zoneNames)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return toJSON(result)
	}

	var data []byte
	switch format {
	case "json":
		data, err = g.ToJSON()
	case "yaml":
		data, err = g.ToYAML()
	case "cfn":
		var template *netwire.Template
		if template, err = cfn.Render(g, spec.Description); err == nil {
			data, err = cfn.ToJSON(template)
		}
	case "cfn-yaml":
		var template *netwire.Template
		if template, err = cfn.Render(g, spec.Description); err == nil {
			data, err = cfn.ToYAML(template)
		}
	case "k8s":
		data, err = manifest.ToYAML(g, manifest.Options{})
	default:
		err = fmt.Errorf("invalid format: %s", format)
	}
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return toJSON(result)
	}

	for _, node := range g.Nodes {
		result.Resources = append(result.Resources, node.Name)
	}

	if output != "" {
		if err := os.WriteFile(output, data, 0644); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("writing output: %v", err))
			return toJSON(result)
		}
		result.Artifact = fmt.Sprintf("Written to %s", output)
	} else {
		result.Artifact = string(data)
	}

	result.Success = true
	return toJSON(result)
}

// handleValidate validates a topology and its planned graph.
func handleValidate(ctx context.Context, args map[string]any) (string, error) {
	topo, _ := args["topology"].(string)
	checkCfn, _ := args["cfn"].(bool)

	result := netwire.ValidateResult{}

	if topo == "" {
		result.Errors = append(result.Errors, "topology is required")
		return toJSON(result)
	}

	g, spec, err := buildGraph(ctx, topo, nil)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return toJSON(result)
	}
	if err := g.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return toJSON(result)
	}
	result.Resources = len(g.Nodes)

	if checkCfn {
		template, err := cfn.Render(g, spec.Description)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			return toJSON(result)
		}
		schemaResult := schema.ValidateTemplate(template, schema.Options{Strict: true})
		for _, finding := range schemaResult.Errors {
			result.Errors = append(result.Errors, finding.String())
		}
		for _, finding := range schemaResult.Warnings {
			result.Warnings = append(result.Warnings, finding.String())
		}
	}

	result.Success = len(result.Errors) == 0
	return toJSON(result)
}

// handleLint runs the advisory topology rules.
func handleLint(_ context.Context, args map[string]any) (string, error) {
	topo, _ := args["topology"].(string)

	result := netwire.LintResult{}

	if topo == "" {
		result.Issues = append(result.Issues, netwire.LintIssue{
			Severity: "error",
			Message:  "topology is required",
			Rule:     "internal",
		})
		return toJSON(result)
	}

	lintResult, err := lint.LintFile(topo, lint.Options{})
	if err != nil {
		result.Issues = append(result.Issues, netwire.LintIssue{
			Severity: "error",
			Message:  err.Error(),
			Rule:     "internal",
		})
		return toJSON(result)
	}

	for _, issue := range lintResult.Issues {
		result.Issues = append(result.Issues, netwire.LintIssue{
			Severity: issue.Severity.String(),
			Message:  issue.Message,
			Rule:     issue.Rule,
			File:     issue.File,
		})
	}

	result.Success = len(result.Issues) == 0
	return toJSON(result)
}

// GraphResult is the result of the netwire_graph tool.
type GraphResult struct {
	Success bool   `json:"success"`
	Graph   string `json:"graph,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleGraph renders the dependency graph.
func handleGraph(ctx context.Context, args map[string]any) (string, error) {
	topo, _ := args["topology"].(string)
	format, _ := args["format"].(string)

	result := GraphResult{}

	if topo == "" {
		result.Error = "topology is required"
		return toJSON(result)
	}
	if format == "" {
		format = "mermaid"
	}

	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		result.Error = fmt.Sprintf("invalid format: %s", format)
		return toJSON(result)
	}

	g, _, err := buildGraph(ctx, topo, nil)
	if err != nil {
		result.Error = err.Error()
		return toJSON(result)
	}

	gen := &graph.Generator{Format: graphFormat}
	rendered, err := gen.GenerateString(g)
	if err != nil {
		result.Error = err.Error()
		return toJSON(result)
	}

	result.Success = true
	result.Graph = rendered
	return toJSON(result)
}

// handleZones lists the zone set for a region from the built-in table.
func handleZones(ctx context.Context, args map[string]any) (string, error) {
	region, _ := args["region"].(string)

	zoneList, err := zones.Static().Resolve(ctx, region)
	if err != nil {
		return toJSON(map[string]any{"error": err.Error()})
	}

	return toJSON(netwire.ZoneListResult{Region: region, Zones: zoneList})
}

// handleDiff compares two serialized plans.
func handleDiff(_ context.Context, args map[string]any) (string, error) {
	before, _ := args["before"].(string)
	after, _ := args["after"].(string)
	includeInstance, _ := args["include_instance"].(bool)

	if before == "" || after == "" {
		return toJSON(map[string]any{"error": "before and after are required"})
	}

	compared, err := diff.CompareFiles(before, after, diff.Options{IncludeInstance: includeInstance})
	if err != nil {
		return toJSON(map[string]any{"error": err.Error()})
	}

	return toJSON(netwire.DiffResult{
		Success:  compared.Summary.Total == 0,
		Diff:     compared.Diff,
		Summary:  compared.Summary,
		Warnings: compared.Warnings,
	})
}

// toJSON converts a value to a JSON string.
func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}
	return string(data), nil
}
