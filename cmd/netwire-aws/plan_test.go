package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	netwire "github.com/lex00/netwire-aws-go"
)

const testTopology = `ecosystem: acme
instance: "001"
description: core network
region: us-west-2
address_block: 10.0.0.0/16
subnet_bits: 4
private_subnets: 2
public_subnets: 2
private_gateway: true
`

func writeTestTopology(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topology.yaml")
	if err := os.WriteFile(path, []byte(testTopology), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunPlanWritesGraphJSON(t *testing.T) {
	file := writeTestTopology(t)
	out := filepath.Join(t.TempDir(), "plan.json")

	if err := runPlan(context.Background(), file, "json", out, "", zoneFlags{}); err != nil {
		t.Fatalf("runPlan: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	graph, err := netwire.FromJSON(data)
	if err != nil {
		t.Fatalf("output is not a graph: %v", err)
	}

	// 1 VPC + 4 subnets + IGW + public route + 2 NAT chains of 5.
	if len(graph.Nodes) != 17 {
		t.Errorf("node count = %d, want 17", len(graph.Nodes))
	}
	if err := graph.Validate(); err != nil {
		t.Errorf("emitted graph invalid: %v", err)
	}
}

func TestRunPlanZonesFlagOverridesRegion(t *testing.T) {
	file := writeTestTopology(t)
	out := filepath.Join(t.TempDir(), "plan.json")

	zf := zoneFlags{zones: []string{"eu-west-1a", "eu-west-1b"}}
	if err := runPlan(context.Background(), file, "json", out, "", zf); err != nil {
		t.Fatalf("runPlan: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "eu-west-1a") {
		t.Error("expected zone eu-west-1a in output")
	}
	if strings.Contains(string(data), "us-west-2a") {
		t.Error("region zones should be overridden by --zones")
	}
}

func TestRunPlanCfnFormat(t *testing.T) {
	file := writeTestTopology(t)
	out := filepath.Join(t.TempDir(), "template.json")

	if err := runPlan(context.Background(), file, "cfn", out, "", zoneFlags{}); err != nil {
		t.Fatalf("runPlan: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "AWS::EC2::VPC") {
		t.Error("expected a CloudFormation template")
	}
}

func TestRunPlanK8sFormat(t *testing.T) {
	file := writeTestTopology(t)
	out := filepath.Join(t.TempDir(), "manifests.yaml")

	if err := runPlan(context.Background(), file, "k8s", out, "ack-system", zoneFlags{}); err != nil {
		t.Fatalf("runPlan: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "kind: NATGateway") {
		t.Error("expected ACK manifests")
	}
	if !strings.Contains(string(data), "namespace: ack-system") {
		t.Error("expected the namespace on emitted objects")
	}
}

func TestRunPlanUnknownFormat(t *testing.T) {
	file := writeTestTopology(t)

	err := runPlan(context.Background(), file, "toml", "", "", zoneFlags{})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("err = %v, want unknown format error", err)
	}
}
