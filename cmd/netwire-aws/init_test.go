package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/netwire-aws-go/topology"
)

func TestRunInitScaffoldsValidTopology(t *testing.T) {
	dir := t.TempDir()

	if err := runInit(dir, "core-network", false); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	path := filepath.Join(dir, "core-network", "topology.yaml")
	spec, err := topology.Load(path)
	if err != nil {
		t.Fatalf("scaffolded topology does not load: %v", err)
	}

	if spec.Ecosystem != "core-network" {
		t.Errorf("ecosystem = %q, want 'core-network'", spec.Ecosystem)
	}
	if !spec.PrivateGateway {
		t.Error("scaffold should enable the private gateway")
	}

	if _, err := os.Stat(filepath.Join(dir, "core-network", ".gitignore")); err != nil {
		t.Errorf("missing .gitignore: %v", err)
	}
}

func TestRunInitRejectsBadNames(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"1network", "net work", "net/work", "my_project", "network-", ""} {
		if err := runInit(dir, name, false); err == nil {
			t.Errorf("runInit(%q) should fail", name)
		}
	}
}

// Every name init accepts must produce a scaffold that loads cleanly:
// the name becomes the ecosystem value, which carries the RFC 1123
// constraint.
func TestRunInitAcceptedNamesAlwaysPlan(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a", "core-network", "Net2", "x-1"} {
		if err := runInit(dir, name, false); err != nil {
			t.Fatalf("runInit(%q): %v", name, err)
		}
		if _, err := topology.Load(filepath.Join(dir, name, "topology.yaml")); err != nil {
			t.Errorf("runInit(%q) wrote a topology that does not load: %v", name, err)
		}
	}
}

func TestRunInitRefusesExistingProject(t *testing.T) {
	dir := t.TempDir()

	if err := runInit(dir, "dup", false); err != nil {
		t.Fatalf("first runInit: %v", err)
	}
	if err := runInit(dir, "dup", false); err == nil {
		t.Error("second runInit should fail on existing project")
	}
}
