package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTopology(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const cleanTopology = `ecosystem: acme
instance: "20260825"
description: core network
region: us-west-2
address_block: 10.0.0.0/16
subnet_bits: 4
private_subnets: 2
public_subnets: 2
private_gateway: true
`

const noisyTopology = `ecosystem: acme
instance: "20260825"
description: core network
region: us-east-2
address_block: 10.0.0.0/16
subnet_bits: 4
private_subnets: 5
public_subnets: 2
private_gateway: false
`

func TestLintFile_CleanFile(t *testing.T) {
	path := writeTopology(t, cleanTopology)

	result, err := LintFile(path, Options{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.Issues, 0)
}

func TestLintFile_WithIssues(t *testing.T) {
	path := writeTopology(t, noisyTopology)

	result, err := LintFile(path, Options{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Greater(t, len(result.Issues), 0)

	// Five private subnets without a private gateway over three zones
	// trips the egress rule.
	foundEgress := false
	for _, issue := range result.Issues {
		if issue.Rule == "NTW002" {
			foundEgress = true
			break
		}
	}
	assert.True(t, foundEgress, "Should detect private subnets without egress")

	// Issues from a file lint carry the file path.
	for _, issue := range result.Issues {
		assert.Equal(t, path, issue.File)
	}
}

func TestLintFile_ExplicitZones(t *testing.T) {
	path := writeTopology(t, `ecosystem: acme
instance: "20260825"
description: core network
zones: [us-west-2a, us-west-2b]
address_block: 10.0.0.0/16
subnet_bits: 4
private_subnets: 3
public_subnets: 0
private_gateway: false
`)

	result, err := LintFile(path, Options{})
	require.NoError(t, err)
	assert.False(t, result.Success)

	ruleIDs := []string{}
	for _, issue := range result.Issues {
		ruleIDs = append(ruleIDs, issue.Rule)
	}
	// Three subnets over two explicit zones: reuse, no egress, uneven.
	assert.Contains(t, ruleIDs, "NTW001")
	assert.Contains(t, ruleIDs, "NTW002")
	assert.Contains(t, ruleIDs, "NTW006")
}

func TestLintFile_NonExistentFile(t *testing.T) {
	_, err := LintFile(filepath.Join(t.TempDir(), "missing.yaml"), Options{})
	assert.Error(t, err)
}

func TestLintFile_UnknownRegion(t *testing.T) {
	path := writeTopology(t, `ecosystem: acme
instance: "20260825"
description: core network
region: mars-central-1
address_block: 10.0.0.0/16
subnet_bits: 4
private_subnets: 2
public_subnets: 2
private_gateway: true
`)

	_, err := LintFile(path, Options{})
	assert.Error(t, err)
}

func TestLintSpec_CollectsAcrossRules(t *testing.T) {
	spec := cleanSpec()
	spec.PrivateSubnets = 5
	spec.PrivateGateway = false

	result := LintSpec(spec, threeZones(), Options{})
	assert.False(t, result.Success)
	require.Len(t, result.Issues, 3)

	for _, issue := range result.Issues {
		assert.NotEmpty(t, issue.Rule)
		assert.NotEmpty(t, issue.Message)
		assert.NotEmpty(t, issue.Suggestion)
		assert.Empty(t, issue.File)
	}
}

func TestLintSpec_EnabledRules(t *testing.T) {
	spec := cleanSpec()
	spec.PrivateSubnets = 5
	spec.PrivateGateway = false

	result := LintSpec(spec, threeZones(), Options{
		EnabledRules: []string{"NTW002"},
	})
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "NTW002", result.Issues[0].Rule)
}

func TestGetRules_AllRules(t *testing.T) {
	rules := getRules(Options{})
	assert.Len(t, rules, 6)
}

func TestGetRules_FilteredRules(t *testing.T) {
	rules := getRules(Options{
		EnabledRules: []string{"NTW001", "NTW005"},
	})
	assert.Len(t, rules, 2)

	ruleIDs := []string{}
	for _, r := range rules {
		ruleIDs = append(ruleIDs, r.ID())
	}
	assert.Contains(t, ruleIDs, "NTW001")
	assert.Contains(t, ruleIDs, "NTW005")
}

func TestGetRules_WithMaxSubnetPrefix(t *testing.T) {
	rules := getRules(Options{
		MaxSubnetPrefix: 30,
	})

	var sts SubnetTooSmall
	for _, r := range rules {
		if s, ok := r.(SubnetTooSmall); ok {
			sts = s
			break
		}
	}

	assert.Equal(t, 30, sts.MaxPrefix)
}
