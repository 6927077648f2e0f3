package netwire_aws

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureGraph is a minimal public-only topology: VPC, one public subnet,
// an internet gateway, and the default route through it.
func fixtureGraph() *TopologyGraph {
	return &TopologyGraph{
		Nodes: []ResourceNode{
			{Kind: KindVPC, Name: "acme-vpc", Attrs: VPCAttrs{CIDR: "10.0.0.0/16"}},
			{Kind: KindSubnet, Name: "acme-public-00-a", Attrs: SubnetAttrs{VPC: 0, CIDR: "10.0.0.0/20", Zone: "eu-west-1a", Access: AccessPublic, MapPublicIPOnLaunch: true}},
			{Kind: KindInternetGateway, Name: "acme-igw", Attrs: InternetGatewayAttrs{VPC: 0}},
			{Kind: KindRoute, Name: "acme-public-route", Attrs: RouteAttrs{VPC: 0, Destination: "0.0.0.0/0", Target: 2}},
		},
		Edges: []Edge{
			{From: 0, To: 1},
			{From: 0, To: 2},
			{From: 2, To: 3},
		},
	}
}

func TestTopologicalOrder(t *testing.T) {
	g := fixtureGraph()

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, 4)

	position := make(map[int]int)
	for pos, idx := range order {
		position[idx] = pos
	}

	for _, e := range g.Edges {
		assert.Less(t, position[e.From], position[e.To],
			"node %d must come before node %d", e.From, e.To)
	}
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	g := fixtureGraph()

	first, err := g.TopologicalOrder()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	g := fixtureGraph()
	g.Edges = append(g.Edges, Edge{From: 3, To: 2})

	_, err := g.TopologicalOrder()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
	assert.Contains(t, err.Error(), "acme-igw")
}

func TestValidate(t *testing.T) {
	require.NoError(t, fixtureGraph().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(g *TopologyGraph)
		contains string
	}{
		{
			name: "kind and attrs disagree",
			mutate: func(g *TopologyGraph) {
				g.Nodes[1].Attrs = VPCAttrs{CIDR: "10.0.0.0/20"}
			},
			contains: "carries VPC attrs",
		},
		{
			name: "reference out of range",
			mutate: func(g *TopologyGraph) {
				g.Nodes[1].Attrs = SubnetAttrs{VPC: 9, CIDR: "10.0.0.0/20", Access: AccessPublic}
			},
			contains: "out of range",
		},
		{
			name: "reference to wrong kind",
			mutate: func(g *TopologyGraph) {
				g.Nodes[3].Attrs = RouteAttrs{VPC: 0, Destination: "0.0.0.0/0", Target: 1}
			},
			contains: "is a Subnet",
		},
		{
			name: "edge out of range",
			mutate: func(g *TopologyGraph) {
				g.Edges = append(g.Edges, Edge{From: 0, To: 42})
			},
			contains: "out of range",
		},
		{
			name: "self edge",
			mutate: func(g *TopologyGraph) {
				g.Edges = append(g.Edges, Edge{From: 2, To: 2})
			},
			contains: "self-dependency",
		},
		{
			name: "missing attrs",
			mutate: func(g *TopologyGraph) {
				g.Nodes[0].Attrs = nil
			},
			contains: "missing attrs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fixtureGraph()
			tt.mutate(g)
			err := g.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDependenciesOf(t *testing.T) {
	g := fixtureGraph()

	assert.Empty(t, g.DependenciesOf(0))
	assert.Equal(t, []int{0}, g.DependenciesOf(1))
	assert.Equal(t, []int{2}, g.DependenciesOf(3))
}

func TestNodesOfKind(t *testing.T) {
	g := fixtureGraph()

	assert.Equal(t, []int{0}, g.NodesOfKind(KindVPC))
	assert.Equal(t, []int{1}, g.NodesOfKind(KindSubnet))
	assert.Empty(t, g.NodesOfKind(KindNatGateway))
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := fixtureGraph()

	data, err := g.ToJSON()
	require.NoError(t, err)

	parsed, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, g, parsed)
}

func TestGraph_ToYAML(t *testing.T) {
	g := fixtureGraph()

	out, err := g.ToYAML()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "nodes:")
	assert.Contains(t, text, "edges:")
	// YAML uses the JSON field names, not Go field names.
	assert.Contains(t, text, "mapPublicIpOnLaunch: true")
	assert.False(t, strings.Contains(text, "MapPublicIPOnLaunch"))
}
