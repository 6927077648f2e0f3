package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/topology"
)

func testSpec() *topology.Spec {
	return &topology.Spec{
		Ecosystem:      "acme",
		Instance:       "20260825",
		Description:    "core network",
		Region:         "us-west-2",
		AddressBlock:   "10.0.0.0/16",
		SubnetBits:     4,
		PrivateSubnets: 2,
		PublicSubnets:  2,
		PrivateGateway: true,
	}
}

func testZones() []netwire.Zone {
	return []netwire.Zone{
		netwire.NewZone("us-west-2a"),
		netwire.NewZone("us-west-2b"),
		netwire.NewZone("us-west-2c"),
	}
}

func subnetsOf(t *testing.T, g *netwire.TopologyGraph, access netwire.SubnetAccess) []netwire.SubnetAttrs {
	t.Helper()
	var out []netwire.SubnetAttrs
	for _, i := range g.NodesOfKind(netwire.KindSubnet) {
		attrs, ok := g.Nodes[i].Attrs.(netwire.SubnetAttrs)
		require.True(t, ok)
		if attrs.Access == access {
			out = append(out, attrs)
		}
	}
	return out
}

func TestBuild_FullTopology(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Len(t, g.NodesOfKind(netwire.KindVPC), 1)
	assert.Len(t, g.NodesOfKind(netwire.KindSubnet), 4)
	assert.Len(t, g.NodesOfKind(netwire.KindInternetGateway), 1)
	assert.Len(t, g.NodesOfKind(netwire.KindNatGateway), 2)
	assert.Len(t, g.NodesOfKind(netwire.KindElasticIP), 2)
	assert.Len(t, g.NodesOfKind(netwire.KindRouteTable), 2)
	assert.Len(t, g.NodesOfKind(netwire.KindRoute), 3)
	assert.Len(t, g.NodesOfKind(netwire.KindRouteTableAssociation), 2)
	assert.Len(t, g.Nodes, 17)

	private := subnetsOf(t, g, netwire.AccessPrivate)
	public := subnetsOf(t, g, netwire.AccessPublic)
	require.Len(t, private, 2)
	require.Len(t, public, 2)

	// Private subnets take the low end of the address block.
	assert.Equal(t, "10.0.0.0/20", private[0].CIDR)
	assert.Equal(t, "10.0.16.0/20", private[1].CIDR)
	assert.Equal(t, "10.0.32.0/20", public[0].CIDR)
	assert.Equal(t, "10.0.48.0/20", public[1].CIDR)

	// Both kinds start their zone walk at the first zone.
	assert.Equal(t, "us-west-2a", private[0].Zone)
	assert.Equal(t, "us-west-2a", public[0].Zone)
	assert.Equal(t, "us-west-2b", private[1].Zone)
	assert.Equal(t, "us-west-2b", public[1].Zone)

	for _, attrs := range private {
		assert.False(t, attrs.MapPublicIPOnLaunch)
	}
	for _, attrs := range public {
		assert.True(t, attrs.MapPublicIPOnLaunch)
	}
}

func TestBuild_EmissionOrder(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	var kinds []netwire.ResourceKind
	for _, node := range g.Nodes {
		kinds = append(kinds, node.Kind)
	}
	assert.Equal(t, []netwire.ResourceKind{
		netwire.KindVPC,
		netwire.KindSubnet, netwire.KindSubnet, netwire.KindSubnet, netwire.KindSubnet,
		netwire.KindInternetGateway,
		netwire.KindRoute,
		netwire.KindElasticIP, netwire.KindNatGateway, netwire.KindRouteTable,
		netwire.KindRoute, netwire.KindRouteTableAssociation,
		netwire.KindElasticIP, netwire.KindNatGateway, netwire.KindRouteTable,
		netwire.KindRoute, netwire.KindRouteTableAssociation,
	}, kinds)
}

func TestBuild_Names(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	var names []string
	for _, node := range g.Nodes {
		names = append(names, node.Name)
	}
	assert.Equal(t, []string{
		"acme-vpc",
		"acme-private-00-a", "acme-private-01-b",
		"acme-public-00-a", "acme-public-01-b",
		"acme-igw",
		"acme-public-route",
		"acme-nat-eip-00-a", "acme-nat-00-a", "acme-private-rt-00-a",
		"acme-private-route-00-a", "acme-private-rta-00-a",
		"acme-nat-eip-01-b", "acme-nat-01-b", "acme-private-rt-01-b",
		"acme-private-route-01-b", "acme-private-rta-01-b",
	}, names)
}

func TestBuild_Tags(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, node := range g.Nodes {
		assert.Equal(t, node.Name, node.Tags.Name)
		assert.Equal(t, "acme", node.Tags.Class)
		assert.Equal(t, "acme-20260825", node.Tags.Instance)
		assert.Contains(t, node.Tags.Desc, "core network")
		require.Len(t, node.Token, 36)
		assert.False(t, seen[node.Token], "token %s reused", node.Token)
		seen[node.Token] = true
	}

	sub := g.Nodes[g.NodesOfKind(netwire.KindSubnet)[0]]
	assert.Equal(t, "core network: private subnet 00 in us-west-2a", sub.Tags.Desc)
}

func TestBuild_NatChains(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	igw := g.NodesOfKind(netwire.KindInternetGateway)[0]
	public := g.NodesOfKind(netwire.KindSubnet)[2:]
	nats := g.NodesOfKind(netwire.KindNatGateway)
	require.Len(t, nats, 2)

	for i, idx := range nats {
		attrs := g.Nodes[idx].Attrs.(netwire.NatGatewayAttrs)
		assert.Equal(t, public[i], attrs.Subnet, "nat %d pairs with public subnet %d", i, i)
		assert.Equal(t, netwire.KindElasticIP, g.Nodes[attrs.ElasticIP].Kind)
		assert.Contains(t, g.DependenciesOf(idx), igw)
		assert.Contains(t, g.DependenciesOf(idx), attrs.ElasticIP)
	}

	// Every chain node waits for the internet gateway.
	for _, kind := range []netwire.ResourceKind{
		netwire.KindElasticIP, netwire.KindRouteTable, netwire.KindRouteTableAssociation,
	} {
		for _, idx := range g.NodesOfKind(kind) {
			assert.Contains(t, g.DependenciesOf(idx), igw, "%s misses the gateway edge", g.Nodes[idx].Name)
		}
	}
}

func TestBuild_Routes(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	var mainTable, tabled int
	for _, idx := range g.NodesOfKind(netwire.KindRoute) {
		attrs := g.Nodes[idx].Attrs.(netwire.RouteAttrs)
		assert.Equal(t, "0.0.0.0/0", attrs.Destination)
		if attrs.Table == nil {
			mainTable++
			assert.Equal(t, netwire.KindInternetGateway, g.Nodes[attrs.Target].Kind)
		} else {
			tabled++
			assert.Equal(t, netwire.KindRouteTable, g.Nodes[*attrs.Table].Kind)
			assert.Equal(t, netwire.KindNatGateway, g.Nodes[attrs.Target].Kind)
		}
	}
	assert.Equal(t, 1, mainTable)
	assert.Equal(t, 2, tabled)
}

func TestBuild_PublicOnly(t *testing.T) {
	spec := testSpec()
	spec.PrivateSubnets = 0
	spec.PrivateGateway = true

	g, err := Build(spec, testZones())
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Empty(t, g.NodesOfKind(netwire.KindNatGateway))
	assert.Empty(t, g.NodesOfKind(netwire.KindElasticIP))
	assert.Empty(t, g.NodesOfKind(netwire.KindRouteTable))
	assert.Empty(t, g.NodesOfKind(netwire.KindRouteTableAssociation))
	assert.Len(t, g.NodesOfKind(netwire.KindRoute), 1)
	assert.Len(t, g.Nodes, 5)
}

func TestBuild_NoGateways(t *testing.T) {
	spec := testSpec()
	off := false
	spec.PublicGateway = &off
	spec.PrivateGateway = false

	g, err := Build(spec, testZones())
	require.NoError(t, err)

	assert.Empty(t, g.NodesOfKind(netwire.KindInternetGateway))
	assert.Empty(t, g.NodesOfKind(netwire.KindRoute))
	assert.Len(t, g.Nodes, 5)
}

func TestBuild_ZoneWraparound(t *testing.T) {
	spec := testSpec()
	spec.PrivateSubnets = 5
	spec.PublicSubnets = 0
	spec.PrivateGateway = false

	g, err := Build(spec, testZones())
	require.NoError(t, err)

	var assigned []string
	for _, attrs := range subnetsOf(t, g, netwire.AccessPrivate) {
		assigned = append(assigned, attrs.Zone)
	}
	assert.Equal(t, []string{
		"us-west-2a", "us-west-2b", "us-west-2c", "us-west-2a", "us-west-2b",
	}, assigned)
}

func TestBuild_Deterministic(t *testing.T) {
	first, err := Build(testSpec(), testZones())
	require.NoError(t, err)
	second, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	require.Equal(t, first, second)

	a, err := first.ToJSON()
	require.NoError(t, err)
	b, err := second.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuild_PrivateGatewayNeedsPublicGateway(t *testing.T) {
	spec := testSpec()
	off := false
	spec.PublicGateway = &off
	spec.PrivateGateway = true

	g, err := Build(spec, testZones())
	assert.Nil(t, g)

	var topoErr *netwire.InvalidTopologyError
	require.ErrorAs(t, err, &topoErr)
	assert.Contains(t, topoErr.Reason, "public gateway")
}

func TestBuild_PrivateGatewayNeedsPairedPublicSubnets(t *testing.T) {
	spec := testSpec()
	spec.PrivateSubnets = 3
	spec.PublicSubnets = 2

	g, err := Build(spec, testZones())
	assert.Nil(t, g)

	var topoErr *netwire.InvalidTopologyError
	require.ErrorAs(t, err, &topoErr)
	assert.Contains(t, topoErr.Reason, "same ordinal")
}

func TestBuild_CidrExhaustion(t *testing.T) {
	spec := testSpec()
	spec.SubnetBits = 2
	spec.PrivateSubnets = 3
	spec.PublicSubnets = 2

	g, err := Build(spec, testZones())
	assert.Nil(t, g)

	var exhausted *netwire.CidrExhaustionError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 5, exhausted.Requested)
	assert.Equal(t, 4, exhausted.Capacity)
}

func TestBuild_NoZones(t *testing.T) {
	g, err := Build(testSpec(), nil)
	assert.Nil(t, g)

	var zoneErr *netwire.ZoneResolutionError
	require.ErrorAs(t, err, &zoneErr)
	assert.Equal(t, "us-west-2", zoneErr.Region)
}

func TestBuild_InvalidSpec(t *testing.T) {
	spec := testSpec()
	spec.AddressBlock = "not-a-cidr"

	g, err := Build(spec, testZones())
	assert.Nil(t, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address_block")
}

func TestBuild_TopologicalOrderCoversGraph(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, len(g.Nodes))

	position := make(map[int]int, len(order))
	for pos, idx := range order {
		position[idx] = pos
	}
	for _, e := range g.Edges {
		assert.Less(t, position[e.From], position[e.To],
			"%s must come before %s", g.Nodes[e.From].Name, g.Nodes[e.To].Name)
	}
}

func TestLayout_Ordinals(t *testing.T) {
	subnets, err := Layout(testSpec(), testZones())
	require.NoError(t, err)
	require.Len(t, subnets, 4)

	for i, sp := range subnets {
		assert.Equal(t, i, sp.Ordinal)
	}
	assert.Equal(t, netwire.AccessPrivate, subnets[0].Access)
	assert.Equal(t, netwire.AccessPrivate, subnets[1].Access)
	assert.Equal(t, netwire.AccessPublic, subnets[2].Access)
	assert.Equal(t, netwire.AccessPublic, subnets[3].Access)
	assert.Equal(t, 0, subnets[2].Index)
	assert.Equal(t, subnets[0].Zone, subnets[2].Zone)
}

func TestBuild_GraphSurvivesRoundTrip(t *testing.T) {
	g, err := Build(testSpec(), testZones())
	require.NoError(t, err)

	raw, err := g.ToJSON()
	require.NoError(t, err)
	loaded, err := netwire.FromJSON(raw)
	require.NoError(t, err)
	require.Equal(t, g, loaded)
	require.NoError(t, loaded.Validate())
}

func TestBuild_ErrorMessage(t *testing.T) {
	spec := testSpec()
	spec.PrivateSubnets = 3

	_, err := Build(spec, testZones())
	require.EqualError(t, err,
		"invalid topology: each private subnet needs a public subnet at the same ordinal to host its NAT gateway")
}
