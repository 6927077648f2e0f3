// Package plan turns a validated topology spec and an ordered zone list
// into a TopologyGraph. Building is pure: no clocks, no randomness, no
// network calls, so the same spec and zones always produce a
// byte-identical graph.
package plan

import (
	"net/netip"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/cidr"
	"github.com/lex00/netwire-aws-go/topology"
)

// SubnetPlan joins the CIDR allocation and zone placement for one subnet.
// The full layout is fixed before any graph node is emitted.
type SubnetPlan struct {
	Access netwire.SubnetAccess
	// Index is the ordinal within the subnet's own kind; both private
	// and public ordinals start at zero.
	Index int
	// Ordinal is the position in the global allocation order, private
	// subnets first.
	Ordinal int
	CIDR    netip.Prefix
	Zone    netwire.Zone
}

// placeZone maps a subnet index onto the zone list, wrapping when the
// index exceeds the zone count.
func placeZone(index int, zones []netwire.Zone) netwire.Zone {
	return zones[index%len(zones)]
}

// Layout computes the subnet layout without emitting nodes: CIDR blocks
// carved from the address block (private subnets take the low indices)
// and zones assigned round-robin per kind.
func Layout(spec *topology.Spec, zones []netwire.Zone) ([]SubnetPlan, error) {
	base, err := cidr.Parse(spec.AddressBlock)
	if err != nil {
		return nil, err
	}
	blocks, err := cidr.Allocate(base, spec.SubnetBits, spec.PrivateSubnets, spec.PublicSubnets)
	if err != nil {
		return nil, err
	}
	subnets := make([]SubnetPlan, 0, len(blocks))
	for i := 0; i < spec.PrivateSubnets; i++ {
		subnets = append(subnets, SubnetPlan{
			Access:  netwire.AccessPrivate,
			Index:   i,
			Ordinal: i,
			CIDR:    blocks[i],
			Zone:    placeZone(i, zones),
		})
	}
	for i := 0; i < spec.PublicSubnets; i++ {
		subnets = append(subnets, SubnetPlan{
			Access:  netwire.AccessPublic,
			Index:   i,
			Ordinal: spec.PrivateSubnets + i,
			CIDR:    blocks[spec.PrivateSubnets+i],
			Zone:    placeZone(i, zones),
		})
	}
	return subnets, nil
}

// Build assembles the topology graph for spec across zones. All
// validation happens up front; no partial graph is ever returned.
//
// Node emission order is fixed: VPC, private subnets, public subnets,
// internet gateway, public route, then one NAT chain per private
// ordinal (elastic IP, NAT gateway, route table, route, association).
func Build(spec *topology.Spec, zones []netwire.Zone) (*netwire.TopologyGraph, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return nil, &netwire.ZoneResolutionError{Region: spec.Region}
	}
	if spec.PrivateGateway && !spec.CreatePublicGateway() {
		return nil, &netwire.InvalidTopologyError{
			Reason: "private gateway egress requires the public gateway; NAT gateways route through it",
		}
	}
	if spec.PrivateGateway && spec.PrivateSubnets > spec.PublicSubnets {
		return nil, &netwire.InvalidTopologyError{
			Reason: "each private subnet needs a public subnet at the same ordinal to host its NAT gateway",
		}
	}
	subnets, err := Layout(spec, zones)
	if err != nil {
		return nil, err
	}

	b := &builder{namer: newNamer(spec)}

	vpc := b.add(netwire.KindVPC, b.namer.singletonName("vpc"), "vpc", netwire.VPCAttrs{
		CIDR:               spec.AddressBlock,
		EnableDNSSupport:   true,
		EnableDNSHostnames: true,
	})

	privateIdx := make([]int, 0, spec.PrivateSubnets)
	publicIdx := make([]int, 0, spec.PublicSubnets)
	for _, sp := range subnets {
		access := "private"
		if sp.Access == netwire.AccessPublic {
			access = "public"
		}
		idx := b.add(netwire.KindSubnet,
			b.namer.ordinalName(access, sp.Index, sp.Zone),
			ordinalPhrase(access+" subnet", sp.Index, sp.Zone),
			netwire.SubnetAttrs{
				VPC:                 vpc,
				CIDR:                sp.CIDR.String(),
				Zone:                sp.Zone.Name,
				Access:              sp.Access,
				MapPublicIPOnLaunch: sp.Access == netwire.AccessPublic,
			})
		b.edge(vpc, idx)
		if sp.Access == netwire.AccessPrivate {
			privateIdx = append(privateIdx, idx)
		} else {
			publicIdx = append(publicIdx, idx)
		}
	}

	if !spec.CreatePublicGateway() {
		return b.graph(), nil
	}

	igw := b.add(netwire.KindInternetGateway, b.namer.singletonName("igw"),
		"internet gateway", netwire.InternetGatewayAttrs{VPC: vpc})
	b.edge(vpc, igw)

	// Default route for the VPC main route table; public subnets stay
	// associated with the main table and route through the gateway.
	publicRoute := b.add(netwire.KindRoute, b.namer.singletonName("public-route"),
		"public default route", netwire.RouteAttrs{
			VPC:         vpc,
			Destination: "0.0.0.0/0",
			Target:      igw,
		})
	b.edge(igw, publicRoute)

	if !spec.PrivateGateway {
		return b.graph(), nil
	}

	// One egress chain per private ordinal. The NAT gateway lives in the
	// public subnet at the same ordinal, so the chain inherits that zone.
	for i, priv := range privateIdx {
		pub := publicIdx[i]
		zone := subnets[spec.PrivateSubnets+i].Zone

		eip := b.add(netwire.KindElasticIP,
			b.namer.ordinalName("nat-eip", i, zone),
			ordinalPhrase("nat elastic ip", i, zone),
			netwire.ElasticIPAttrs{Domain: "vpc"})
		b.edge(igw, eip)

		nat := b.add(netwire.KindNatGateway,
			b.namer.ordinalName("nat", i, zone),
			ordinalPhrase("nat gateway", i, zone),
			netwire.NatGatewayAttrs{Subnet: pub, ElasticIP: eip})
		b.edge(igw, nat)
		b.edge(eip, nat)
		b.edge(pub, nat)

		table := b.add(netwire.KindRouteTable,
			b.namer.ordinalName("private-rt", i, zone),
			ordinalPhrase("private route table", i, zone),
			netwire.RouteTableAttrs{VPC: vpc})
		b.edge(igw, table)
		b.edge(vpc, table)

		route := b.add(netwire.KindRoute,
			b.namer.ordinalName("private-route", i, zone),
			ordinalPhrase("private default route", i, zone),
			netwire.RouteAttrs{
				VPC:         vpc,
				Table:       &table,
				Destination: "0.0.0.0/0",
				Target:      nat,
			})
		b.edge(igw, route)
		b.edge(table, route)
		b.edge(nat, route)

		assoc := b.add(netwire.KindRouteTableAssociation,
			b.namer.ordinalName("private-rta", i, zone),
			ordinalPhrase("private route table association", i, zone),
			netwire.AssociationAttrs{Subnet: priv, Table: table})
		b.edge(igw, assoc)
		b.edge(table, assoc)
		b.edge(priv, assoc)
	}

	return b.graph(), nil
}

// builder accumulates nodes and ordering edges during a single Build run.
type builder struct {
	namer *namer
	nodes []netwire.ResourceNode
	edges []netwire.Edge
}

// add appends a node with its tags and token and returns its index.
func (b *builder) add(kind netwire.ResourceKind, name, phrase string, attrs netwire.NodeAttrs) int {
	tags := b.namer.tags(name, phrase)
	b.nodes = append(b.nodes, netwire.ResourceNode{
		Kind:  kind,
		Name:  name,
		Tags:  tags,
		Token: netwire.NodeToken(tags.Instance, name),
		Attrs: attrs,
	})
	return len(b.nodes) - 1
}

// edge records that the node at from must exist before the node at to.
func (b *builder) edge(from, to int) {
	b.edges = append(b.edges, netwire.Edge{From: from, To: to})
}

func (b *builder) graph() *netwire.TopologyGraph {
	return &netwire.TopologyGraph{Nodes: b.nodes, Edges: b.edges}
}
