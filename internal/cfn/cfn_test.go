package cfn

import (
	"testing"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/plan"
	"github.com/lex00/netwire-aws-go/topology"
)

func testGraph(t *testing.T, mutate func(*topology.Spec)) *netwire.TopologyGraph {
	t.Helper()
	spec := &topology.Spec{
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
	if mutate != nil {
		mutate(spec)
	}
	zones := []netwire.Zone{
		netwire.NewZone("us-west-2a"),
		netwire.NewZone("us-west-2b"),
		netwire.NewZone("us-west-2c"),
	}
	g, err := plan.Build(spec, zones)
	require.NoError(t, err)
	return g
}

func TestRender_ResourceInventory(t *testing.T) {
	template, err := Render(testGraph(t, nil), "core network")
	require.NoError(t, err)

	assert.Equal(t, "2010-09-09", template.AWSTemplateFormatVersion)
	assert.Equal(t, "core network", template.Description)

	byType := map[string]int{}
	for _, res := range template.Resources {
		byType[res.Type]++
	}
	assert.Equal(t, map[string]int{
		"AWS::EC2::VPC":                         1,
		"AWS::EC2::Subnet":                      4,
		"AWS::EC2::InternetGateway":             1,
		"AWS::EC2::VPCGatewayAttachment":        1,
		"AWS::EC2::EIP":                         2,
		"AWS::EC2::NatGateway":                  2,
		"AWS::EC2::RouteTable":                  3,
		"AWS::EC2::Route":                       3,
		"AWS::EC2::SubnetRouteTableAssociation": 4,
	}, byType)

	for _, id := range []string{
		"VPC", "InternetGateway", "VPCGatewayAttachment", "PublicRouteTable",
		"PrivateSubnet00", "PrivateSubnet01", "PublicSubnet00", "PublicSubnet01",
		"NatEip00", "NatGateway01", "PrivateRouteTable00", "PublicRoute",
		"PrivateRoute01", "PrivateSubnetRouteTableAssociation00",
		"PublicSubnetRouteTableAssociation01",
	} {
		assert.Contains(t, template.Resources, id)
	}
}

func TestRender_VPC(t *testing.T) {
	template, err := Render(testGraph(t, nil), "")
	require.NoError(t, err)

	vpc := template.Resources["VPC"]
	assert.Equal(t, "10.0.0.0/16", vpc.Properties["CidrBlock"])
	assert.Equal(t, true, vpc.Properties["EnableDnsSupport"])
	assert.Equal(t, true, vpc.Properties["EnableDnsHostnames"])
	assert.Empty(t, vpc.DependsOn)

	tags, ok := vpc.Properties["Tags"].([]any)
	require.True(t, ok)
	assert.Equal(t, intrinsics.Tag{Key: "Name", Value: "acme-vpc"}, tags[0])
	assert.Equal(t, intrinsics.Tag{Key: "Class", Value: "acme"}, tags[1])
	assert.Equal(t, intrinsics.Tag{Key: "Instance", Value: "acme-20260825"}, tags[2])
}

func TestRender_Subnets(t *testing.T) {
	template, err := Render(testGraph(t, nil), "")
	require.NoError(t, err)

	private := template.Resources["PrivateSubnet00"]
	assert.Equal(t, intrinsics.Ref{LogicalName: "VPC"}, private.Properties["VpcId"])
	assert.Equal(t, "10.0.0.0/20", private.Properties["CidrBlock"])
	assert.Equal(t, "us-west-2a", private.Properties["AvailabilityZone"])
	assert.Equal(t, false, private.Properties["MapPublicIpOnLaunch"])
	assert.Empty(t, private.DependsOn, "VpcId ref already orders subnet after VPC")

	public := template.Resources["PublicSubnet01"]
	assert.Equal(t, "10.0.48.0/20", public.Properties["CidrBlock"])
	assert.Equal(t, "us-west-2b", public.Properties["AvailabilityZone"])
	assert.Equal(t, true, public.Properties["MapPublicIpOnLaunch"])
}

func TestRender_GatewayAttachment(t *testing.T) {
	template, err := Render(testGraph(t, nil), "")
	require.NoError(t, err)

	attachment := template.Resources["VPCGatewayAttachment"]
	assert.Equal(t, "AWS::EC2::VPCGatewayAttachment", attachment.Type)
	assert.Equal(t, intrinsics.Ref{LogicalName: "InternetGateway"}, attachment.Properties["InternetGatewayId"])
	assert.Equal(t, intrinsics.Ref{LogicalName: "VPC"}, attachment.Properties["VpcId"])
	assert.Empty(t, attachment.DependsOn)
}

func TestRender_NatChain(t *testing.T) {
	template, err := Render(testGraph(t, nil), "")
	require.NoError(t, err)

	eip := template.Resources["NatEip00"]
	assert.Equal(t, "vpc", eip.Properties["Domain"])
	assert.Equal(t, []string{"VPCGatewayAttachment"}, eip.DependsOn)

	nat := template.Resources["NatGateway00"]
	assert.Equal(t, intrinsics.GetAtt{LogicalName: "NatEip00", Attribute: "AllocationId"},
		nat.Properties["AllocationId"])
	assert.Equal(t, intrinsics.Ref{LogicalName: "PublicSubnet00"}, nat.Properties["SubnetId"])
	assert.Equal(t, []string{"VPCGatewayAttachment"}, nat.DependsOn)

	route := template.Resources["PrivateRoute00"]
	assert.Equal(t, intrinsics.Ref{LogicalName: "PrivateRouteTable00"}, route.Properties["RouteTableId"])
	assert.Equal(t, "0.0.0.0/0", route.Properties["DestinationCidrBlock"])
	assert.Equal(t, intrinsics.Ref{LogicalName: "NatGateway00"}, route.Properties["NatGatewayId"])
	assert.Equal(t, []string{"VPCGatewayAttachment"}, route.DependsOn)

	assoc := template.Resources["PrivateSubnetRouteTableAssociation00"]
	assert.Equal(t, intrinsics.Ref{LogicalName: "PrivateSubnet00"}, assoc.Properties["SubnetId"])
	assert.Equal(t, intrinsics.Ref{LogicalName: "PrivateRouteTable00"}, assoc.Properties["RouteTableId"])
	assert.Equal(t, []string{"VPCGatewayAttachment"}, assoc.DependsOn)
}

func TestRender_PublicRouteUsesSynthesizedTable(t *testing.T) {
	template, err := Render(testGraph(t, nil), "")
	require.NoError(t, err)

	table := template.Resources["PublicRouteTable"]
	assert.Equal(t, "AWS::EC2::RouteTable", table.Type)
	assert.Equal(t, intrinsics.Ref{LogicalName: "VPC"}, table.Properties["VpcId"])

	route := template.Resources["PublicRoute"]
	assert.Equal(t, intrinsics.Ref{LogicalName: "PublicRouteTable"}, route.Properties["RouteTableId"])
	assert.Equal(t, intrinsics.Ref{LogicalName: "InternetGateway"}, route.Properties["GatewayId"])
	assert.Equal(t, []string{"VPCGatewayAttachment"}, route.DependsOn)

	assoc := template.Resources["PublicSubnetRouteTableAssociation00"]
	assert.Equal(t, intrinsics.Ref{LogicalName: "PublicSubnet00"}, assoc.Properties["SubnetId"])
	assert.Equal(t, intrinsics.Ref{LogicalName: "PublicRouteTable"}, assoc.Properties["RouteTableId"])
}

func TestRender_NoGateways(t *testing.T) {
	g := testGraph(t, func(spec *topology.Spec) {
		off := false
		spec.PublicGateway = &off
		spec.PrivateGateway = false
	})
	template, err := Render(g, "")
	require.NoError(t, err)

	assert.Len(t, template.Resources, 5)
	assert.NotContains(t, template.Resources, "VPCGatewayAttachment")
	assert.NotContains(t, template.Resources, "PublicRouteTable")
	assert.NotContains(t, template.Resources, "InternetGateway")
}

func TestRender_Outputs(t *testing.T) {
	template, err := Render(testGraph(t, nil), "")
	require.NoError(t, err)

	vpcID, ok := template.Outputs["VpcId"]
	require.True(t, ok)
	assert.Equal(t, intrinsics.Ref{LogicalName: "VPC"}, vpcID.Value)
	require.NotNil(t, vpcID.Export)
	assert.Equal(t, "acme-20260825-vpc-id", vpcID.Export.Name)

	subnet, ok := template.Outputs["PrivateSubnet00Id"]
	require.True(t, ok)
	assert.Equal(t, intrinsics.Ref{LogicalName: "PrivateSubnet00"}, subnet.Value)
	assert.Contains(t, subnet.Description, "us-west-2a")
}

func TestRender_RequiresSingleVPC(t *testing.T) {
	g := &netwire.TopologyGraph{
		Nodes: []netwire.ResourceNode{
			{Kind: netwire.KindVPC, Name: "a", Attrs: netwire.VPCAttrs{CIDR: "10.0.0.0/16"}},
			{Kind: netwire.KindVPC, Name: "b", Attrs: netwire.VPCAttrs{CIDR: "10.1.0.0/16"}},
		},
	}
	_, err := Render(g, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one VPC")
}

func TestRender_RejectsInvalidGraph(t *testing.T) {
	g := &netwire.TopologyGraph{
		Nodes: []netwire.ResourceNode{
			{Kind: netwire.KindVPC, Name: "vpc", Attrs: netwire.SubnetAttrs{}},
		},
	}
	_, err := Render(g, "")
	require.Error(t, err)
}

func TestRender_Deterministic(t *testing.T) {
	first, err := Render(testGraph(t, nil), "core network")
	require.NoError(t, err)
	second, err := Render(testGraph(t, nil), "core network")
	require.NoError(t, err)

	a, err := ToJSON(first)
	require.NoError(t, err)
	b, err := ToJSON(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestToYAML(t *testing.T) {
	template, err := Render(testGraph(t, nil), "core network")
	require.NoError(t, err)

	data, err := ToYAML(template)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "AWSTemplateFormatVersion:")
	assert.Contains(t, text, "Type: AWS::EC2::VPC")
	assert.Contains(t, text, "MapPublicIpOnLaunch: true")
	assert.Contains(t, text, "DependsOn:")
	assert.NotContains(t, text, "attrs:", "graph serialization must not leak into templates")
}
