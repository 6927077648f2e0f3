// Package cfn renders a topology graph as a CloudFormation template.
//
// Two graph constructs have no direct CloudFormation encoding. Templates
// cannot address the implicit main route table of a VPC, so the renderer
// synthesizes an explicit PublicRouteTable, rewires the main-table route
// onto it, and associates every public subnet with it. And a graph edge
// originating at the internet gateway means "gateway attached and
// routable", which CloudFormation expresses as a DependsOn entry on the
// synthesized VPCGatewayAttachment.
package cfn

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
	"gopkg.in/yaml.v3"

	netwire "github.com/lex00/netwire-aws-go"
)

// resourceTypes maps node kinds to CloudFormation resource types.
var resourceTypes = map[netwire.ResourceKind]string{
	netwire.KindVPC:                   "AWS::EC2::VPC",
	netwire.KindSubnet:                "AWS::EC2::Subnet",
	netwire.KindInternetGateway:       "AWS::EC2::InternetGateway",
	netwire.KindNatGateway:            "AWS::EC2::NatGateway",
	netwire.KindElasticIP:             "AWS::EC2::EIP",
	netwire.KindRouteTable:            "AWS::EC2::RouteTable",
	netwire.KindRoute:                 "AWS::EC2::Route",
	netwire.KindRouteTableAssociation: "AWS::EC2::SubnetRouteTableAssociation",
}

const (
	attachmentID       = "VPCGatewayAttachment"
	publicRouteTableID = "PublicRouteTable"
)

// Render converts a topology graph into a CloudFormation template. The
// graph must be internally consistent and contain exactly one VPC.
func Render(g *netwire.TopologyGraph, description string) (*netwire.Template, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if n := len(g.NodesOfKind(netwire.KindVPC)); n != 1 {
		return nil, fmt.Errorf("template rendering requires exactly one VPC, got %d", n)
	}
	if n := len(g.NodesOfKind(netwire.KindInternetGateway)); n > 1 {
		return nil, fmt.Errorf("template rendering requires at most one internet gateway, got %d", n)
	}

	ids := logicalIDs(g)
	igw := -1
	if idx := g.NodesOfKind(netwire.KindInternetGateway); len(idx) == 1 {
		igw = idx[0]
	}
	needsPublicTable := false
	for _, idx := range g.NodesOfKind(netwire.KindRoute) {
		if g.Nodes[idx].Attrs.(netwire.RouteAttrs).Table == nil {
			needsPublicTable = true
		}
	}

	template := &netwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              description,
		Resources:                make(map[string]netwire.ResourceDef),
	}

	for i, node := range g.Nodes {
		props, err := renderProperties(g, ids, i)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", node.Name, err)
		}
		template.Resources[ids[i]] = netwire.ResourceDef{
			Type:       resourceTypes[node.Kind],
			Properties: props,
		}
	}

	if igw >= 0 {
		vpc := g.NodesOfKind(netwire.KindVPC)[0]
		template.Resources[attachmentID] = netwire.ResourceDef{
			Type: "AWS::EC2::VPCGatewayAttachment",
			Properties: map[string]any{
				"InternetGatewayId": ref(ids[igw]),
				"VpcId":             ref(ids[vpc]),
			},
		}
	}
	if needsPublicTable {
		synthesizePublicTable(g, ids, template)
	}

	resolveDependsOn(g, ids, igw, template)

	template.Outputs = renderOutputs(g, ids)
	return template, nil
}

// logicalIDs assigns a PascalCase CloudFormation logical ID to every node,
// numbering per-ordinal kinds in node order.
func logicalIDs(g *netwire.TopologyGraph) []string {
	ids := make([]string, len(g.Nodes))
	counters := map[string]int{}
	numbered := func(prefix string) string {
		id := fmt.Sprintf("%s%02d", prefix, counters[prefix])
		counters[prefix]++
		return id
	}
	for i, node := range g.Nodes {
		switch attrs := node.Attrs.(type) {
		case netwire.VPCAttrs:
			ids[i] = "VPC"
		case netwire.SubnetAttrs:
			if attrs.Access == netwire.AccessPublic {
				ids[i] = numbered("PublicSubnet")
			} else {
				ids[i] = numbered("PrivateSubnet")
			}
		case netwire.InternetGatewayAttrs:
			ids[i] = "InternetGateway"
		case netwire.ElasticIPAttrs:
			ids[i] = numbered("NatEip")
		case netwire.NatGatewayAttrs:
			ids[i] = numbered("NatGateway")
		case netwire.RouteTableAttrs:
			ids[i] = numbered("PrivateRouteTable")
		case netwire.RouteAttrs:
			if attrs.Table == nil {
				ids[i] = "PublicRoute"
			} else {
				ids[i] = numbered("PrivateRoute")
			}
		case netwire.AssociationAttrs:
			ids[i] = numbered("PrivateSubnetRouteTableAssociation")
		}
	}
	return ids
}

// renderProperties builds the Properties map for one node.
func renderProperties(g *netwire.TopologyGraph, ids []string, i int) (map[string]any, error) {
	node := g.Nodes[i]
	switch attrs := node.Attrs.(type) {
	case netwire.VPCAttrs:
		return map[string]any{
			"CidrBlock":          attrs.CIDR,
			"EnableDnsSupport":   attrs.EnableDNSSupport,
			"EnableDnsHostnames": attrs.EnableDNSHostnames,
			"Tags":               renderTags(node.Tags),
		}, nil
	case netwire.SubnetAttrs:
		return map[string]any{
			"VpcId":               ref(ids[attrs.VPC]),
			"CidrBlock":           attrs.CIDR,
			"AvailabilityZone":    attrs.Zone,
			"MapPublicIpOnLaunch": attrs.MapPublicIPOnLaunch,
			"Tags":                renderTags(node.Tags),
		}, nil
	case netwire.InternetGatewayAttrs:
		return map[string]any{
			"Tags": renderTags(node.Tags),
		}, nil
	case netwire.ElasticIPAttrs:
		return map[string]any{
			"Domain": attrs.Domain,
			"Tags":   renderTags(node.Tags),
		}, nil
	case netwire.NatGatewayAttrs:
		return map[string]any{
			"AllocationId": getAtt(ids[attrs.ElasticIP], "AllocationId"),
			"SubnetId":     ref(ids[attrs.Subnet]),
			"Tags":         renderTags(node.Tags),
		}, nil
	case netwire.RouteTableAttrs:
		return map[string]any{
			"VpcId": ref(ids[attrs.VPC]),
			"Tags":  renderTags(node.Tags),
		}, nil
	case netwire.RouteAttrs:
		tableID := publicRouteTableID
		if attrs.Table != nil {
			tableID = ids[*attrs.Table]
		}
		props := map[string]any{
			"RouteTableId":         ref(tableID),
			"DestinationCidrBlock": attrs.Destination,
		}
		switch g.Nodes[attrs.Target].Kind {
		case netwire.KindInternetGateway:
			props["GatewayId"] = ref(ids[attrs.Target])
		case netwire.KindNatGateway:
			props["NatGatewayId"] = ref(ids[attrs.Target])
		default:
			return nil, fmt.Errorf("route target %s is not a gateway", g.Nodes[attrs.Target].Name)
		}
		return props, nil
	case netwire.AssociationAttrs:
		return map[string]any{
			"SubnetId":     ref(ids[attrs.Subnet]),
			"RouteTableId": ref(ids[attrs.Table]),
		}, nil
	default:
		return nil, fmt.Errorf("unknown attrs %T", node.Attrs)
	}
}

// synthesizePublicTable adds the explicit route table standing in for the
// VPC main route table, plus one association per public subnet.
func synthesizePublicTable(g *netwire.TopologyGraph, ids []string, template *netwire.Template) {
	vpc := g.NodesOfKind(netwire.KindVPC)[0]
	tags := g.Nodes[vpc].Tags
	tags.Name = tags.Class + "-public-rt"
	template.Resources[publicRouteTableID] = netwire.ResourceDef{
		Type: "AWS::EC2::RouteTable",
		Properties: map[string]any{
			"VpcId": ref(ids[vpc]),
			"Tags":  renderTags(tags),
		},
	}

	n := 0
	for _, idx := range g.NodesOfKind(netwire.KindSubnet) {
		if g.Nodes[idx].Attrs.(netwire.SubnetAttrs).Access != netwire.AccessPublic {
			continue
		}
		id := fmt.Sprintf("PublicSubnetRouteTableAssociation%02d", n)
		n++
		template.Resources[id] = netwire.ResourceDef{
			Type: "AWS::EC2::SubnetRouteTableAssociation",
			Properties: map[string]any{
				"SubnetId":     ref(ids[idx]),
				"RouteTableId": ref(publicRouteTableID),
			},
		}
	}
}

// resolveDependsOn carries graph edges into DependsOn entries, dropping
// orderings CloudFormation already infers from Ref and Fn::GetAtt. Edges
// out of the internet gateway pin the attachment instead: a gateway is
// only usable once attached.
func resolveDependsOn(g *netwire.TopologyGraph, ids []string, igw int, template *netwire.Template) {
	for i := range g.Nodes {
		var deps []string
		implied := referencedIDs(template.Resources[ids[i]].Properties)
		seen := map[string]bool{}
		for _, e := range g.Edges {
			if e.To != i {
				continue
			}
			dep := ids[e.From]
			if igw >= 0 && e.From == igw {
				dep = attachmentID
			}
			if implied[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
		if len(deps) == 0 {
			continue
		}
		sort.Strings(deps)
		def := template.Resources[ids[i]]
		def.DependsOn = deps
		template.Resources[ids[i]] = def
	}
}

// referencedIDs walks rendered properties and collects every logical ID
// reached through Ref or Fn::GetAtt, typed or map-encoded.
func referencedIDs(value any) map[string]bool {
	found := map[string]bool{}
	var walk func(v any)
	walk = func(v any) {
		switch v := v.(type) {
		case intrinsics.Ref:
			found[v.LogicalName] = true
		case intrinsics.GetAtt:
			found[v.LogicalName] = true
		case map[string]any:
			if name, ok := v["Ref"].(string); ok {
				found[name] = true
				return
			}
			if att, ok := v["Fn::GetAtt"].([]string); ok && len(att) > 0 {
				found[att[0]] = true
				return
			}
			if att, ok := v["Fn::GetAtt"].([]any); ok && len(att) > 0 {
				if name, ok := att[0].(string); ok {
					found[name] = true
				}
				return
			}
			for _, val := range v {
				walk(val)
			}
		case []any:
			for _, elem := range v {
				walk(elem)
			}
		}
	}
	walk(value)
	return found
}

func renderOutputs(g *netwire.TopologyGraph, ids []string) map[string]netwire.Output {
	vpc := g.NodesOfKind(netwire.KindVPC)[0]
	outputs := map[string]netwire.Output{
		"VpcId": {
			Description: "VPC identifier",
			Value:       ref(ids[vpc]),
			Export: &struct {
				Name string `json:"Name"`
			}{Name: g.Nodes[vpc].Tags.Instance + "-vpc-id"},
		},
	}
	for _, idx := range g.NodesOfKind(netwire.KindSubnet) {
		attrs := g.Nodes[idx].Attrs.(netwire.SubnetAttrs)
		outputs[ids[idx]+"Id"] = netwire.Output{
			Description: fmt.Sprintf("%s subnet in %s", attrs.Access, attrs.Zone),
			Value:       ref(ids[idx]),
		}
	}
	return outputs
}

// renderTags emits the CloudFormation tag list in a fixed key order.
func renderTags(tags netwire.TagSet) []any {
	return []any{
		intrinsics.Tag{Key: "Name", Value: tags.Name},
		intrinsics.Tag{Key: "Class", Value: tags.Class},
		intrinsics.Tag{Key: "Instance", Value: tags.Instance},
		intrinsics.Tag{Key: "Desc", Value: tags.Desc},
	}
}

func ref(id string) intrinsics.Ref {
	return intrinsics.Ref{LogicalName: id}
}

func getAtt(id, attribute string) intrinsics.GetAtt {
	return intrinsics.GetAtt{LogicalName: id, Attribute: attribute}
}

// ToJSON serializes the template to JSON.
func ToJSON(t *netwire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML, normalizing through JSON so the
// document carries CloudFormation's key casing.
func ToYAML(t *netwire.Template) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
