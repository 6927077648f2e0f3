// Package manifest renders a topology graph as Kubernetes manifests for
// AWS Controllers for Kubernetes (ACK).
//
// The graph's Route and RouteTableAssociation nodes have no standalone
// CRD: ACK inlines routes in the RouteTable spec, so each route folds
// into its table's spec.routes and each association into spec.subnetRefs.
// The public default route lives in the VPC main route table, which no
// manifest can address, so the renderer synthesizes an explicit public
// RouteTable holding that route and every public subnet, the same move
// the CloudFormation renderer makes.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	netwire "github.com/lex00/netwire-aws-go"
	ec2v1alpha1 "github.com/lex00/netwire-aws-go/resources/k8s/ec2/v1alpha1"
)

// Options configures manifest rendering.
type Options struct {
	// Namespace for every emitted object. Empty means cluster default.
	Namespace string
}

// Render maps a planned graph onto ACK CRD objects, in a deterministic
// order: VPC, subnets, internet gateway, the synthesized public route
// table, then each NAT chain (elastic IP, NAT gateway, private route
// table).
func Render(g *netwire.TopologyGraph, opts Options) ([]any, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	if n := len(g.NodesOfKind(netwire.KindVPC)); n != 1 {
		return nil, fmt.Errorf("graph must contain exactly one VPC, found %d", n)
	}

	r := renderer{graph: g, namespace: opts.Namespace}
	var objects []any

	for i, node := range g.Nodes {
		switch attrs := node.Attrs.(type) {
		case netwire.VPCAttrs:
			objects = append(objects, r.vpc(node, attrs))
		case netwire.SubnetAttrs:
			objects = append(objects, r.subnet(node, attrs))
		case netwire.InternetGatewayAttrs:
			objects = append(objects, r.internetGateway(node, attrs))
			if pub := r.publicRouteTable(); pub != nil {
				objects = append(objects, pub)
			}
		case netwire.ElasticIPAttrs:
			objects = append(objects, r.elasticIP(node))
		case netwire.NatGatewayAttrs:
			objects = append(objects, r.natGateway(node, attrs))
		case netwire.RouteTableAttrs:
			objects = append(objects, r.routeTable(i, node, attrs))
		case netwire.RouteAttrs, netwire.AssociationAttrs:
			// Folded into their route table.
		default:
			return nil, fmt.Errorf("node %q: no manifest mapping for kind %s", node.Name, node.Kind)
		}
	}

	return objects, nil
}

// Write renders the graph and writes a multi-document YAML stream. Field
// names come from the CRD JSON tags: each object is JSON-normalized
// before YAML encoding.
func Write(g *netwire.TopologyGraph, opts Options, w io.Writer) error {
	objects, err := Render(g, opts)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, obj := range objects {
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("serializing manifest: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("normalizing manifest: %w", err)
		}
		// apimachinery always serializes these, but they carry nothing
		// in a desired-state manifest.
		delete(doc, "status")
		if md, ok := doc["metadata"].(map[string]any); ok {
			delete(md, "creationTimestamp")
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
	}
	return enc.Close()
}

// ToYAML renders the graph to a multi-document YAML byte slice.
func ToYAML(g *netwire.TopologyGraph, opts Options) ([]byte, error) {
	var sb strings.Builder
	if err := Write(g, opts, &sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

type renderer struct {
	graph     *netwire.TopologyGraph
	namespace string
}

func (r renderer) meta(name string) metav1.ObjectMeta {
	return metav1.ObjectMeta{Name: name, Namespace: r.namespace}
}

func (r renderer) typeMeta(kind string) metav1.TypeMeta {
	return metav1.TypeMeta{APIVersion: ec2v1alpha1.GroupVersion, Kind: kind}
}

func (r renderer) vpc(node netwire.ResourceNode, attrs netwire.VPCAttrs) *ec2v1alpha1.VPC {
	return &ec2v1alpha1.VPC{
		TypeMeta:   r.typeMeta("VPC"),
		ObjectMeta: r.meta(node.Name),
		Spec: ec2v1alpha1.VPCSpec{
			CIDRBlocks:         []*string{ptr(attrs.CIDR)},
			EnableDNSSupport:   ptr(attrs.EnableDNSSupport),
			EnableDNSHostnames: ptr(attrs.EnableDNSHostnames),
			Tags:               crdTags(node.Tags),
		},
	}
}

func (r renderer) subnet(node netwire.ResourceNode, attrs netwire.SubnetAttrs) *ec2v1alpha1.Subnet {
	return &ec2v1alpha1.Subnet{
		TypeMeta:   r.typeMeta("Subnet"),
		ObjectMeta: r.meta(node.Name),
		Spec: ec2v1alpha1.SubnetSpec{
			AvailabilityZone:    ptr(attrs.Zone),
			CIDRBlock:           ptr(attrs.CIDR),
			VPCRef:              r.refTo(attrs.VPC),
			MapPublicIPOnLaunch: ptr(attrs.MapPublicIPOnLaunch),
			Tags:                crdTags(node.Tags),
		},
	}
}

func (r renderer) internetGateway(node netwire.ResourceNode, attrs netwire.InternetGatewayAttrs) *ec2v1alpha1.InternetGateway {
	return &ec2v1alpha1.InternetGateway{
		TypeMeta:   r.typeMeta("InternetGateway"),
		ObjectMeta: r.meta(node.Name),
		Spec: ec2v1alpha1.InternetGatewaySpec{
			VPCRef: r.refTo(attrs.VPC),
			Tags:   crdTags(node.Tags),
		},
	}
}

func (r renderer) elasticIP(node netwire.ResourceNode) *ec2v1alpha1.ElasticIPAddress {
	return &ec2v1alpha1.ElasticIPAddress{
		TypeMeta:   r.typeMeta("ElasticIPAddress"),
		ObjectMeta: r.meta(node.Name),
		Spec: ec2v1alpha1.ElasticIPAddressSpec{
			Tags: crdTags(node.Tags),
		},
	}
}

func (r renderer) natGateway(node netwire.ResourceNode, attrs netwire.NatGatewayAttrs) *ec2v1alpha1.NATGateway {
	return &ec2v1alpha1.NATGateway{
		TypeMeta:   r.typeMeta("NATGateway"),
		ObjectMeta: r.meta(node.Name),
		Spec: ec2v1alpha1.NATGatewaySpec{
			AllocationRef:    r.refTo(attrs.ElasticIP),
			SubnetRef:        r.refTo(attrs.Subnet),
			ConnectivityType: ptr("public"),
			Tags:             crdTags(node.Tags),
		},
	}
}

// routeTable emits a private route table with its folded route and
// association.
func (r renderer) routeTable(index int, node netwire.ResourceNode, attrs netwire.RouteTableAttrs) *ec2v1alpha1.RouteTable {
	spec := ec2v1alpha1.RouteTableSpec{
		VPCRef: r.refTo(attrs.VPC),
		Tags:   crdTags(node.Tags),
	}

	for _, n := range r.graph.Nodes {
		switch a := n.Attrs.(type) {
		case netwire.RouteAttrs:
			if a.Table != nil && *a.Table == index {
				spec.Routes = append(spec.Routes, r.route(a))
			}
		case netwire.AssociationAttrs:
			if a.Table == index {
				spec.SubnetRefs = append(spec.SubnetRefs, r.refTo(a.Subnet))
			}
		}
	}

	return &ec2v1alpha1.RouteTable{
		TypeMeta:   r.typeMeta("RouteTable"),
		ObjectMeta: r.meta(node.Name),
		Spec:       spec,
	}
}

// publicRouteTable synthesizes the table standing in for the VPC main
// route table: the main-table default route plus every public subnet.
// Nil when the graph has no main-table route.
func (r renderer) publicRouteTable() *ec2v1alpha1.RouteTable {
	var route *ec2v1alpha1.CreateRouteInput
	for _, n := range r.graph.Nodes {
		if a, ok := n.Attrs.(netwire.RouteAttrs); ok && a.Table == nil {
			route = r.route(a)
			break
		}
	}
	if route == nil {
		return nil
	}

	vpc := r.graph.NodesOfKind(netwire.KindVPC)[0]
	tags := r.graph.Nodes[vpc].Tags
	name := tags.Class + "-public-rt"
	tags.Name = name

	spec := ec2v1alpha1.RouteTableSpec{
		VPCRef: r.refTo(vpc),
		Routes: []*ec2v1alpha1.CreateRouteInput{route},
		Tags:   crdTags(tags),
	}
	for _, idx := range r.graph.NodesOfKind(netwire.KindSubnet) {
		if r.graph.Nodes[idx].Attrs.(netwire.SubnetAttrs).Access == netwire.AccessPublic {
			spec.SubnetRefs = append(spec.SubnetRefs, r.refTo(idx))
		}
	}

	return &ec2v1alpha1.RouteTable{
		TypeMeta:   r.typeMeta("RouteTable"),
		ObjectMeta: r.meta(name),
		Spec:       spec,
	}
}

func (r renderer) route(attrs netwire.RouteAttrs) *ec2v1alpha1.CreateRouteInput {
	route := &ec2v1alpha1.CreateRouteInput{
		DestinationCIDRBlock: ptr(attrs.Destination),
	}
	if r.graph.Nodes[attrs.Target].Kind == netwire.KindNatGateway {
		route.NATGatewayRef = r.refTo(attrs.Target)
	} else {
		route.GatewayRef = r.refTo(attrs.Target)
	}
	return route
}

// refTo builds an ACK resource reference to the node at index i, by name.
func (r renderer) refTo(i int) *ec2v1alpha1.AWSResourceReferenceWrapper {
	return &ec2v1alpha1.AWSResourceReferenceWrapper{
		From: &ec2v1alpha1.AWSResourceReference{Name: ptr(r.graph.Nodes[i].Name)},
	}
}

// crdTags converts a tag set to ACK tags, in a fixed key order.
func crdTags(tags netwire.TagSet) []*ec2v1alpha1.Tag {
	return []*ec2v1alpha1.Tag{
		{Key: ptr("Name"), Value: ptr(tags.Name)},
		{Key: ptr("Class"), Value: ptr(tags.Class)},
		{Key: ptr("Instance"), Value: ptr(tags.Instance)},
		{Key: ptr("Desc"), Value: ptr(tags.Desc)},
	}
}

func ptr[T any](v T) *T {
	return &v
}
