// Package netwire_aws provides the contract types for the netwire-aws
// topology planner.
//
// The planner turns a small declarative network description (address block,
// subnet counts, zone source, gateway flags) into a TopologyGraph: an ordered
// set of ResourceNode descriptors plus explicit must-exist-before edges. The
// graph is the hand-off artifact to whatever provisioning engine applies it —
// CloudFormation, ACK manifests, or anything that can translate node kinds
// into cloud API calls.
//
//	spec, _ := topology.Load("topology.yaml")
//	zones, _ := zones.Static().Resolve(ctx, spec.Region)
//	graph, _ := plan.Build(spec, zones)
//
// Nodes reference each other by stable index, never by pointer: real cloud
// identifiers do not exist at plan time, so the engine resolves them during
// apply.
package netwire_aws

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ResourceKind discriminates the variants of ResourceNode.
type ResourceKind string

const (
	KindVPC                   ResourceKind = "VPC"
	KindSubnet                ResourceKind = "Subnet"
	KindInternetGateway       ResourceKind = "InternetGateway"
	KindNatGateway            ResourceKind = "NatGateway"
	KindElasticIP             ResourceKind = "ElasticIP"
	KindRouteTable            ResourceKind = "RouteTable"
	KindRoute                 ResourceKind = "Route"
	KindRouteTableAssociation ResourceKind = "RouteTableAssociation"
)

// Kinds lists every resource kind in emission order.
func Kinds() []ResourceKind {
	return []ResourceKind{
		KindVPC,
		KindSubnet,
		KindInternetGateway,
		KindNatGateway,
		KindElasticIP,
		KindRouteTable,
		KindRoute,
		KindRouteTableAssociation,
	}
}

// SubnetAccess classifies a subnet as private or public.
type SubnetAccess string

const (
	AccessPrivate SubnetAccess = "private"
	AccessPublic  SubnetAccess = "public"
)

// Zone is an availability zone as resolved by a zone directory. Suffix is
// the trailing zone letter used in resource names ("a" for "eu-west-1a").
type Zone struct {
	Name   string `json:"name"`
	Suffix string `json:"suffix"`
}

// NewZone derives the naming suffix from an availability zone name. Zone
// names without a trailing letter run keep the full name as suffix.
func NewZone(name string) Zone {
	trimmed := strings.TrimRightFunc(name, unicode.IsLetter)
	suffix := name[len(trimmed):]
	if suffix == "" {
		suffix = name
	}
	return Zone{Name: name, Suffix: suffix}
}

// TagSet is the metadata attached to every planned resource. Keys match the
// tags the provisioning engine writes to the cloud provider.
type TagSet struct {
	Name     string `json:"Name"`
	Class    string `json:"Class"`
	Instance string `json:"Instance"`
	Desc     string `json:"Desc"`
}

// Map returns the tag set as a key/value map.
func (t TagSet) Map() map[string]string {
	return map[string]string{
		"Name":     t.Name,
		"Class":    t.Class,
		"Instance": t.Instance,
		"Desc":     t.Desc,
	}
}

// NodeAttrs is the kind-specific payload of a ResourceNode. All cross-node
// relations inside a payload are indices into TopologyGraph.Nodes.
type NodeAttrs interface {
	// ResourceKind returns the kind this payload belongs to.
	ResourceKind() ResourceKind
}

// VPCAttrs describes the single VPC node.
type VPCAttrs struct {
	CIDR               string `json:"cidr"`
	EnableDNSSupport   bool   `json:"enableDnsSupport"`
	EnableDNSHostnames bool   `json:"enableDnsHostnames"`
}

// SubnetAttrs describes one subnet. VPC indexes the owning VPC node.
type SubnetAttrs struct {
	VPC                 int          `json:"vpc"`
	CIDR                string       `json:"cidr"`
	Zone                string       `json:"zone"`
	Access              SubnetAccess `json:"access"`
	MapPublicIPOnLaunch bool         `json:"mapPublicIpOnLaunch"`
}

// InternetGatewayAttrs describes the internet gateway attached to the VPC.
type InternetGatewayAttrs struct {
	VPC int `json:"vpc"`
}

// NatGatewayAttrs describes a NAT gateway hosted in a public subnet and
// backed by an elastic IP allocation.
type NatGatewayAttrs struct {
	Subnet    int `json:"subnet"`
	ElasticIP int `json:"elasticIp"`
}

// ElasticIPAttrs describes an elastic IP allocation. Domain is always "vpc".
type ElasticIPAttrs struct {
	Domain string `json:"domain"`
}

// RouteTableAttrs describes a route table owned by the VPC.
type RouteTableAttrs struct {
	VPC int `json:"vpc"`
}

// RouteAttrs describes a single route. Table is nil when the route belongs
// to the VPC's main route table, which exists implicitly and has no node.
// Target indexes the gateway the route forwards to, either an
// InternetGateway or a NatGateway.
type RouteAttrs struct {
	VPC         int    `json:"vpc"`
	Table       *int   `json:"table,omitempty"`
	Destination string `json:"destination"`
	Target      int    `json:"target"`
}

// AssociationAttrs binds a subnet to a route table.
type AssociationAttrs struct {
	Subnet int `json:"subnet"`
	Table  int `json:"table"`
}

func (VPCAttrs) ResourceKind() ResourceKind             { return KindVPC }
func (SubnetAttrs) ResourceKind() ResourceKind          { return KindSubnet }
func (InternetGatewayAttrs) ResourceKind() ResourceKind { return KindInternetGateway }
func (NatGatewayAttrs) ResourceKind() ResourceKind      { return KindNatGateway }
func (ElasticIPAttrs) ResourceKind() ResourceKind       { return KindElasticIP }
func (RouteTableAttrs) ResourceKind() ResourceKind      { return KindRouteTable }
func (RouteAttrs) ResourceKind() ResourceKind           { return KindRoute }
func (AssociationAttrs) ResourceKind() ResourceKind     { return KindRouteTableAssociation }

// ResourceNode is one planned resource: a kind discriminator, the formatted
// resource name, the tag set, a deterministic idempotency token, and the
// kind-specific attribute payload.
type ResourceNode struct {
	Kind  ResourceKind `json:"kind"`
	Name  string       `json:"name"`
	Tags  TagSet       `json:"tags"`
	Token string       `json:"token"`
	Attrs NodeAttrs    `json:"attrs"`
}

// UnmarshalJSON decodes the attribute payload into the concrete type named
// by the kind discriminator.
func (n *ResourceNode) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind  ResourceKind    `json:"kind"`
		Name  string          `json:"name"`
		Tags  TagSet          `json:"tags"`
		Token string          `json:"token"`
		Attrs json.RawMessage `json:"attrs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.Kind = raw.Kind
	n.Name = raw.Name
	n.Tags = raw.Tags
	n.Token = raw.Token

	if len(raw.Attrs) == 0 {
		return fmt.Errorf("node %q: missing attrs", raw.Name)
	}

	switch raw.Kind {
	case KindVPC:
		var a VPCAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	case KindSubnet:
		var a SubnetAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	case KindInternetGateway:
		var a InternetGatewayAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	case KindNatGateway:
		var a NatGatewayAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	case KindElasticIP:
		var a ElasticIPAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	case KindRouteTable:
		var a RouteTableAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	case KindRoute:
		var a RouteAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	case KindRouteTableAssociation:
		var a AssociationAttrs
		if err := json.Unmarshal(raw.Attrs, &a); err != nil {
			return err
		}
		n.Attrs = a
	default:
		return fmt.Errorf("node %q: unknown resource kind %q", raw.Name, raw.Kind)
	}

	return nil
}

// Edge declares that node From must exist before node To is created. The
// edge list handed to the engine is the complete ordering relation; engines
// must topologically sort before applying.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// tokenNamespace scopes node tokens so they cannot collide with tokens
// minted by other tools.
var tokenNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("netwire-aws-go.lex00.github.com"))

// NodeToken derives the idempotency token for a node. Tokens are UUIDv5
// values, stable across planning runs for the same instance and node name,
// so engines that pass them as client tokens get at-least-once-idempotent
// creation for free.
func NodeToken(instance, name string) string {
	return uuid.NewSHA1(tokenNamespace, []byte(instance+"/"+name)).String()
}

// PlanResult is the JSON output from `netwire-aws plan`.
type PlanResult struct {
	Success   bool           `json:"success"`
	Graph     *TopologyGraph `json:"graph,omitempty"`
	Resources []string       `json:"resources,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `netwire-aws validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// LintResult is the JSON output from `netwire-aws lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
}

// ZoneListResult is the JSON output from `netwire-aws zones`.
type ZoneListResult struct {
	Region string `json:"region"`
	Zones  []Zone `json:"zones"`
}

// DiffResult is the JSON output from `netwire-aws diff`.
type DiffResult struct {
	Success  bool        `json:"success"`
	Diff     GraphDiff   `json:"diff"`
	Summary  DiffSummary `json:"summary"`
	Warnings []string    `json:"warnings,omitempty"`
}

// GraphDiff groups node-level differences between two plans.
type GraphDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is one node-level difference, keyed by node name.
type DiffEntry struct {
	Resource string       `json:"resource"`
	Kind     ResourceKind `json:"kind"`
	Changes  []string     `json:"changes,omitempty"`
}

// DiffSummary counts differences by class.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}

// Template represents a CloudFormation template rendered from a graph.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type          string   `json:"Type"`
	Description   string   `json:"Description,omitempty"`
	Default       any      `json:"Default,omitempty"`
	AllowedValues []string `json:"AllowedValues,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
	Export      *struct {
		Name string `json:"Name"`
	} `json:"Export,omitempty"`
}
