package netwire_aws

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// TopologyGraph is the planner's output: the ordered node list plus the
// complete must-exist-before edge relation. It has no mutable state after
// construction; two planning runs with identical inputs produce byte-equal
// serializations.
type TopologyGraph struct {
	Nodes []ResourceNode `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// NodesOfKind returns the indices of all nodes of the given kind, in
// emission order.
func (g *TopologyGraph) NodesOfKind(kind ResourceKind) []int {
	var out []int
	for i, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

// DependenciesOf returns the sorted indices of the nodes that must exist
// before node i.
func (g *TopologyGraph) DependenciesOf(i int) []int {
	var deps []int
	for _, e := range g.Edges {
		if e.To == i {
			deps = append(deps, e.From)
		}
	}
	sort.Ints(deps)
	return deps
}

// TopologicalOrder returns node indices in an order that satisfies every
// edge. Kahn's algorithm with a sorted ready queue, so the order is
// deterministic. Fails if the edge relation contains a cycle.
func (g *TopologyGraph) TopologicalOrder() ([]int, error) {
	adjacent := make(map[int][]int)
	inDegree := make([]int, len(g.Nodes))

	for _, e := range g.Edges {
		adjacent[e.From] = append(adjacent[e.From], e.To)
		inDegree[e.To]++
	}

	var queue []int
	for i := range g.Nodes {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)

	var result []int
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range adjacent[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Ints(queue)
			}
		}
	}

	if len(result) != len(g.Nodes) {
		return nil, g.detectCycle(adjacent)
	}

	return result, nil
}

// detectCycle reports one cycle from the adjacency relation by node name.
func (g *TopologyGraph) detectCycle(adjacent map[int][]int) error {
	visited := make([]bool, len(g.Nodes))
	path := make([]bool, len(g.Nodes))

	var cycle []int
	var walk func(node int) bool
	walk = func(node int) bool {
		visited[node] = true
		path[node] = true

		for _, next := range adjacent[node] {
			if !visited[next] {
				if walk(next) {
					cycle = append([]int{node}, cycle...)
					return true
				}
			} else if path[next] {
				cycle = append([]int{node, next}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for i := range g.Nodes {
		if !visited[i] && walk(i) {
			break
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected:"
		for _, idx := range cycle {
			msg += fmt.Sprintf("\n  %s", g.Nodes[idx].Name)
		}
		return errors.New(msg)
	}

	return errors.New("circular dependency detected")
}

// Validate checks structural consistency: every payload matches its node's
// kind, every index reference points at a node of the expected kind, every
// edge is in range, and the edge relation is acyclic. Engines should call
// this before applying a graph they did not build themselves.
func (g *TopologyGraph) Validate() error {
	for i, n := range g.Nodes {
		if n.Attrs == nil {
			return fmt.Errorf("node %d (%s): missing attrs", i, n.Name)
		}
		if got := n.Attrs.ResourceKind(); got != n.Kind {
			return fmt.Errorf("node %d (%s): kind %s carries %s attrs", i, n.Name, n.Kind, got)
		}
		if err := g.validateRefs(i, n); err != nil {
			return err
		}
	}

	for _, e := range g.Edges {
		if e.From < 0 || e.From >= len(g.Nodes) || e.To < 0 || e.To >= len(g.Nodes) {
			return fmt.Errorf("edge %d->%d out of range", e.From, e.To)
		}
		if e.From == e.To {
			return fmt.Errorf("edge %d->%d is a self-dependency", e.From, e.To)
		}
	}

	if _, err := g.TopologicalOrder(); err != nil {
		return err
	}

	return nil
}

// validateRefs checks the index references inside one node's payload.
func (g *TopologyGraph) validateRefs(i int, n ResourceNode) error {
	check := func(ref int, want ...ResourceKind) error {
		if ref < 0 || ref >= len(g.Nodes) {
			return fmt.Errorf("node %d (%s): reference %d out of range", i, n.Name, ref)
		}
		got := g.Nodes[ref].Kind
		for _, k := range want {
			if got == k {
				return nil
			}
		}
		return fmt.Errorf("node %d (%s): reference %d is a %s, want %v", i, n.Name, ref, got, want)
	}

	switch a := n.Attrs.(type) {
	case VPCAttrs, ElasticIPAttrs:
		return nil
	case SubnetAttrs:
		return check(a.VPC, KindVPC)
	case InternetGatewayAttrs:
		return check(a.VPC, KindVPC)
	case NatGatewayAttrs:
		if err := check(a.Subnet, KindSubnet); err != nil {
			return err
		}
		return check(a.ElasticIP, KindElasticIP)
	case RouteTableAttrs:
		return check(a.VPC, KindVPC)
	case RouteAttrs:
		if err := check(a.VPC, KindVPC); err != nil {
			return err
		}
		if a.Table != nil {
			if err := check(*a.Table, KindRouteTable); err != nil {
				return err
			}
		}
		return check(a.Target, KindInternetGateway, KindNatGateway)
	case AssociationAttrs:
		if err := check(a.Subnet, KindSubnet); err != nil {
			return err
		}
		return check(a.Table, KindRouteTable)
	default:
		return fmt.Errorf("node %d (%s): unknown attrs type %T", i, n.Name, n.Attrs)
	}
}

// ToJSON serializes the graph to indented JSON.
func (g *TopologyGraph) ToJSON() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// ToYAML serializes the graph to YAML. The graph is JSON-normalized first
// so YAML output uses the same field names as JSON.
func (g *TopologyGraph) ToYAML() ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return yaml.Marshal(plain)
}

// FromJSON parses a graph serialized with ToJSON.
func FromJSON(data []byte) (*TopologyGraph, error) {
	var g TopologyGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing graph: %w", err)
	}
	return &g, nil
}
