// Package graph renders planned topologies as DOT or Mermaid dependency
// graphs. Arrows point from a resource to what it depends on.
package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/emicklei/dot"

	netwire "github.com/lex00/netwire-aws-go"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator renders dependency graphs from a planned topology.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByKind groups nodes of the same resource kind.
	ClusterByKind bool
}

// Generate renders the topology graph and writes it to w.
func (g *Generator) Generate(topo *netwire.TopologyGraph, w io.Writer) error {
	graph := g.buildGraph(topo)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(topo *netwire.TopologyGraph) (string, error) {
	var sb strings.Builder
	if err := g.Generate(topo, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(topo *netwire.TopologyGraph) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	if g.ClusterByKind {
		g.addClusteredNodes(graph, topo)
	} else {
		g.addNodes(graph, topo)
	}

	for _, edge := range topo.Edges {
		from := graph.Node(topo.Nodes[edge.To].Name)
		to := graph.Node(topo.Nodes[edge.From].Name)
		e := graph.Edge(from, to)

		// Attribute references (NAT gateways consume the allocation id of
		// their elastic IP) render distinctly, like GetAtt edges.
		if topo.Nodes[edge.To].Kind == netwire.KindNatGateway &&
			topo.Nodes[edge.From].Kind == netwire.KindElasticIP {
			e.Attr("color", "blue")
		}
	}

	return graph
}

func (g *Generator) addNodes(graph *dot.Graph, topo *netwire.TopologyGraph) {
	for _, node := range topo.Nodes {
		n := graph.Node(node.Name)
		n.Label(nodeLabel(node))
	}
}

// addClusteredNodes groups nodes by resource kind; kinds with a single
// node stay at the top level.
func (g *Generator) addClusteredNodes(graph *dot.Graph, topo *netwire.TopologyGraph) {
	byKind := make(map[netwire.ResourceKind][]netwire.ResourceNode)
	for _, node := range topo.Nodes {
		byKind[node.Kind] = append(byKind[node.Kind], node)
	}

	for _, kind := range netwire.Kinds() {
		nodes := byKind[kind]
		if len(nodes) > 1 {
			cluster := graph.Subgraph("cluster_"+string(kind), dot.ClusterOption{})
			cluster.Attr("label", string(kind))
			cluster.Attr("style", "rounded")
			cluster.Attr("bgcolor", "lightyellow")
			for _, node := range nodes {
				cluster.Node(node.Name).Label(nodeLabel(node))
			}
		} else {
			for _, node := range nodes {
				graph.Node(node.Name).Label(nodeLabel(node))
			}
		}
	}
}

// nodeLabel renders the display label: name, kind, and for address-bearing
// nodes the CIDR and zone.
func nodeLabel(node netwire.ResourceNode) string {
	label := node.Name + "\\n[" + string(node.Kind) + "]"
	switch attrs := node.Attrs.(type) {
	case netwire.VPCAttrs:
		label += "\\n" + attrs.CIDR
	case netwire.SubnetAttrs:
		label += fmt.Sprintf("\\n%s %s", attrs.CIDR, attrs.Zone)
	case netwire.RouteAttrs:
		label += "\\n" + attrs.Destination
	}
	return label
}
