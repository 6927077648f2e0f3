// Package diff provides semantic comparison of planned topology graphs.
package diff

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	netwire "github.com/lex00/netwire-aws-go"
)

// Options configures the differ.
type Options struct {
	// IncludeInstance also compares run-scoped values. The Instance tag
	// and node tokens change on every planning run, so by default they
	// do not count as modifications.
	IncludeInstance bool
}

// Result contains the difference between two graphs.
type Result struct {
	Diff     netwire.GraphDiff
	Summary  netwire.DiffSummary
	Warnings []string
}

// referenceFields lists the attribute keys that hold node indices, per
// kind. Indices are resolved to node names before comparison so nodes
// shifting position in the list do not read as changes.
var referenceFields = map[netwire.ResourceKind][]string{
	netwire.KindSubnet:                {"vpc"},
	netwire.KindInternetGateway:       {"vpc"},
	netwire.KindNatGateway:            {"subnet", "elasticIp"},
	netwire.KindRouteTable:            {"vpc"},
	netwire.KindRoute:                 {"vpc", "table", "target"},
	netwire.KindRouteTableAssociation: {"subnet", "table"},
}

// Compare compares two planned graphs and returns differences. Nodes are
// matched by name across the two graphs.
func Compare(before, after *netwire.TopologyGraph, opts Options) (*Result, error) {
	result := &Result{}

	idx1 := indexByName(before)
	idx2 := indexByName(after)

	// Find added nodes (in after but not in before)
	for name, i2 := range idx2 {
		if _, exists := idx1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, netwire.DiffEntry{
				Resource: name,
				Kind:     after.Nodes[i2].Kind,
			})
		}
	}

	// Find removed nodes (in before but not in after)
	for name, i1 := range idx1 {
		if _, exists := idx2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, netwire.DiffEntry{
				Resource: name,
				Kind:     before.Nodes[i1].Kind,
			})
		}
	}

	// Find modified nodes
	for name, i1 := range idx1 {
		i2, exists := idx2[name]
		if !exists {
			continue
		}
		changes := compareNodes(before, i1, after, i2, opts)
		if len(changes) > 0 {
			result.Diff.Modified = append(result.Diff.Modified, netwire.DiffEntry{
				Resource: name,
				Kind:     before.Nodes[i1].Kind,
				Changes:  changes,
			})
		}
		result.Warnings = append(result.Warnings, renumberWarnings(before, i1, after, i2)...)
	}

	// Sort entries for consistent output
	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)
	sort.Strings(result.Warnings)

	result.Summary = netwire.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles compares two serialized graph files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	g1, err := LoadGraph(file1)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", file1, err)
	}

	g2, err := LoadGraph(file2)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", file2, err)
	}

	return Compare(g1, g2, opts)
}

// LoadGraph reads a serialized graph from a file. JSON is tried first;
// YAML input is normalized through JSON so node attributes decode into
// their concrete types.
func LoadGraph(path string) (*netwire.TopologyGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	g, err := netwire.FromJSON(data)
	if err == nil {
		return g, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing as JSON or YAML: %w", err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return netwire.FromJSON(normalized)
}

// compareNodes compares two same-named nodes and returns changes.
func compareNodes(g1 *netwire.TopologyGraph, i1 int, g2 *netwire.TopologyGraph, i2 int, opts Options) []string {
	n1, n2 := g1.Nodes[i1], g2.Nodes[i2]

	var changes []string

	if n1.Kind != n2.Kind {
		changes = append(changes, fmt.Sprintf("Kind changed: %s → %s", n1.Kind, n2.Kind))
	}

	changes = append(changes, compareAttrs(nodeAttrs(g1, i1), nodeAttrs(g2, i2))...)
	changes = append(changes, compareTags(n1.Tags, n2.Tags, opts)...)

	if opts.IncludeInstance && n1.Token != n2.Token {
		changes = append(changes, "token changed")
	}

	if !equalStringSlices(dependencyNames(g1, i1), dependencyNames(g2, i2)) {
		changes = append(changes, "dependencies changed")
	}

	return changes
}

// compareAttrs compares two flattened attribute maps.
func compareAttrs(attrs1, attrs2 map[string]any) []string {
	var changes []string

	for key, val2 := range attrs2 {
		if val1, exists := attrs1[key]; exists {
			if !reflect.DeepEqual(val1, val2) {
				changes = append(changes, fmt.Sprintf("%s modified", key))
			}
		} else {
			changes = append(changes, fmt.Sprintf("%s added", key))
		}
	}

	for key := range attrs1 {
		if _, exists := attrs2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", key))
		}
	}

	sort.Strings(changes)
	return changes
}

// compareTags compares the stable tag fields. The Instance tag is
// run-scoped and only compared when opts asks for it.
func compareTags(t1, t2 netwire.TagSet, opts Options) []string {
	var changes []string

	if t1.Name != t2.Name {
		changes = append(changes, "tags.Name modified")
	}
	if t1.Class != t2.Class {
		changes = append(changes, "tags.Class modified")
	}
	if opts.IncludeInstance && t1.Instance != t2.Instance {
		changes = append(changes, "tags.Instance modified")
	}
	if t1.Desc != t2.Desc {
		changes = append(changes, "tags.Desc modified")
	}

	return changes
}

// renumberWarnings flags address block changes on nodes whose addresses
// cannot move once deployed.
func renumberWarnings(g1 *netwire.TopologyGraph, i1 int, g2 *netwire.TopologyGraph, i2 int) []string {
	n1, n2 := g1.Nodes[i1], g2.Nodes[i2]
	if n1.Kind != n2.Kind {
		return nil
	}

	var before, after string
	switch a1 := n1.Attrs.(type) {
	case netwire.VPCAttrs:
		a2, ok := n2.Attrs.(netwire.VPCAttrs)
		if !ok {
			return nil
		}
		before, after = a1.CIDR, a2.CIDR
	case netwire.SubnetAttrs:
		a2, ok := n2.Attrs.(netwire.SubnetAttrs)
		if !ok {
			return nil
		}
		before, after = a1.CIDR, a2.CIDR
	default:
		return nil
	}

	if before == after {
		return nil
	}
	return []string{fmt.Sprintf("%s: cidr %s → %s (an existing network cannot be renumbered in place)", n1.Name, before, after)}
}

// nodeAttrs flattens node i's attributes to a JSON map with index
// references resolved to node names.
func nodeAttrs(g *netwire.TopologyGraph, i int) map[string]any {
	n := g.Nodes[i]

	data, err := json.Marshal(n.Attrs)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	for _, key := range referenceFields[n.Kind] {
		idx, ok := fields[key].(float64)
		if !ok {
			continue
		}
		fields[key] = refName(g, int(idx))
	}
	return fields
}

// dependencyNames returns the sorted names of node i's dependencies.
func dependencyNames(g *netwire.TopologyGraph, i int) []string {
	deps := g.DependenciesOf(i)
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, refName(g, d))
	}
	sort.Strings(names)
	return names
}

// refName returns node i's name, or a positional placeholder when the
// index is out of range.
func refName(g *netwire.TopologyGraph, i int) string {
	if i < 0 || i >= len(g.Nodes) {
		return fmt.Sprintf("#%d", i)
	}
	return g.Nodes[i].Name
}

// indexByName maps node names to their positions.
func indexByName(g *netwire.TopologyGraph) map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.Name] = i
	}
	return idx
}

// equalStringSlices compares two string slices for equality.
func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortEntries sorts diff entries by resource name.
func sortEntries(entries []netwire.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
