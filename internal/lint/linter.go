// Package lint provides advisory rules for netwire-aws topology specs.
package lint

import (
	"context"

	corelint "github.com/lex00/wetwire-core-go/lint"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/zones"
	"github.com/lex00/netwire-aws-go/topology"
)

// Type aliases into the core lint package, so issues interoperate with
// core tooling.
type (
	// Issue is an alias for corelint.Issue.
	Issue = corelint.Issue
	// Severity is an alias for corelint.Severity.
	Severity = corelint.Severity
)

// Severity constants re-exported from the core lint package.
const (
	SeverityError   = corelint.SeverityError
	SeverityWarning = corelint.SeverityWarning
	SeverityInfo    = corelint.SeverityInfo
)

// Rule is the interface for topology rules. Unlike core lint rules, which
// walk Go syntax trees, these rules inspect a loaded spec and the zone set
// it will be planned against.
type Rule interface {
	ID() string
	Description() string
	Check(spec *topology.Spec, zoneList []netwire.Zone) []Issue
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// MaxSubnetPrefix for the SubnetTooSmall rule.
	MaxSubnetPrefix int
}

// LintFile loads a topology file and lints it. Zones come from the spec's
// explicit zone list when given, otherwise from the static region
// directory; linting never calls EC2.
func LintFile(path string, opts Options) (Result, error) {
	spec, err := topology.Load(path)
	if err != nil {
		return Result{}, err
	}

	dir := zones.Static()
	if len(spec.Zones) > 0 {
		dir = zones.Fixed(spec.Zones...)
	}
	zoneList, err := dir.Resolve(context.Background(), spec.Region)
	if err != nil {
		return Result{}, err
	}

	result := LintSpec(spec, zoneList, opts)
	for i := range result.Issues {
		result.Issues[i].File = path
	}
	return result, nil
}

// LintSpec lints an already-loaded spec against a zone set.
func LintSpec(spec *topology.Spec, zoneList []netwire.Zone, opts Options) Result {
	rules := getRules(opts)
	var issues []Issue

	for _, rule := range rules {
		issues = append(issues, rule.Check(spec, zoneList)...)
	}

	return Result{
		Success: len(issues) == 0,
		Issues:  issues,
	}
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	// Update MaxSubnetPrefix if specified
	if opts.MaxSubnetPrefix > 0 {
		for i, r := range all {
			if sts, ok := r.(SubnetTooSmall); ok {
				sts.MaxPrefix = opts.MaxSubnetPrefix
				all[i] = sts
			}
		}
	}

	// Filter by enabled rules if specified
	if len(opts.EnabledRules) == 0 {
		return all
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if enabled[r.ID()] {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
