// Package zones resolves the ordered availability zone list for a region.
//
// Placement is index-based, so the zone list must be non-empty and stable
// for the duration of a planning run; callers resolve once and hand the
// result to the planner. Three directories exist: a static built-in region
// table, a fixed explicit list, and a live EC2-backed lookup.
package zones

import (
	"context"
	"fmt"

	netwire "github.com/lex00/netwire-aws-go"
)

// Directory resolves the ordered, non-empty zone list for a region.
type Directory interface {
	Resolve(ctx context.Context, region string) ([]netwire.Zone, error)
}

// staticZones maps each region to its zone suffix letters. Zone layouts are
// account-specific in reality; this table is the offline default, and the
// EC2 directory supplies account truth when a live lookup is wanted.
var staticZones = map[string][]string{
	"us-east-1":      {"a", "b", "c", "d", "e", "f"},
	"us-east-2":      {"a", "b", "c"},
	"us-west-1":      {"a", "b"},
	"us-west-2":      {"a", "b", "c", "d"},
	"af-south-1":     {"a", "b", "c"},
	"ap-east-1":      {"a", "b", "c"},
	"ap-south-1":     {"a", "b", "c"},
	"ap-south-2":     {"a", "b", "c"},
	"ap-southeast-1": {"a", "b", "c"},
	"ap-southeast-2": {"a", "b", "c"},
	"ap-southeast-3": {"a", "b", "c"},
	"ap-southeast-4": {"a", "b", "c"},
	"ap-northeast-1": {"a", "c", "d"},
	"ap-northeast-2": {"a", "b", "c", "d"},
	"ap-northeast-3": {"a", "b", "c"},
	"ca-central-1":   {"a", "b", "d"},
	"eu-central-1":   {"a", "b", "c"},
	"eu-central-2":   {"a", "b", "c"},
	"eu-west-1":      {"a", "b", "c"},
	"eu-west-2":      {"a", "b", "c"},
	"eu-west-3":      {"a", "b", "c"},
	"eu-north-1":     {"a", "b", "c"},
	"eu-south-1":     {"a", "b", "c"},
	"eu-south-2":     {"a", "b", "c"},
	"il-central-1":   {"a", "b", "c"},
	"me-central-1":   {"a", "b", "c"},
	"me-south-1":     {"a", "b", "c"},
	"sa-east-1":      {"a", "b", "c"},
}

type staticDirectory struct{}

// Static returns the built-in region table directory.
func Static() Directory {
	return staticDirectory{}
}

func (staticDirectory) Resolve(_ context.Context, region string) ([]netwire.Zone, error) {
	suffixes, ok := staticZones[region]
	if !ok || len(suffixes) == 0 {
		return nil, &netwire.ZoneResolutionError{Region: region}
	}

	zones := make([]netwire.Zone, 0, len(suffixes))
	for _, s := range suffixes {
		zones = append(zones, netwire.NewZone(region+s))
	}
	return zones, nil
}

type fixedDirectory struct {
	names []string
}

// Fixed returns a directory over an explicit zone list, in the given order.
// Used for the zones field of a topology file and the --zones flag.
func Fixed(names ...string) Directory {
	return fixedDirectory{names: names}
}

func (d fixedDirectory) Resolve(_ context.Context, region string) ([]netwire.Zone, error) {
	if len(d.names) == 0 {
		return nil, &netwire.ZoneResolutionError{Region: region}
	}

	zones := make([]netwire.Zone, 0, len(d.names))
	for _, name := range d.names {
		if name == "" {
			return nil, fmt.Errorf("zone list contains an empty name")
		}
		zones = append(zones, netwire.NewZone(name))
	}
	return zones, nil
}

// Regions lists the regions the static directory knows about.
func Regions() []string {
	regions := make([]string, 0, len(staticZones))
	for r := range staticZones {
		regions = append(regions, r)
	}
	return regions
}
