// Package lint provides advisory rules for netwire-aws topology specs.
//
// Rules inspect a validated spec and the zone set it will be planned
// against, looking for shapes that plan cleanly but are probably not what
// the author wanted. Each rule provides clear messages and suggestions.
//
// Rules:
//
//	NTW001: Spread subnets across distinct availability zones
//	NTW002: Give private subnets an egress path
//	NTW003: Pair public subnets with a public gateway
//	NTW004: Leave unallocated blocks in the address space
//	NTW005: Keep subnets at or above the EC2 minimum size
//	NTW006: Balance subnet counts across zones
package lint

import (
	"fmt"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/cidr"
	"github.com/lex00/netwire-aws-go/topology"
)

// Note: Issue and Severity types are imported from corelint via type
// aliases in linter.go.

// kindCount pairs a subnet kind with its requested count.
type kindCount struct {
	kind  string
	count int
}

func subnetCounts(spec *topology.Spec) []kindCount {
	return []kindCount{
		{"private", spec.PrivateSubnets},
		{"public", spec.PublicSubnets},
	}
}

// ZoneReuse detects subnet counts that exceed the zone count. Placement
// wraps around the zone list, so several subnets of one kind land in the
// same zone.
type ZoneReuse struct{}

func (r ZoneReuse) ID() string { return "NTW001" }
func (r ZoneReuse) Description() string {
	return "Spread subnets across distinct availability zones"
}

func (r ZoneReuse) Check(spec *topology.Spec, zoneList []netwire.Zone) []Issue {
	if len(zoneList) == 0 {
		return nil
	}

	var issues []Issue
	for _, kc := range subnetCounts(spec) {
		if kc.count <= len(zoneList) {
			continue
		}
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Message:    fmt.Sprintf("%d %s subnets share %d zones, so a zone outage affects several of them", kc.count, kc.kind, len(zoneList)),
			Suggestion: "add zones or reduce the subnet count so each subnet gets its own zone",
			Severity:   SeverityWarning,
		})
	}

	return issues
}

// PrivateWithoutEgress detects private subnets planned without NAT chains.
//
// Isolated private subnets are a legitimate pattern, so this is a warning
// rather than an error.
type PrivateWithoutEgress struct{}

func (r PrivateWithoutEgress) ID() string { return "NTW002" }
func (r PrivateWithoutEgress) Description() string {
	return "Give private subnets an egress path"
}

func (r PrivateWithoutEgress) Check(spec *topology.Spec, _ []netwire.Zone) []Issue {
	if spec.PrivateSubnets == 0 || spec.PrivateGateway {
		return nil
	}

	return []Issue{{
		Rule:       r.ID(),
		Message:    fmt.Sprintf("%d private subnets have no route out of the VPC", spec.PrivateSubnets),
		Suggestion: "set private_gateway: true for NAT egress, or leave it off if they are isolated on purpose",
		Severity:   SeverityWarning,
	}}
}

// PublicWithoutGateway detects public subnets planned while the public
// gateway is disabled. Instances there get public addresses that nothing
// routes to.
type PublicWithoutGateway struct{}

func (r PublicWithoutGateway) ID() string { return "NTW003" }
func (r PublicWithoutGateway) Description() string {
	return "Pair public subnets with a public gateway"
}

func (r PublicWithoutGateway) Check(spec *topology.Spec, _ []netwire.Zone) []Issue {
	if spec.PublicSubnets == 0 || spec.CreatePublicGateway() {
		return nil
	}

	return []Issue{{
		Rule:       r.ID(),
		Message:    fmt.Sprintf("%d public subnets but no internet gateway", spec.PublicSubnets),
		Suggestion: "set public_gateway: true or drop the public subnets",
		Severity:   SeverityWarning,
	}}
}

// NoAddressHeadroom detects specs that allocate every subnet block in the
// address space. Adding one more subnet later means renumbering.
type NoAddressHeadroom struct{}

func (r NoAddressHeadroom) ID() string { return "NTW004" }
func (r NoAddressHeadroom) Description() string {
	return "Leave unallocated blocks in the address space"
}

func (r NoAddressHeadroom) Check(spec *topology.Spec, _ []netwire.Zone) []Issue {
	capacity := 1 << spec.SubnetBits
	total := spec.PrivateSubnets + spec.PublicSubnets
	if total == 0 || total < capacity {
		return nil
	}

	return []Issue{{
		Rule:       r.ID(),
		Message:    fmt.Sprintf("all %d blocks of %s are allocated", capacity, spec.AddressBlock),
		Suggestion: "raise subnet_bits to leave room for later subnets",
		Severity:   SeverityInfo,
	}}
}

// DefaultMaxPrefix is the longest subnet prefix EC2 accepts.
const DefaultMaxPrefix = 28

// SubnetTooSmall detects subnet blocks below the EC2 minimum size. These
// plan fine but CloudFormation rejects them at deploy time.
type SubnetTooSmall struct {
	// MaxPrefix is the longest allowed prefix. Zero means DefaultMaxPrefix.
	MaxPrefix int
}

func (r SubnetTooSmall) ID() string { return "NTW005" }
func (r SubnetTooSmall) Description() string {
	return "Keep subnets at or above the EC2 minimum size"
}

func (r SubnetTooSmall) Check(spec *topology.Spec, _ []netwire.Zone) []Issue {
	limit := r.MaxPrefix
	if limit == 0 {
		limit = DefaultMaxPrefix
	}

	base, err := cidr.Parse(spec.AddressBlock)
	if err != nil {
		// Validate reports unparseable address blocks.
		return nil
	}

	bits := base.Bits() + spec.SubnetBits
	if bits <= limit {
		return nil
	}

	return []Issue{{
		Rule:       r.ID(),
		Message:    fmt.Sprintf("subnets carved from %s would be /%d, below the /%d EC2 minimum", spec.AddressBlock, bits, limit),
		Suggestion: "lower subnet_bits or use a wider address_block",
		Severity:   SeverityError,
	}}
}

// UnevenZoneSpread detects subnet counts that wrap around the zone list
// without dividing evenly, leaving some zones with more subnets than
// others.
type UnevenZoneSpread struct{}

func (r UnevenZoneSpread) ID() string { return "NTW006" }
func (r UnevenZoneSpread) Description() string {
	return "Balance subnet counts across zones"
}

func (r UnevenZoneSpread) Check(spec *topology.Spec, zoneList []netwire.Zone) []Issue {
	if len(zoneList) == 0 {
		return nil
	}

	var issues []Issue
	for _, kc := range subnetCounts(spec) {
		if kc.count <= len(zoneList) || kc.count%len(zoneList) == 0 {
			continue
		}
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Message:    fmt.Sprintf("%d %s subnets do not divide evenly across %d zones", kc.count, kc.kind, len(zoneList)),
			Suggestion: "use a multiple of the zone count for an even spread",
			Severity:   SeverityInfo,
		})
	}

	return issues
}

// AllRules returns every topology rule in ID order.
func AllRules() []Rule {
	return []Rule{
		ZoneReuse{},
		PrivateWithoutEgress{},
		PublicWithoutGateway{},
		NoAddressHeadroom{},
		SubnetTooSmall{MaxPrefix: DefaultMaxPrefix},
		UnevenZoneSpread{},
	}
}
