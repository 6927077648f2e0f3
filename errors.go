package netwire_aws

import "fmt"

// ZoneResolutionError reports that a region yielded zero availability
// zones. Nothing can be placed, so planning stops before any node exists.
type ZoneResolutionError struct {
	Region string
}

func (e *ZoneResolutionError) Error() string {
	if e.Region == "" {
		return "zone resolution failed: no zones available"
	}
	return fmt.Sprintf("zone resolution failed: no zones available in region %q", e.Region)
}

// CidrExhaustionError reports that the requested subnet count exceeds the
// number of blocks the address space subdivides into.
type CidrExhaustionError struct {
	Requested int
	Capacity  int
}

func (e *CidrExhaustionError) Error() string {
	return fmt.Sprintf("cidr exhaustion: %d subnets requested but the address block subdivides into %d", e.Requested, e.Capacity)
}

// InvalidTopologyError reports a resource combination that can never
// provision, rejected at plan time rather than deferred to apply time.
type InvalidTopologyError struct {
	Reason string
}

func (e *InvalidTopologyError) Error() string {
	return "invalid topology: " + e.Reason
}
