// Package cidr partitions a VPC address block into equal subnet blocks.
//
// The scheme is a fixed binary subdivision: a base block with a bit width of
// w is treated as 2^w equal blocks, and block i is handed to the i-th subnet
// in allocation order. There is no free-list and no reuse; the mapping from
// index to block is pure arithmetic, so identical inputs always yield
// identical allocations.
package cidr

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	netwire "github.com/lex00/netwire-aws-go"
)

// Allocate returns privateCount+publicCount disjoint blocks carved out of
// base. Indices 0..privateCount-1 are the private subnets in order, then the
// public subnets. Private blocks sit at the low end of the address space so
// private and public CIDRs never collide regardless of which kind is
// enumerated first downstream.
//
// Changing the private count between runs shifts every later allocation;
// the planner is not designed for stable incremental re-planning across
// input changes.
func Allocate(base netip.Prefix, newBits, privateCount, publicCount int) ([]netip.Prefix, error) {
	if err := checkBase(base, newBits); err != nil {
		return nil, err
	}
	if privateCount < 0 || publicCount < 0 {
		return nil, fmt.Errorf("subnet counts must be non-negative, got %d private and %d public", privateCount, publicCount)
	}

	capacity := 1 << newBits
	requested := privateCount + publicCount
	if requested > capacity {
		return nil, &netwire.CidrExhaustionError{Requested: requested, Capacity: capacity}
	}

	blocks := make([]netip.Prefix, 0, requested)
	for i := 0; i < requested; i++ {
		block, err := Subnet(base, newBits, i)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Subnet computes block index of base subdivided by newBits extra prefix
// bits. Equivalent to Terraform's cidrsubnet(base, newBits, index).
func Subnet(base netip.Prefix, newBits, index int) (netip.Prefix, error) {
	if err := checkBase(base, newBits); err != nil {
		return netip.Prefix{}, err
	}
	if index < 0 || index >= 1<<newBits {
		return netip.Prefix{}, fmt.Errorf("block index %d out of range for bit width %d", index, newBits)
	}

	newLen := base.Bits() + newBits
	addr := base.Addr().As4()
	v := binary.BigEndian.Uint32(addr[:])
	v |= uint32(index) << (32 - newLen)
	binary.BigEndian.PutUint32(addr[:], v)
	return netip.PrefixFrom(netip.AddrFrom4(addr), newLen), nil
}

// Parse reads a CIDR string into a prefix suitable for Allocate.
func Parse(s string) (netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("parsing address block %q: %w", s, err)
	}
	return prefix, nil
}

func checkBase(base netip.Prefix, newBits int) error {
	if !base.IsValid() {
		return fmt.Errorf("invalid address block")
	}
	if !base.Addr().Is4() {
		return fmt.Errorf("address block %s is not IPv4", base)
	}
	if base.Masked() != base {
		return fmt.Errorf("address block %s has host bits set, want %s", base, base.Masked())
	}
	if newBits < 0 {
		return fmt.Errorf("bit width must be non-negative, got %d", newBits)
	}
	if base.Bits()+newBits > 32 {
		return fmt.Errorf("bit width %d exceeds the /%d address block", newBits, base.Bits())
	}
	return nil
}
