package naming

import (
	"strconv"
	"strings"
)

// Policy selects which canonicalizations a resolution pass performs
type Policy struct {
	Symmetrize         bool
	Simplify           bool
	RenumberHairJoints bool
}

// Any reports whether the policy changes anything at all
func (p Policy) Any() bool {
	return p.Symmetrize || p.Simplify || p.RenumberHairJoints
}

// Resolver computes canonical names for one resolution pass. Hair joint
// numbers are scoped to the resolver and never reuse a number already
// present in the skeleton.
type Resolver struct {
	policy Policy
	next   int
	used   map[int]bool
}

// NewResolver creates a resolver. existing lists the names already present
// so renumbered hair joints stay unique.
func NewResolver(policy Policy, existing []string) *Resolver {
	r := &Resolver{
		policy: policy,
		next:   1,
		used:   make(map[int]bool),
	}
	for _, name := range existing {
		if n, ok := hairJointNumber(name); ok {
			r.used[n] = true
		}
	}
	return r
}

// Policy returns the resolver's policy
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve computes the canonical name of a bone
func (r *Resolver) Resolve(name string) (string, bool) {
	if IsRawHairJoint(name) {
		if !r.policy.RenumberHairJoints {
			return name, false
		}
		return r.nextHairJoint(), true
	}

	parts := Parse(name)
	if len(parts.Tokens) < 3 {
		return name, false
	}

	leaf := parts.Base
	if parts.Side != SideNone {
		if !r.policy.Symmetrize {
			return name, false
		}
		return changed(name, Symmetric(leaf, parts.Side))
	}

	if r.policy.Simplify && leaf != EndSentinel && leaf != "" {
		return changed(name, leaf)
	}
	return name, false
}

func (r *Resolver) nextHairJoint() string {
	for r.used[r.next] {
		r.next++
	}
	n := r.next
	r.used[n] = true
	r.next++
	return HairJointPrefix + Delimiter + strconv.Itoa(n)
}

func changed(old, name string) (string, bool) {
	return name, name != old
}

func hairJointNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, HairJointPrefix+Delimiter)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
