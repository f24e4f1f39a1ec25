// Package pipeline sequences the normalization stages behind the five
// user-facing actions and reports their outcome.
package pipeline

import (
	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/structure"
)

// Options selects what the fix action does. It is passed by value into
// every entry point; the runner never reads ambient settings.
type Options struct {
	Symmetrize         bool
	Simplify           bool
	RenumberHairJoints bool
	RemoveLeaves       bool
	ConnectChains      bool
	Exclude            []string // nil selects DefaultExclusions, empty excludes nothing
	Collision          naming.CollisionPolicy
}

// DefaultOptions enables every stage with the default exclusion categories
func DefaultOptions() Options {
	return Options{
		Symmetrize:         true,
		Simplify:           true,
		RenumberHairJoints: true,
		RemoveLeaves:       true,
		ConnectChains:      true,
		Exclude:            append([]string(nil), structure.DefaultExclusions...),
		Collision:          naming.CollisionReject,
	}
}

// NamingPolicy returns the resolver policy the options select
func (o Options) NamingPolicy() naming.Policy {
	return naming.Policy{
		Symmetrize:         o.Symmetrize,
		Simplify:           o.Simplify,
		RenumberHairJoints: o.RenumberHairJoints,
	}
}

func (o Options) exclusions() []string {
	if o.Exclude == nil {
		return structure.DefaultExclusions
	}
	return o.Exclude
}

func (o Options) collision() naming.CollisionPolicy {
	if o.Collision == "" {
		return naming.CollisionReject
	}
	return o.Collision
}
