// Package effect answers whether a bone moves any vertex of the meshes
// parented to the armature.
package effect

import "github.com/vroidbones/vroidbones/internal/skeleton"

// Analyzer queries control groups of a rig's child objects. It holds no
// cache: every call sees the rig as it is at that moment.
type Analyzer struct {
	rig *skeleton.Rig
}

// New creates an analyzer for rig
func New(rig *skeleton.Rig) *Analyzer {
	return &Analyzer{rig: rig}
}

// HasEffect reports whether some child object of the armature has a
// non-empty control group named exactly like the bone
func (a *Analyzer) HasEffect(b *skeleton.Bone) bool {
	return a.HasEffectNamed(b.Name)
}

// HasEffectNamed is HasEffect keyed by bone name
func (a *Analyzer) HasEffectNamed(name string) bool {
	for _, obj := range a.rig.ChildObjects() {
		if members, ok := obj.Group(name); ok && len(members) > 0 {
			return true
		}
	}
	return false
}

// Influence returns how many vertices each child object binds to the bone
func (a *Analyzer) Influence(b *skeleton.Bone) map[string]int {
	out := map[string]int{}
	for _, obj := range a.rig.ChildObjects() {
		if members, ok := obj.Group(b.Name); ok && len(members) > 0 {
			out[obj.Name] = len(members)
		}
	}
	return out
}
