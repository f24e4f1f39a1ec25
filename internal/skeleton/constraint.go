package skeleton

import (
	"fmt"
	"sort"
	"strings"
)

// Axis is one of the three local bone axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every axis in X, Y, Z order
var Axes = []Axis{AxisX, AxisY, AxisZ}

// String returns "X", "Y" or "Z"
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// ParseAxis parses an axis letter, case-insensitively
func ParseAxis(s string) (Axis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return AxisX, nil
	case "Y":
		return AxisY, nil
	case "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// AxisSet is a small set of axes
type AxisSet uint8

// NewAxisSet builds a set from the given axes
func NewAxisSet(axes ...Axis) AxisSet {
	var s AxisSet
	for _, a := range axes {
		s = s.With(a)
	}
	return s
}

// With returns the set with a added
func (s AxisSet) With(a Axis) AxisSet {
	return s | 1<<uint(a)
}

// Has reports whether a is in the set
func (s AxisSet) Has(a Axis) bool {
	return s&(1<<uint(a)) != 0
}

// Slice returns the members in X, Y, Z order
func (s AxisSet) Slice() []Axis {
	out := []Axis{}
	for _, a := range Axes {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Strings returns the members as letters
func (s AxisSet) Strings() []string {
	out := []string{}
	for _, a := range s.Slice() {
		out = append(out, a.String())
	}
	return out
}

// Range is a closed rotation interval in radians
type Range struct {
	Min float64
	Max float64
}

// Limits maps an axis to its allowed rotation range
type Limits map[Axis]Range

// SortedAxes returns the limited axes in X, Y, Z order
func (l Limits) SortedAxes() []Axis {
	axes := make([]Axis, 0, len(l))
	for a := range l {
		axes = append(axes, a)
	}
	sort.Slice(axes, func(i, j int) bool { return axes[i] < axes[j] })
	return axes
}

// Clone returns an independent copy
func (l Limits) Clone() Limits {
	out := make(Limits, len(l))
	for a, r := range l {
		out[a] = r
	}
	return out
}

// Space is the coordinate space a constraint evaluates in
type Space string

const (
	SpaceLocal Space = "LOCAL"
	SpaceWorld Space = "WORLD"
)

// MixMode is how a copied rotation combines with the owner's rotation
type MixMode string

const (
	MixReplace MixMode = "REPLACE"
	MixAdd     MixMode = "ADD"
)

// ConstraintKind tags a constraint variant
type ConstraintKind string

const (
	KindIK            ConstraintKind = "IK"
	KindRotationLimit ConstraintKind = "LIMIT_ROTATION"
	KindCopyRotation  ConstraintKind = "COPY_ROTATION"
)

// ParseConstraintKind parses a variant tag
func ParseConstraintKind(s string) (ConstraintKind, error) {
	switch ConstraintKind(strings.ToUpper(s)) {
	case KindIK:
		return KindIK, nil
	case KindRotationLimit:
		return KindRotationLimit, nil
	case KindCopyRotation:
		return KindCopyRotation, nil
	}
	return "", fmt.Errorf("unknown constraint kind %q", s)
}

// Constraint is a typed configuration attached to a bone. A bone carries at
// most one constraint per kind.
type Constraint interface {
	Kind() ConstraintKind
}

// InverseKinematics solves a chain of ChainLength bones ending at the owner
type InverseKinematics struct {
	ChainLength int
	Locked      AxisSet
	Limits      Limits
}

// NewInverseKinematics returns an empty IK constraint
func NewInverseKinematics() *InverseKinematics {
	return &InverseKinematics{Limits: Limits{}}
}

// Kind implements Constraint
func (c *InverseKinematics) Kind() ConstraintKind { return KindIK }

// RotationLimit clamps the owner's rotation per axis
type RotationLimit struct {
	Limits Limits
	Space  Space
}

// NewRotationLimit returns an empty local-space rotation limit
func NewRotationLimit() *RotationLimit {
	return &RotationLimit{Limits: Limits{}, Space: SpaceLocal}
}

// Kind implements Constraint
func (c *RotationLimit) Kind() ConstraintKind { return KindRotationLimit }

// CopyRotation drives the owner's rotation from Source
type CopyRotation struct {
	Source      BoneID
	Mix         MixMode
	OwnerSpace  Space
	TargetSpace Space
	Excluded    AxisSet
}

// NewCopyRotation returns a local-to-local additive copy with no source
func NewCopyRotation() *CopyRotation {
	return &CopyRotation{Mix: MixAdd, OwnerSpace: SpaceLocal, TargetSpace: SpaceLocal}
}

// Kind implements Constraint
func (c *CopyRotation) Kind() ConstraintKind { return KindCopyRotation }

// Uses reports whether the axis is copied
func (c *CopyRotation) Uses(a Axis) bool {
	return !c.Excluded.Has(a)
}
