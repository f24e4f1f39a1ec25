// Package skeleton models the host armature that the normalization stages
// operate on: bones with stable identifiers, the skeleton that owns them,
// typed bone constraints and the mesh objects whose control groups bind
// bone names to vertices.
package skeleton

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// BoneID is an opaque identifier that survives renames
type BoneID uuid.UUID

// NoBone is the zero BoneID, used for "no parent"
var NoBone BoneID

// NewBoneID returns a fresh random identifier
func NewBoneID() BoneID {
	return BoneID(uuid.New())
}

// ParseBoneID parses the textual form of a BoneID
func ParseBoneID(s string) (BoneID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NoBone, err
	}
	return BoneID(id), nil
}

// String returns the canonical UUID text
func (id BoneID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is NoBone
func (id BoneID) IsZero() bool {
	return id == NoBone
}

// Bone is a node of the armature tree. Parent and children are held by
// identifier; the Skeleton owns every bone.
type Bone struct {
	ID          BoneID
	Name        string
	Head        r3.Vec
	Tail        r3.Vec
	Parent      BoneID
	Children    []BoneID
	Connected   bool
	Constraints []Constraint
}

// Length is the distance from head to tail
func (b *Bone) Length() float64 {
	return r3.Norm(r3.Sub(b.Tail, b.Head))
}

// IsLeaf reports whether the bone has no children
func (b *Bone) IsLeaf() bool {
	return len(b.Children) == 0
}

// HasParent reports whether the bone is attached to a parent
func (b *Bone) HasParent() bool {
	return !b.Parent.IsZero()
}

// Constraint returns the bone's constraint of the given kind, if any
func (b *Bone) Constraint(kind ConstraintKind) (Constraint, bool) {
	for _, c := range b.Constraints {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}

// unique returns the existing constraint of a kind or attaches a new one
func (b *Bone) unique(kind ConstraintKind, create func() Constraint) Constraint {
	if c, ok := b.Constraint(kind); ok {
		return c
	}
	c := create()
	b.Constraints = append(b.Constraints, c)
	return c
}

// EnsureIK returns the bone's InverseKinematics constraint, attaching one if missing
func (b *Bone) EnsureIK() *InverseKinematics {
	return b.unique(KindIK, func() Constraint { return NewInverseKinematics() }).(*InverseKinematics)
}

// EnsureRotationLimit returns the bone's RotationLimit constraint, attaching one if missing
func (b *Bone) EnsureRotationLimit() *RotationLimit {
	return b.unique(KindRotationLimit, func() Constraint { return NewRotationLimit() }).(*RotationLimit)
}

// EnsureCopyRotation returns the bone's CopyRotation constraint, attaching one if missing
func (b *Bone) EnsureCopyRotation() *CopyRotation {
	return b.unique(KindCopyRotation, func() Constraint { return NewCopyRotation() }).(*CopyRotation)
}
