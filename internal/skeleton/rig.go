package skeleton

import (
	"strings"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
)

// Mode is the host editor mode
type Mode string

const (
	ModeEditArmature Mode = "EDIT_ARMATURE"
	ModePose         Mode = "POSE"
	ModeObject       Mode = "OBJECT"
)

// ParseMode parses an editor mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeEditArmature, "":
		return ModeEditArmature, nil
	case ModePose:
		return ModePose, nil
	case ModeObject:
		return ModeObject, nil
	}
	return "", rigerrors.Newf("document", rigerrors.ErrInvalidMode, "unknown editor mode %q", s)
}

// Rig is the host scene as seen by the normalization stages: the active
// armature object, its skeleton, the mesh objects in the scene and the
// current editor mode.
type Rig struct {
	armature string
	mode     Mode
	skeleton *Skeleton
	targets  []*DeformTarget
	commits  int
}

// NewRig creates a rig in armature edit mode
func NewRig(armature string, sk *Skeleton) *Rig {
	return &Rig{
		armature: armature,
		mode:     ModeEditArmature,
		skeleton: sk,
		targets:  make([]*DeformTarget, 0),
	}
}

// ArmatureName returns the name of the armature object
func (r *Rig) ArmatureName() string {
	return r.armature
}

// Mode returns the current editor mode
func (r *Rig) Mode() Mode {
	return r.mode
}

// SetMode switches the editor mode
func (r *Rig) SetMode(m Mode) {
	r.mode = m
}

// Skeleton returns the active skeleton, nil when there is none
func (r *Rig) Skeleton() *Skeleton {
	return r.skeleton
}

// AddDeformTarget registers a mesh object in the scene
func (r *Rig) AddDeformTarget(t *DeformTarget) {
	r.targets = append(r.targets, t)
}

// DeformTargets returns every mesh object in the scene
func (r *Rig) DeformTargets() []*DeformTarget {
	return r.targets
}

// ChildObjects returns the mesh objects parented directly to the armature object
func (r *Rig) ChildObjects() []*DeformTarget {
	out := []*DeformTarget{}
	for _, t := range r.targets {
		if t.Parent != "" && t.Parent == r.armature {
			out = append(out, t)
		}
	}
	return out
}

// RenameBone renames a bone and every control group that carried its old name
func (r *Rig) RenameBone(id BoneID, name string) error {
	b := r.skeleton.Bone(id)
	if b == nil {
		return rigerrors.Newf(phase, rigerrors.ErrUnknownBone, "bone %s does not exist", id)
	}
	old := b.Name
	if err := r.skeleton.Rename(id, name); err != nil {
		return err
	}
	for _, t := range r.ChildObjects() {
		t.RenameGroup(old, name)
	}
	return nil
}

// RemoveBone deletes a bone together with its control groups
func (r *Rig) RemoveBone(id BoneID) error {
	b := r.skeleton.Bone(id)
	if b == nil {
		return rigerrors.Newf(phase, rigerrors.ErrUnknownBone, "bone %s does not exist", id)
	}
	name := b.Name
	if err := r.skeleton.Remove(id); err != nil {
		return err
	}
	for _, t := range r.ChildObjects() {
		t.RemoveGroup(name)
	}
	return nil
}

// CommitEdits flushes in-progress bone edits so that constraints can attach.
// The skeleton must be structurally valid at this point.
func (r *Rig) CommitEdits() error {
	if r.skeleton == nil {
		return rigerrors.New("pipeline", rigerrors.ErrNoActiveSkeleton, "no active skeleton")
	}
	if err := r.skeleton.Validate(); err != nil {
		return err
	}
	r.commits++
	return nil
}

// Commits returns how many times edits were committed
func (r *Rig) Commits() int {
	return r.commits
}
