package naming

import (
	"fmt"
	"strings"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

const (
	phase            = "naming"
	renameTempPrefix = "__vroidbones_tmp_"
)

// CollisionPolicy decides what happens when two bones resolve to one name
type CollisionPolicy string

const (
	// CollisionReject fails the pass before any bone is renamed
	CollisionReject CollisionPolicy = "reject"
	// CollisionSuffix appends ".001", ".002", ... the way the host does
	CollisionSuffix CollisionPolicy = "suffix"
)

// ParseCollisionPolicy parses a collision policy name
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case CollisionReject, "":
		return CollisionReject, nil
	case CollisionSuffix:
		return CollisionSuffix, nil
	}
	return "", fmt.Errorf("unknown collision policy %q (expected reject or suffix)", s)
}

// Rename is one planned bone rename
type Rename struct {
	ID   skeleton.BoneID
	From string
	To   string
}

// Plan resolves every bone name of the skeleton and returns the renames the
// pass would perform. Bones that keep their name claim it first; renamed
// bones then claim theirs in enumeration order.
func Plan(sk *skeleton.Skeleton, policy Policy, collision CollisionPolicy) ([]Rename, error) {
	resolver := NewResolver(policy, sk.Names())

	type candidate struct {
		bone *skeleton.Bone
		to   string
	}
	claimed := make(map[string]skeleton.BoneID, sk.Len())
	pending := []candidate{}

	for _, b := range sk.Bones() {
		to, ok := resolver.Resolve(b.Name)
		if !ok {
			claimed[b.Name] = b.ID
			continue
		}
		pending = append(pending, candidate{bone: b, to: to})
	}

	plan := make([]Rename, 0, len(pending))
	var collisionErr *rigerrors.RigError
	for _, c := range pending {
		to := c.to
		if owner, taken := claimed[to]; taken {
			switch collision {
			case CollisionSuffix:
				to = nextFreeName(to, claimed)
			default:
				related := rigerrors.Newf(phase, rigerrors.ErrRenameCollision,
					"%q resolves to %q, already claimed by %q", c.bone.Name, to, sk.Bone(owner).Name).WithBone(c.bone.Name)
				if collisionErr == nil {
					e := rigerrors.Newf(phase, rigerrors.ErrRenameCollision,
						"two bones resolve to the canonical name %q", to).WithBone(c.bone.Name)
					collisionErr = &e
				}
				*collisionErr = collisionErr.WithRelated(related)
				continue
			}
		}
		claimed[to] = c.bone.ID
		plan = append(plan, Rename{ID: c.bone.ID, From: c.bone.Name, To: to})
	}

	if collisionErr != nil {
		return nil, *collisionErr
	}
	return plan, nil
}

// Apply performs planned renames on the rig. Every bone first moves to a
// temporary name so that swaps and chains of renames never collide midway.
func Apply(rig *skeleton.Rig, plan []Rename) error {
	for i, r := range plan {
		if err := rig.RenameBone(r.ID, fmt.Sprintf("%s%d", renameTempPrefix, i)); err != nil {
			return err
		}
	}
	for _, r := range plan {
		if err := rig.RenameBone(r.ID, r.To); err != nil {
			return err
		}
	}
	return nil
}

// RenameAll plans and applies one resolution pass over the rig
func RenameAll(rig *skeleton.Rig, policy Policy, collision CollisionPolicy) ([]Rename, error) {
	plan, err := Plan(rig.Skeleton(), policy, collision)
	if err != nil {
		return nil, err
	}
	if err := Apply(rig, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func nextFreeName(name string, claimed map[string]skeleton.BoneID) string {
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if _, taken := claimed[candidate]; !taken {
			return candidate
		}
	}
}
