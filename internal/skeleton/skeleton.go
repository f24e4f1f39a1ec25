package skeleton

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
)

const phase = "skeleton"

// Skeleton owns every bone of an armature. Enumeration order is insertion
// order, which for loaded documents is document order.
type Skeleton struct {
	bones  map[BoneID]*Bone
	order  []BoneID
	byName map[string]BoneID
}

// New creates an empty skeleton
func New() *Skeleton {
	return &Skeleton{
		bones:  make(map[BoneID]*Bone),
		order:  make([]BoneID, 0),
		byName: make(map[string]BoneID),
	}
}

// Len returns the number of bones
func (s *Skeleton) Len() int {
	return len(s.order)
}

// AddBone creates a bone under parent (NoBone for a root)
func (s *Skeleton) AddBone(name string, head, tail r3.Vec, parent BoneID) (*Bone, error) {
	return s.addBone(NewBoneID(), name, head, tail, parent)
}

// AddBoneWithID creates a bone with a caller-chosen identifier
func (s *Skeleton) AddBoneWithID(id BoneID, name string, head, tail r3.Vec, parent BoneID) (*Bone, error) {
	if id.IsZero() {
		id = NewBoneID()
	}
	if _, exists := s.bones[id]; exists {
		return nil, rigerrors.Newf(phase, rigerrors.ErrDuplicateName, "bone id %s already used", id).WithBone(name)
	}
	return s.addBone(id, name, head, tail, parent)
}

func (s *Skeleton) addBone(id BoneID, name string, head, tail r3.Vec, parent BoneID) (*Bone, error) {
	if name == "" {
		return nil, rigerrors.New(phase, rigerrors.ErrEmptyName, "bone name must not be empty")
	}
	if _, taken := s.byName[name]; taken {
		return nil, rigerrors.New(phase, rigerrors.ErrDuplicateName, "bone name already in use").WithBone(name)
	}
	if !parent.IsZero() {
		if _, ok := s.bones[parent]; !ok {
			return nil, rigerrors.Newf(phase, rigerrors.ErrUnknownBone, "parent %s does not exist", parent).WithBone(name)
		}
	}

	b := &Bone{
		ID:       id,
		Name:     name,
		Head:     head,
		Tail:     tail,
		Parent:   parent,
		Children: make([]BoneID, 0),
	}
	s.bones[id] = b
	s.order = append(s.order, id)
	s.byName[name] = id
	if !parent.IsZero() {
		p := s.bones[parent]
		p.Children = append(p.Children, id)
	}
	return b, nil
}

// Bone returns the bone with the given identifier, or nil
func (s *Skeleton) Bone(id BoneID) *Bone {
	return s.bones[id]
}

// ByName returns the bone currently carrying name, or nil
func (s *Skeleton) ByName(name string) *Bone {
	id, ok := s.byName[name]
	if !ok {
		return nil
	}
	return s.bones[id]
}

// Bones returns a snapshot of all bones in enumeration order
func (s *Skeleton) Bones() []*Bone {
	out := make([]*Bone, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bones[id])
	}
	return out
}

// Names returns the bone names in enumeration order
func (s *Skeleton) Names() []string {
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bones[id].Name)
	}
	return out
}

// Roots returns the bones without a parent
func (s *Skeleton) Roots() []*Bone {
	out := []*Bone{}
	for _, id := range s.order {
		if b := s.bones[id]; !b.HasParent() {
			out = append(out, b)
		}
	}
	return out
}

// Children returns the children of b in their stored order
func (s *Skeleton) Children(b *Bone) []*Bone {
	out := make([]*Bone, 0, len(b.Children))
	for _, id := range b.Children {
		out = append(out, s.bones[id])
	}
	return out
}

// Parent returns the parent of b, or nil for a root
func (s *Skeleton) Parent(b *Bone) *Bone {
	if !b.HasParent() {
		return nil
	}
	return s.bones[b.Parent]
}

// Rename gives a bone a new name. The new name must not belong to another bone.
func (s *Skeleton) Rename(id BoneID, name string) error {
	b, ok := s.bones[id]
	if !ok {
		return rigerrors.Newf(phase, rigerrors.ErrUnknownBone, "bone %s does not exist", id)
	}
	if name == "" {
		return rigerrors.New(phase, rigerrors.ErrEmptyName, "bone name must not be empty").WithBone(b.Name)
	}
	if b.Name == name {
		return nil
	}
	if other, taken := s.byName[name]; taken && other != id {
		return rigerrors.Newf(phase, rigerrors.ErrRenameCollision, "cannot rename %q: name %q already in use", b.Name, name).WithBone(b.Name)
	}
	delete(s.byName, b.Name)
	b.Name = name
	s.byName[name] = id
	return nil
}

// SetTail moves the tail endpoint of a bone
func (s *Skeleton) SetTail(id BoneID, tail r3.Vec) {
	if b, ok := s.bones[id]; ok {
		b.Tail = tail
	}
}

// TranslateTail moves the tail endpoint of a bone by offset
func (s *Skeleton) TranslateTail(id BoneID, offset r3.Vec) {
	if b, ok := s.bones[id]; ok {
		b.Tail = r3.Add(b.Tail, offset)
	}
}

// SetParent reparents child under parent (NoBone detaches it). A connected
// link snaps the child's head onto the parent's tail.
func (s *Skeleton) SetParent(child, parent BoneID, connected bool) error {
	c, ok := s.bones[child]
	if !ok {
		return rigerrors.Newf(phase, rigerrors.ErrUnknownBone, "bone %s does not exist", child)
	}
	var p *Bone
	if !parent.IsZero() {
		if p, ok = s.bones[parent]; !ok {
			return rigerrors.Newf(phase, rigerrors.ErrUnknownBone, "parent %s does not exist", parent).WithBone(c.Name)
		}
		for cur := p; cur != nil; cur = s.Parent(cur) {
			if cur.ID == child {
				return rigerrors.Newf(phase, rigerrors.ErrCycle, "parenting %q under %q would create a cycle", c.Name, p.Name).WithBone(c.Name)
			}
		}
	}

	if c.Parent != parent {
		if old := s.Parent(c); old != nil {
			old.Children = removeID(old.Children, child)
		}
		c.Parent = parent
		if p != nil {
			p.Children = append(p.Children, child)
		}
	}

	c.Connected = connected && p != nil
	if c.Connected {
		c.Head = p.Tail
	}
	return nil
}

// Remove deletes a bone. Its children move to its parent, disconnected, and
// copy rotation constraints driven by it are dropped.
func (s *Skeleton) Remove(id BoneID) error {
	b, ok := s.bones[id]
	if !ok {
		return rigerrors.Newf(phase, rigerrors.ErrUnknownBone, "bone %s does not exist", id)
	}

	parent := s.Parent(b)
	for _, childID := range b.Children {
		c := s.bones[childID]
		c.Parent = b.Parent
		c.Connected = false
		if parent != nil {
			parent.Children = append(parent.Children, childID)
		}
	}
	if parent != nil {
		parent.Children = removeID(parent.Children, id)
	}

	delete(s.bones, id)
	delete(s.byName, b.Name)
	s.order = removeID(s.order, id)

	for _, other := range s.bones {
		other.Constraints = slices.DeleteFunc(other.Constraints, func(c Constraint) bool {
			cr, ok := c.(*CopyRotation)
			return ok && cr.Source == id
		})
	}
	return nil
}

// Validate checks name uniqueness, reference integrity and acyclicity
func (s *Skeleton) Validate() error {
	seen := make(map[string]BoneID, len(s.order))
	for _, id := range s.order {
		b := s.bones[id]
		if prev, dup := seen[b.Name]; dup && prev != id {
			return rigerrors.New(phase, rigerrors.ErrDuplicateName, "bone name appears more than once").WithBone(b.Name)
		}
		seen[b.Name] = id
		if s.byName[b.Name] != id {
			return rigerrors.New(phase, rigerrors.ErrDanglingReference, "name index out of date").WithBone(b.Name)
		}

		if b.HasParent() {
			p, ok := s.bones[b.Parent]
			if !ok {
				return rigerrors.New(phase, rigerrors.ErrDanglingReference, "parent does not exist").WithBone(b.Name)
			}
			if !containsID(p.Children, id) {
				return rigerrors.Newf(phase, rigerrors.ErrDanglingReference, "parent %q does not list bone as child", p.Name).WithBone(b.Name)
			}
		}
		for _, childID := range b.Children {
			c, ok := s.bones[childID]
			if !ok || c.Parent != id {
				return rigerrors.New(phase, rigerrors.ErrDanglingReference, "child reference does not point back").WithBone(b.Name)
			}
		}
		for _, c := range b.Constraints {
			if cr, ok := c.(*CopyRotation); ok && !cr.Source.IsZero() {
				if _, exists := s.bones[cr.Source]; !exists {
					return rigerrors.New(phase, rigerrors.ErrDanglingReference, "copy rotation source does not exist").WithBone(b.Name)
				}
			}
		}
	}

	// Walking up from every bone must terminate within Len() steps.
	for _, id := range s.order {
		steps := 0
		for cur := s.bones[id]; cur != nil && cur.HasParent(); cur = s.bones[cur.Parent] {
			steps++
			if steps > len(s.order) {
				return rigerrors.New(phase, rigerrors.ErrCycle, "parent chain does not terminate").WithBone(s.bones[id].Name)
			}
		}
	}
	return nil
}

// Walk visits the subtree rooted at b depth-first, children before parents
func (s *Skeleton) Walk(b *Bone, visit func(*Bone)) {
	for _, c := range s.Children(b) {
		s.Walk(c, visit)
	}
	visit(b)
}

func removeID(ids []BoneID, id BoneID) []BoneID {
	out := make([]BoneID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []BoneID, id BoneID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
