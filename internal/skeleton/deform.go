package skeleton

import "sort"

// DeformTarget is a mesh object parented to the armature object. Its control
// groups map a bone name to the vertices that bone moves.
type DeformTarget struct {
	Name   string
	Parent string
	Groups map[string][]int
}

// NewDeformTarget creates a deform target without groups
func NewDeformTarget(name, parent string) *DeformTarget {
	return &DeformTarget{
		Name:   name,
		Parent: parent,
		Groups: make(map[string][]int),
	}
}

// SetGroup replaces the membership of a control group
func (d *DeformTarget) SetGroup(name string, members []int) {
	if d.Groups == nil {
		d.Groups = make(map[string][]int)
	}
	d.Groups[name] = append([]int(nil), members...)
}

// Group returns the membership of a control group
func (d *DeformTarget) Group(name string) ([]int, bool) {
	members, ok := d.Groups[name]
	return members, ok
}

// GroupNames returns the control group names, sorted
func (d *DeformTarget) GroupNames() []string {
	names := make([]string, 0, len(d.Groups))
	for name := range d.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenameGroup moves a group's membership to a new key. When the destination
// already exists the memberships are merged. Returns false if old is absent.
func (d *DeformTarget) RenameGroup(old, name string) bool {
	members, ok := d.Groups[old]
	if !ok {
		return false
	}
	if old == name {
		return true
	}
	delete(d.Groups, old)
	if existing, clash := d.Groups[name]; clash {
		members = mergeMembers(existing, members)
	}
	d.Groups[name] = members
	return true
}

// RemoveGroup deletes a control group. Returns false if it was absent.
func (d *DeformTarget) RemoveGroup(name string) bool {
	if _, ok := d.Groups[name]; !ok {
		return false
	}
	delete(d.Groups, name)
	return true
}

func mergeMembers(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, v := range append(append([]int(nil), a...), b...) {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
