package skeleton

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
)

const docPhase = "document"

// Format is a rig document encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", rigerrors.Newf(docPhase, rigerrors.ErrUnknownFormat, "cannot infer document format from %q", path)
}

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", rigerrors.Newf(docPhase, rigerrors.ErrUnknownFormat, "unknown document format %q", s)
}

type document struct {
	Armature      string      `yaml:"armature" json:"armature"`
	Mode          string      `yaml:"mode,omitempty" json:"mode,omitempty"`
	Bones         []boneDoc   `yaml:"bones" json:"bones"`
	DeformTargets []targetDoc `yaml:"deform_targets,omitempty" json:"deform_targets,omitempty"`
}

type boneDoc struct {
	ID          string          `yaml:"id,omitempty" json:"id,omitempty"`
	Name        string          `yaml:"name" json:"name"`
	Parent      string          `yaml:"parent,omitempty" json:"parent,omitempty"`
	Head        []float64       `yaml:"head,flow" json:"head"`
	Tail        []float64       `yaml:"tail,flow" json:"tail"`
	Connected   bool            `yaml:"connected,omitempty" json:"connected,omitempty"`
	Constraints []constraintDoc `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

type constraintDoc struct {
	Kind         string               `yaml:"kind" json:"kind"`
	ChainLength  int                  `yaml:"chain_length,omitempty" json:"chain_length,omitempty"`
	LockedAxes   []string             `yaml:"locked_axes,omitempty,flow" json:"locked_axes,omitempty"`
	Limits       map[string][]float64 `yaml:"limits,omitempty" json:"limits,omitempty"`
	Space        string               `yaml:"space,omitempty" json:"space,omitempty"`
	Source       string               `yaml:"source,omitempty" json:"source,omitempty"`
	Mix          string               `yaml:"mix,omitempty" json:"mix,omitempty"`
	TargetSpace  string               `yaml:"target_space,omitempty" json:"target_space,omitempty"`
	ExcludedAxes []string             `yaml:"excluded_axes,omitempty,flow" json:"excluded_axes,omitempty"`
}

type targetDoc struct {
	Name   string           `yaml:"name" json:"name"`
	Parent string           `yaml:"parent,omitempty" json:"parent,omitempty"`
	Groups map[string][]int `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// Load reads a rig document, choosing the format from the extension
func Load(path string) (*Rig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rigerrors.Newf(docPhase, rigerrors.ErrUnreadableDocument, "failed to read %s: %v", path, err)
	}
	return Decode(bytes.NewReader(data), format)
}

// Save writes a rig document
func Save(path string, rig *Rig, format Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, rig, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Decode parses a rig document
func Decode(r io.Reader, format Format) (*Rig, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, rigerrors.Newf(docPhase, rigerrors.ErrUnreadableDocument, "invalid JSON rig document: %v", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, rigerrors.Newf(docPhase, rigerrors.ErrUnreadableDocument, "invalid YAML rig document: %v", err)
		}
	default:
		return nil, rigerrors.Newf(docPhase, rigerrors.ErrUnknownFormat, "unknown document format %q", format)
	}
	return doc.toRig()
}

// Encode serializes a rig document
func Encode(w io.Writer, rig *Rig, format Format) error {
	doc := fromRig(rig)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return rigerrors.Newf(docPhase, rigerrors.ErrUnknownFormat, "unknown document format %q", format)
}

func (doc document) toRig() (*Rig, error) {
	mode, err := ParseMode(doc.Mode)
	if err != nil {
		return nil, err
	}

	// A scene without an armature object has no active skeleton
	if doc.Armature == "" {
		if len(doc.Bones) > 0 {
			return nil, rigerrors.New(docPhase, rigerrors.ErrUnreadableDocument, "bones listed without an armature name")
		}
		rig := NewRig("", nil)
		rig.SetMode(mode)
		return rig, nil
	}

	sk := New()
	for _, bd := range doc.Bones {
		head, err := toVec(bd.Head)
		if err != nil {
			return nil, rigerrors.Newf(docPhase, rigerrors.ErrInvalidVector, "head: %v", err).WithBone(bd.Name)
		}
		tail, err := toVec(bd.Tail)
		if err != nil {
			return nil, rigerrors.Newf(docPhase, rigerrors.ErrInvalidVector, "tail: %v", err).WithBone(bd.Name)
		}
		id := NoBone
		if bd.ID != "" {
			if id, err = ParseBoneID(bd.ID); err != nil {
				return nil, rigerrors.Newf(docPhase, rigerrors.ErrUnreadableDocument, "invalid bone id %q", bd.ID).WithBone(bd.Name)
			}
		}
		if _, err := sk.AddBoneWithID(id, bd.Name, head, tail, NoBone); err != nil {
			return nil, err
		}
	}

	// Parents may be listed after their children, so link in a second pass.
	for _, bd := range doc.Bones {
		if bd.Parent == "" {
			continue
		}
		child := sk.ByName(bd.Name)
		parent := sk.ByName(bd.Parent)
		if parent == nil {
			return nil, rigerrors.Newf(docPhase, rigerrors.ErrDanglingReference, "parent %q does not exist", bd.Parent).WithBone(bd.Name)
		}
		if err := sk.SetParent(child.ID, parent.ID, false); err != nil {
			return nil, err
		}
		child.Connected = bd.Connected
	}

	for _, bd := range doc.Bones {
		b := sk.ByName(bd.Name)
		for _, cd := range bd.Constraints {
			if err := cd.apply(sk, b); err != nil {
				return nil, err
			}
		}
	}

	rig := NewRig(doc.Armature, sk)
	rig.SetMode(mode)
	for _, td := range doc.DeformTargets {
		t := NewDeformTarget(td.Name, td.Parent)
		for name, members := range td.Groups {
			t.SetGroup(name, members)
		}
		rig.AddDeformTarget(t)
	}
	return rig, nil
}

func (cd constraintDoc) apply(sk *Skeleton, b *Bone) error {
	kind, err := ParseConstraintKind(cd.Kind)
	if err != nil {
		return rigerrors.New(docPhase, rigerrors.ErrInvalidConstraint, err.Error()).WithBone(b.Name)
	}
	limits, err := toLimits(cd.Limits)
	if err != nil {
		return rigerrors.New(docPhase, rigerrors.ErrInvalidConstraint, err.Error()).WithBone(b.Name)
	}

	switch kind {
	case KindIK:
		ik := b.EnsureIK()
		ik.ChainLength = cd.ChainLength
		if ik.Locked, err = toAxisSet(cd.LockedAxes); err != nil {
			return rigerrors.New(docPhase, rigerrors.ErrInvalidConstraint, err.Error()).WithBone(b.Name)
		}
		ik.Limits = limits
	case KindRotationLimit:
		rl := b.EnsureRotationLimit()
		rl.Limits = limits
		if cd.Space != "" {
			rl.Space = Space(strings.ToUpper(cd.Space))
		}
	case KindCopyRotation:
		cr := b.EnsureCopyRotation()
		if cd.Source != "" {
			src := sk.ByName(cd.Source)
			if src == nil {
				return rigerrors.Newf(docPhase, rigerrors.ErrDanglingReference, "copy rotation source %q does not exist", cd.Source).WithBone(b.Name)
			}
			cr.Source = src.ID
		}
		if cd.Mix != "" {
			cr.Mix = MixMode(strings.ToUpper(cd.Mix))
		}
		if cd.Space != "" {
			cr.OwnerSpace = Space(strings.ToUpper(cd.Space))
		}
		if cd.TargetSpace != "" {
			cr.TargetSpace = Space(strings.ToUpper(cd.TargetSpace))
		}
		if cr.Excluded, err = toAxisSet(cd.ExcludedAxes); err != nil {
			return rigerrors.New(docPhase, rigerrors.ErrInvalidConstraint, err.Error()).WithBone(b.Name)
		}
	}
	return nil
}

func fromRig(rig *Rig) document {
	doc := document{
		Armature: rig.ArmatureName(),
		Mode:     string(rig.Mode()),
		Bones:    []boneDoc{},
	}
	sk := rig.Skeleton()
	if sk != nil {
		for _, b := range sk.Bones() {
			bd := boneDoc{
				ID:        b.ID.String(),
				Name:      b.Name,
				Head:      fromVec(b.Head),
				Tail:      fromVec(b.Tail),
				Connected: b.Connected,
			}
			if p := sk.Parent(b); p != nil {
				bd.Parent = p.Name
			}
			for _, c := range b.Constraints {
				bd.Constraints = append(bd.Constraints, fromConstraint(sk, c))
			}
			doc.Bones = append(doc.Bones, bd)
		}
	}
	for _, t := range rig.DeformTargets() {
		td := targetDoc{Name: t.Name, Parent: t.Parent, Groups: map[string][]int{}}
		for _, name := range t.GroupNames() {
			members, _ := t.Group(name)
			td.Groups[name] = append([]int{}, members...)
		}
		doc.DeformTargets = append(doc.DeformTargets, td)
	}
	return doc
}

func fromConstraint(sk *Skeleton, c Constraint) constraintDoc {
	cd := constraintDoc{Kind: string(c.Kind())}
	switch v := c.(type) {
	case *InverseKinematics:
		cd.ChainLength = v.ChainLength
		cd.LockedAxes = v.Locked.Strings()
		cd.Limits = fromLimits(v.Limits)
	case *RotationLimit:
		cd.Limits = fromLimits(v.Limits)
		cd.Space = string(v.Space)
	case *CopyRotation:
		if src := sk.Bone(v.Source); src != nil {
			cd.Source = src.Name
		}
		cd.Mix = string(v.Mix)
		cd.Space = string(v.OwnerSpace)
		cd.TargetSpace = string(v.TargetSpace)
		cd.ExcludedAxes = v.Excluded.Strings()
	}
	return cd
}

func toVec(v []float64) (r3.Vec, error) {
	if len(v) != 3 {
		return r3.Vec{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

func fromVec(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func toAxisSet(names []string) (AxisSet, error) {
	var s AxisSet
	for _, n := range names {
		a, err := ParseAxis(n)
		if err != nil {
			return 0, err
		}
		s = s.With(a)
	}
	return s, nil
}

func toLimits(in map[string][]float64) (Limits, error) {
	out := Limits{}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a, err := ParseAxis(k)
		if err != nil {
			return nil, err
		}
		bounds := in[k]
		if len(bounds) != 2 {
			return nil, fmt.Errorf("limit %s: expected [min, max], got %d values", k, len(bounds))
		}
		if bounds[0] > bounds[1] {
			return nil, fmt.Errorf("limit %s: min %g exceeds max %g", k, bounds[0], bounds[1])
		}
		out[a] = Range{Min: bounds[0], Max: bounds[1]}
	}
	return out, nil
}

func fromLimits(l Limits) map[string][]float64 {
	if len(l) == 0 {
		return nil
	}
	out := make(map[string][]float64, len(l))
	for _, a := range l.SortedAxes() {
		out[a.String()] = []float64{l[a].Min, l[a].Max}
	}
	return out
}
