// Package naming parses bone names exported by the character creator,
// computes their canonical host names and finds bones by canonical or
// source-convention names.
package naming

import "strings"

const (
	// Delimiter separates the tokens of a bone name
	Delimiter = "_"

	// HairJointRawPrefix starts a generated hair joint name, e.g. "HairJoint-4f1c..."
	HairJointRawPrefix = "HairJoint-"

	// HairJointPrefix starts every hair joint name, raw or renumbered
	HairJointPrefix = "HairJoint"

	// EndSentinel is the leaf token of chain terminator bones
	EndSentinel = "end"
)

// Side is the left/right tag of a bone name
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "L"
	SideRight Side = "R"
)

// ParseSide recognizes the single-letter side tags
func ParseSide(token string) Side {
	switch Side(token) {
	case SideLeft:
		return SideLeft
	case SideRight:
		return SideRight
	}
	return SideNone
}

// Opposite returns the mirrored side
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return SideNone
}

// NameParts is the semantic breakdown of a bone name
type NameParts struct {
	Tokens       []string
	Base         string
	Side         Side
	IsLeafSuffix bool
	IsHairJoint  bool
}

// Parse splits a bone name into its semantic parts. Names with fewer than
// three tokens carry no side tag and use the whole name as base.
func Parse(name string) NameParts {
	tokens := strings.Split(name, Delimiter)
	p := NameParts{
		Tokens:       tokens,
		Base:         name,
		IsLeafSuffix: strings.HasSuffix(name, Delimiter+EndSentinel),
		IsHairJoint:  strings.HasPrefix(name, HairJointPrefix),
	}
	if len(tokens) >= 3 {
		p.Base = tokens[len(tokens)-1]
		p.Side = ParseSide(tokens[len(tokens)-2])
	}
	return p
}

// IsRawHairJoint reports whether name is an unprocessed generated hair joint
func IsRawHairJoint(name string) bool {
	return strings.HasPrefix(name, HairJointRawPrefix)
}

// Symmetric joins a leaf and a side the way the host mirrors names
func Symmetric(leaf string, side Side) string {
	if side == SideNone {
		return leaf
	}
	return leaf + Delimiter + string(side)
}

// SourceSuffix is the suffix a bone carries in the source convention,
// e.g. "_L_UpperArm" for ("UpperArm", L)
func SourceSuffix(leaf string, side Side) string {
	return Delimiter + string(side) + Delimiter + leaf
}
