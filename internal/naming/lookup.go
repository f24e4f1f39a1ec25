package naming

import (
	"strings"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

// SplitCanonical splits a "Leaf_Side" query. ok is false unless the query
// has exactly one delimiter and a recognized side.
func SplitCanonical(query string) (leaf string, side Side, ok bool) {
	tokens := strings.Split(query, Delimiter)
	if len(tokens) != 2 {
		return "", SideNone, false
	}
	side = ParseSide(tokens[1])
	if side == SideNone || tokens[0] == "" {
		return "", SideNone, false
	}
	return tokens[0], side, true
}

// Find resolves a canonical or source-convention bone name. An exact name
// wins; otherwise a "Leaf_Side" query matches the first bone, in
// enumeration order, whose name ends in "_Side_Leaf", and a bare "Leaf"
// the first ending in "_Leaf".
func Find(sk *skeleton.Skeleton, query string) *skeleton.Bone {
	if b := sk.ByName(query); b != nil {
		return b
	}
	matches := suffixMatches(sk, query, 1)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// FindUnique is Find that refuses to guess: more than one suffix match is
// reported as an ambiguity instead of picking the first. A miss returns
// (nil, nil).
func FindUnique(sk *skeleton.Skeleton, query string) (*skeleton.Bone, error) {
	if b := sk.ByName(query); b != nil {
		return b, nil
	}
	matches := suffixMatches(sk, query, 0)
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}

	err := rigerrors.Newf(phase, rigerrors.ErrAmbiguousBone,
		"%q matches %d bones by suffix", query, len(matches)).WithBone(query)
	for _, m := range matches {
		err = err.WithRelated(rigerrors.New(phase, rigerrors.ErrAmbiguousBone, "candidate").WithBone(m.Name))
	}
	return nil, err
}

// suffixMatches collects up to limit bones matching the source-convention
// suffix of query; limit 0 means all.
func suffixMatches(sk *skeleton.Skeleton, query string, limit int) []*skeleton.Bone {
	suffix, ok := querySuffix(query)
	if !ok {
		return nil
	}

	out := []*skeleton.Bone{}
	for _, b := range sk.Bones() {
		if strings.HasSuffix(b.Name, suffix) {
			out = append(out, b)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// querySuffix is the name ending a source-convention bone must carry to
// answer query
func querySuffix(query string) (string, bool) {
	if query == "" {
		return "", false
	}
	if !strings.Contains(query, Delimiter) {
		return Delimiter + query, true
	}
	leaf, side, ok := SplitCanonical(query)
	if !ok {
		return "", false
	}
	return SourceSuffix(leaf, side), true
}
