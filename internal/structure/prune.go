package structure

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/effect"
	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

// Pruner deletes bones that move no vertices
type Pruner struct {
	rig    *skeleton.Rig
	effect *effect.Analyzer
	log    *zap.Logger
}

// NewPruner creates a pruner for rig
func NewPruner(rig *skeleton.Rig, log *zap.Logger) *Pruner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{
		rig:    rig,
		effect: effect.New(rig),
		log:    log,
	}
}

// IsLeafCandidate reports whether a bone name marks a chain terminator or a hair joint
func IsLeafCandidate(name string) bool {
	return strings.HasSuffix(name, naming.Delimiter+naming.EndSentinel) ||
		strings.HasPrefix(name, naming.HairJointPrefix)
}

// ClearLeaves deletes childless "_end" and hair joint bones without effect.
// Each bone is judged against the skeleton as it stands when it is reached,
// so a parent emptied earlier in the pass can go too.
func (p *Pruner) ClearLeaves() ([]string, error) {
	sk := p.rig.Skeleton()
	removed := []string{}

	for _, snap := range sk.Bones() {
		b := sk.Bone(snap.ID)
		if b == nil || !b.IsLeaf() || !IsLeafCandidate(b.Name) {
			continue
		}
		if p.effect.HasEffect(b) {
			p.log.Debug("Keeping leaf bone with effect", zap.String("bone", b.Name))
			continue
		}
		name := b.Name
		if err := p.rig.RemoveBone(b.ID); err != nil {
			return removed, err
		}
		removed = append(removed, name)
		p.log.Debug("Removed leaf bone", zap.String("bone", name))
	}
	return removed, nil
}

// DeadSet computes, without touching the skeleton, every bone whose whole
// subtree (itself included) has no effect. The result is in post-order:
// children always precede their parents.
func (p *Pruner) DeadSet() []*skeleton.Bone {
	sk := p.rig.Skeleton()
	order := []*skeleton.Bone{}

	var visit func(b *skeleton.Bone) bool
	visit = func(b *skeleton.Bone) bool {
		allDead := true
		for _, c := range sk.Children(b) {
			if !visit(c) {
				allDead = false
			}
		}
		if allDead && !p.effect.HasEffect(b) {
			order = append(order, b)
			return true
		}
		return false
	}
	for _, root := range sk.Roots() {
		visit(root)
	}
	return order
}

// DeepClean deletes every dead subtree. A subtree holding even one bone
// with effect is kept whole.
func (p *Pruner) DeepClean() ([]string, error) {
	doomed := p.DeadSet()
	removed := make([]string, 0, len(doomed))

	for _, b := range doomed {
		name := b.Name
		if err := p.rig.RemoveBone(b.ID); err != nil {
			return removed, err
		}
		removed = append(removed, name)
		p.log.Debug("Removed dead bone", zap.String("bone", name))
	}
	return removed, nil
}
