// Package structure rewires and prunes the bone hierarchy: it welds bone
// chains so each bone flows into its main child, and removes bones that
// move no vertices.
package structure

import (
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vroidbones/vroidbones/internal/skeleton"
)

const (
	// rootShrink is the share of the way to its child the root bone gives up
	rootShrink = 0.8

	handPrefix = "Hand_"
	rootName   = "root"
)

// DefaultExclusions are the secondary appendage categories that never
// continue a parent's chain when the parent has several children
var DefaultExclusions = []string{
	"Sleeve", "Skirt", "Bust", "FaceEye",
	"HairJoint", "Tops", "Food", "Hood",
}

// ChainReport summarizes a connect pass
type ChainReport struct {
	Connected []string // "Parent->Child" links welded
	Detached  []string // children marked disconnected
	Shortened []string // root bones shortened instead of welded
	Skipped   []string // bones whose every child was excluded
}

// decision is what the pass does with one bone, computed before any edit
type decision struct {
	bone     *skeleton.Bone
	target   *skeleton.Bone
	excluded []*skeleton.Bone
}

// ConnectChains welds every bone to its chosen child. A bone with one child
// continues into it; with several, the first child outside the exclusion
// categories wins and the excluded ones are disconnected. "Hand_" bones are
// never welded and the root bone is shortened instead.
func ConnectChains(sk *skeleton.Skeleton, exclude []string, log *zap.Logger) ChainReport {
	if log == nil {
		log = zap.NewNop()
	}

	decisions := make([]decision, 0, sk.Len())
	for _, b := range sk.Bones() {
		if d, ok := decide(sk, b, exclude); ok {
			decisions = append(decisions, d)
		}
	}

	report := ChainReport{}
	for _, d := range decisions {
		for _, c := range d.excluded {
			c.Connected = false
			report.Detached = append(report.Detached, c.Name)
			log.Debug("Detached excluded child", zap.String("bone", d.bone.Name), zap.String("child", c.Name))
		}

		if d.target == nil {
			report.Skipped = append(report.Skipped, d.bone.Name)
			log.Debug("No eligible child", zap.String("bone", d.bone.Name))
			continue
		}
		if strings.HasPrefix(d.bone.Name, handPrefix) {
			log.Debug("Hand bone left detached", zap.String("bone", d.bone.Name))
			continue
		}

		if strings.EqualFold(d.bone.Name, rootName) {
			// Measured from the chosen child, not the current tail.
			toward := r3.Sub(d.target.Head, d.bone.Head)
			sk.SetTail(d.bone.ID, r3.Add(d.bone.Head, r3.Scale(1-rootShrink, toward)))
			for _, c := range sk.Children(d.bone) {
				if c.Connected {
					c.Connected = false
					report.Detached = append(report.Detached, c.Name)
				}
			}
			report.Shortened = append(report.Shortened, d.bone.Name)
			log.Debug("Shortened root bone", zap.String("bone", d.bone.Name), zap.Float64("length", d.bone.Length()))
			continue
		}

		sk.TranslateTail(d.bone.ID, r3.Sub(d.target.Head, d.bone.Tail))
		report.Detached = append(report.Detached, detachWelded(sk, d.bone, d.target)...)
		if err := sk.SetParent(d.target.ID, d.bone.ID, true); err != nil {
			log.Warn("Failed to connect bone", zap.String("bone", d.bone.Name), zap.String("child", d.target.Name), zap.Error(err))
			continue
		}
		report.Connected = append(report.Connected, d.bone.Name+"->"+d.target.Name)
		log.Debug("Connected chain", zap.String("bone", d.bone.Name), zap.String("child", d.target.Name))
	}
	return report
}

// detachWelded marks every connected child of b except keep as
// disconnected once b's tail has moved off their heads
func detachWelded(sk *skeleton.Skeleton, b, keep *skeleton.Bone) []string {
	detached := []string{}
	for _, c := range sk.Children(b) {
		if !c.Connected || c == keep || c.Head == b.Tail {
			continue
		}
		c.Connected = false
		detached = append(detached, c.Name)
	}
	return detached
}

// decide picks the continuation of b from its children as they are before
// the pass starts
func decide(sk *skeleton.Skeleton, b *skeleton.Bone, exclude []string) (decision, bool) {
	children := sk.Children(b)
	if len(children) == 0 {
		return decision{}, false
	}
	d := decision{bone: b}
	if len(children) == 1 {
		d.target = children[0]
		return d, true
	}
	for _, c := range children {
		if IsExcluded(c.Name, exclude) {
			d.excluded = append(d.excluded, c)
			continue
		}
		d.target = c
		break
	}
	return d, true
}

// IsExcluded reports whether a bone name contains one of the exclusion categories
func IsExcluded(name string, exclude []string) bool {
	for _, category := range exclude {
		if category != "" && strings.Contains(name, category) {
			return true
		}
	}
	return false
}
