// Package constraints attaches the rig's pose constraints: limb IK chains,
// per-bone rotation limits and copy-rotation coupling between finger joints.
// Every operation is idempotent; re-running updates the bone's existing
// constraint of that kind.
package constraints

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

// Report lists which configured bones were set up and which were absent
type Report struct {
	Applied []string
	Missed  []string
}

// Synthesizer configures constraints on one rig
type Synthesizer struct {
	rig *skeleton.Rig
	log *zap.Logger
}

// New creates a synthesizer for rig
func New(rig *skeleton.Rig, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{rig: rig, log: log}
}

// find resolves a configured bone name, refusing ambiguous suffix matches
func (s *Synthesizer) find(query string) (*skeleton.Bone, error) {
	b, err := naming.FindUnique(s.rig.Skeleton(), query)
	if err != nil {
		return nil, err
	}
	if b == nil {
		s.log.Debug("Bone not found, skipping", zap.String("bone", query))
	}
	return b, nil
}

// SetupIK attaches a two-bone IK chain to each limb end
func (s *Synthesizer) SetupIK() (Report, error) {
	report := Report{}
	if err := s.rig.CommitEdits(); err != nil {
		return report, err
	}

	for _, spec := range ikTable {
		b, err := s.find(spec.bone)
		if err != nil {
			return report, err
		}
		if b == nil {
			report.Missed = append(report.Missed, spec.bone)
			continue
		}

		ik := b.EnsureIK()
		ik.ChainLength = spec.chainLength
		ik.Locked = spec.locked
		ik.Limits = spec.limits.Clone()
		report.Applied = append(report.Applied, b.Name)
		s.log.Debug("IK configured", zap.String("bone", b.Name), zap.Int("chain_length", spec.chainLength))
	}
	return report, nil
}

// SetupRotationLimits clamps torso, limb and finger joints
func (s *Synthesizer) SetupRotationLimits() (Report, error) {
	report := Report{}
	if err := s.rig.CommitEdits(); err != nil {
		return report, err
	}

	apply := func(name string, limits skeleton.Limits) error {
		b, err := s.find(name)
		if err != nil {
			return err
		}
		if b == nil {
			report.Missed = append(report.Missed, name)
			return nil
		}
		rl := b.EnsureRotationLimit()
		rl.Limits = limits.Clone()
		rl.Space = skeleton.SpaceLocal
		report.Applied = append(report.Applied, b.Name)
		s.log.Debug("Rotation limit configured", zap.String("bone", b.Name))
		return nil
	}

	for _, entry := range rotationLimitTable {
		if err := apply(entry.bone, entry.limits); err != nil {
			return report, err
		}
	}
	for _, finger := range Fingers[1:] {
		for _, side := range Sides {
			if err := apply(fingerBone(finger, 1, side), fingerProximalLimits); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

// SetupFingerCoupling makes segments 2 and 3 of every finger follow the
// rotation of the segment before them
func (s *Synthesizer) SetupFingerCoupling() (Report, error) {
	report := Report{}
	if err := s.rig.CommitEdits(); err != nil {
		return report, err
	}

	for _, finger := range Fingers {
		excluded := skeleton.NewAxisSet(skeleton.AxisY, skeleton.AxisZ)
		if finger == thumb {
			excluded = skeleton.NewAxisSet(skeleton.AxisY, skeleton.AxisX)
		}

		for _, side := range Sides {
			for segment := 2; segment <= 3; segment++ {
				name := fingerBone(finger, segment, side)
				b, err := s.find(name)
				if err != nil {
					return report, err
				}
				source, err := s.find(fingerBone(finger, segment-1, side))
				if err != nil {
					return report, err
				}
				if b == nil || source == nil {
					report.Missed = append(report.Missed, name)
					continue
				}

				cr := b.EnsureCopyRotation()
				cr.Source = source.ID
				cr.Mix = skeleton.MixAdd
				cr.OwnerSpace = skeleton.SpaceLocal
				cr.TargetSpace = skeleton.SpaceLocal
				cr.Excluded = excluded
				report.Applied = append(report.Applied, b.Name)
				s.log.Debug("Finger coupling configured", zap.String("bone", b.Name), zap.String("source", source.Name))
			}
		}
	}
	return report, nil
}

func fingerBone(finger string, segment int, side string) string {
	return fmt.Sprintf("%s%d_%s", finger, segment, side)
}
