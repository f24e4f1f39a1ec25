package pipeline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/constraints"
	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/skeleton"
	"github.com/vroidbones/vroidbones/internal/structure"
)

const phase = "pipeline"

// Status is the outcome reported back to the host
type Status string

const (
	StatusFinished  Status = "FINISHED"
	StatusCancelled Status = "CANCELLED"
)

// Stats counts what an action changed
type Stats struct {
	Renamed        int `json:"renamed"`
	Connected      int `json:"connected"`
	Deleted        int `json:"deleted"`
	ConstraintsSet int `json:"constraints_set"`
	Missed         int `json:"missed"`
}

// Result is the outcome of one action
type Result struct {
	Status  Status `json:"status"`
	Summary string `json:"summary"`
	Stats   Stats  `json:"stats"`
}

// Action names an entry point
type Action string

const (
	ActionFix     Action = "fix"
	ActionIK      Action = "ik"
	ActionFingers Action = "fingers"
	ActionLimits  Action = "limits"
	ActionCleanup Action = "cleanup"
)

// Actions lists every entry point in menu order
var Actions = []Action{ActionFix, ActionIK, ActionFingers, ActionLimits, ActionCleanup}

// ParseAction parses an action name
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == strings.ToLower(s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Runner executes actions against a rig
type Runner struct {
	Logger *zap.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Logger: log}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run dispatches an action by name
func (r *Runner) Run(action Action, rig *skeleton.Rig, opts Options) (Result, error) {
	switch action {
	case ActionFix:
		return r.FixNamingAndStructure(rig, opts)
	case ActionIK:
		return r.SetupIK(rig, opts)
	case ActionFingers:
		return r.SetupFingerConstraints(rig, opts)
	case ActionLimits:
		return r.SetupRotationLimits(rig, opts)
	case ActionCleanup:
		return r.DeepCleanup(rig, opts)
	}
	return cancelled(fmt.Errorf("unknown action %q", action))
}

// checkPreconditions rejects invocations outside armature edit mode
func checkPreconditions(rig *skeleton.Rig) error {
	if rig == nil {
		return rigerrors.New(phase, rigerrors.ErrNilRig, "no rig to operate on")
	}
	if rig.Skeleton() == nil {
		return rigerrors.New(phase, rigerrors.ErrNoActiveSkeleton, "no active skeleton")
	}
	if rig.Mode() != skeleton.ModeEditArmature {
		return rigerrors.Newf(phase, rigerrors.ErrWrongMode,
			"must be in %s mode, not %s", skeleton.ModeEditArmature, rig.Mode())
	}
	return nil
}

func cancelled(err error) (Result, error) {
	return Result{Status: StatusCancelled, Summary: err.Error()}, err
}

func finished(headline string, stats Stats, details ...string) Result {
	summary := headline
	if len(details) > 0 {
		summary += " (" + strings.Join(details, ", ") + ")"
	}
	return Result{Status: StatusFinished, Summary: summary, Stats: stats}
}

// FixNamingAndStructure renames bones, welds chains and removes unused
// leaf bones, each stage only if its option is enabled
func (r *Runner) FixNamingAndStructure(rig *skeleton.Rig, opts Options) (Result, error) {
	if err := checkPreconditions(rig); err != nil {
		return cancelled(err)
	}
	log := r.logger().With(zap.String("action", string(ActionFix)))
	stats := Stats{}

	if policy := opts.NamingPolicy(); policy.Any() {
		renames, err := naming.RenameAll(rig, policy, opts.collision())
		if err != nil {
			return cancelled(err)
		}
		for _, rn := range renames {
			log.Debug("Renamed bone", zap.String("bone", rn.From), zap.String("to", rn.To))
		}
		stats.Renamed = len(renames)
	}

	if opts.ConnectChains {
		report := structure.ConnectChains(rig.Skeleton(), opts.exclusions(), log)
		stats.Connected = len(report.Connected)
	}

	if opts.RemoveLeaves {
		removed, err := structure.NewPruner(rig, log).ClearLeaves()
		stats.Deleted = len(removed)
		if err != nil {
			return cancelled(err)
		}
	}

	if err := rig.Skeleton().Validate(); err != nil {
		return cancelled(err)
	}

	log.Debug("Armature fixed",
		zap.Int("renamed", stats.Renamed),
		zap.Int("connected", stats.Connected),
		zap.Int("deleted", stats.Deleted))
	return finished("Armature was fixed!", stats,
		fmt.Sprintf("%d renamed", stats.Renamed),
		fmt.Sprintf("%d connected", stats.Connected),
		fmt.Sprintf("%d removed", stats.Deleted)), nil
}

// SetupIK attaches the limb IK chains
func (r *Runner) SetupIK(rig *skeleton.Rig, _ Options) (Result, error) {
	return r.synthesize(rig, ActionIK, "IK was setup!", (*constraints.Synthesizer).SetupIK)
}

// SetupFingerConstraints couples the distal finger joints
func (r *Runner) SetupFingerConstraints(rig *skeleton.Rig, _ Options) (Result, error) {
	return r.synthesize(rig, ActionFingers, "Finger constraints were setup!", (*constraints.Synthesizer).SetupFingerCoupling)
}

// SetupRotationLimits clamps joint rotations
func (r *Runner) SetupRotationLimits(rig *skeleton.Rig, _ Options) (Result, error) {
	return r.synthesize(rig, ActionLimits, "Rotation limits were added!", (*constraints.Synthesizer).SetupRotationLimits)
}

func (r *Runner) synthesize(rig *skeleton.Rig, action Action, headline string,
	op func(*constraints.Synthesizer) (constraints.Report, error)) (Result, error) {
	if err := checkPreconditions(rig); err != nil {
		return cancelled(err)
	}
	log := r.logger().With(zap.String("action", string(action)))

	report, err := op(constraints.New(rig, log))
	if err != nil {
		return cancelled(err)
	}
	for _, name := range report.Missed {
		log.Debug("Lookup miss", zap.String("bone", name), zap.String("code", rigerrors.ErrBoneNotFound))
	}

	stats := Stats{ConstraintsSet: len(report.Applied), Missed: len(report.Missed)}
	log.Debug(headline, zap.Int("constraints", stats.ConstraintsSet), zap.Int("missed", stats.Missed))
	return finished(headline, stats,
		fmt.Sprintf("%d bones configured", stats.ConstraintsSet),
		fmt.Sprintf("%d not found", stats.Missed)), nil
}

// DeepCleanup removes every subtree that moves no vertices
func (r *Runner) DeepCleanup(rig *skeleton.Rig, _ Options) (Result, error) {
	if err := checkPreconditions(rig); err != nil {
		return cancelled(err)
	}
	log := r.logger().With(zap.String("action", string(ActionCleanup)))

	removed, err := structure.NewPruner(rig, log).DeepClean()
	stats := Stats{Deleted: len(removed)}
	if err != nil {
		return cancelled(err)
	}

	log.Debug("Cleanup complete", zap.Int("deleted", stats.Deleted))
	return finished("Cleanup complete!", stats, fmt.Sprintf("%d bones removed", stats.Deleted)), nil
}
