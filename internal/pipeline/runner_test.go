package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r3"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

// vroidRig builds a small rig the way the source tool exports it
func vroidRig(t *testing.T) *skeleton.Rig {
	t.Helper()
	sk := skeleton.New()
	add := func(name string, head, tail r3.Vec, parent string) {
		p := skeleton.NoBone
		if parent != "" {
			p = sk.ByName(parent).ID
		}
		_, err := sk.AddBone(name, head, tail, p)
		require.NoError(t, err)
	}
	add("Root", r3.Vec{}, r3.Vec{Y: 1}, "")
	add("J_Bip_C_Hips", r3.Vec{Y: 1}, r3.Vec{Y: 1.1}, "Root")
	add("J_Bip_C_Spine", r3.Vec{Y: 1.2}, r3.Vec{Y: 1.4}, "J_Bip_C_Hips")
	add("J_Bip_L_UpperArm", r3.Vec{X: 0.1, Y: 1.4}, r3.Vec{X: 0.3, Y: 1.4}, "J_Bip_C_Spine")
	add("HairJoint-3f2a9c", r3.Vec{Y: 1.5}, r3.Vec{Y: 1.6}, "J_Bip_C_Spine")
	add("J_Bip_L_UpperArm_end", r3.Vec{X: 0.3, Y: 1.4}, r3.Vec{X: 0.35, Y: 1.4}, "J_Bip_L_UpperArm")

	rig := skeleton.NewRig("Armature", sk)
	body := skeleton.NewDeformTarget("Body", "Armature")
	body.SetGroup("J_Bip_C_Hips", []int{0, 1})
	body.SetGroup("HairJoint-3f2a9c", []int{7})
	rig.AddDeformTarget(body)
	return rig
}

func TestFixNamingAndStructure(t *testing.T) {
	rig := vroidRig(t)

	result, err := NewRunner(nil).FixNamingAndStructure(rig, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, result.Status)
	assert.Contains(t, result.Summary, "Armature was fixed!")
	assert.Equal(t, Stats{Renamed: 4, Connected: 3, Deleted: 1}, result.Stats)

	sk := rig.Skeleton()
	assert.Equal(t, []string{"Root", "Hips", "Spine", "UpperArm_L", "HairJoint_1"}, sk.Names())

	spine := sk.ByName("Spine")
	arm := sk.ByName("UpperArm_L")
	assert.True(t, arm.Connected)
	assert.Equal(t, spine.Tail, arm.Head)
	assert.InDelta(t, 0.2, sk.ByName("Root").Length(), 1e-9)

	groups := rig.DeformTargets()[0].GroupNames()
	assert.Equal(t, []string{"HairJoint_1", "Hips"}, groups)
}

func TestFixNamingAndStructure_StagesDisabled(t *testing.T) {
	rig := vroidRig(t)
	before := rig.Skeleton().Names()

	result, err := NewRunner(nil).FixNamingAndStructure(rig, Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{}, result.Stats)
	assert.Equal(t, before, rig.Skeleton().Names())
	assert.False(t, rig.Skeleton().ByName("J_Bip_C_Spine").Connected)
}

func TestFixNamingAndStructure_EmptyExclusions(t *testing.T) {
	sk := skeleton.New()
	spine, err := sk.AddBone("Spine", r3.Vec{Y: 1}, r3.Vec{Y: 1.1}, skeleton.NoBone)
	require.NoError(t, err)
	skirt, err := sk.AddBone("SkirtFront", r3.Vec{Y: 1, Z: 0.1}, r3.Vec{Y: 0.8, Z: 0.1}, spine.ID)
	require.NoError(t, err)
	_, err = sk.AddBone("Chest", r3.Vec{Y: 1.2}, r3.Vec{Y: 1.4}, spine.ID)
	require.NoError(t, err)

	opts := Options{ConnectChains: true, Exclude: []string{}}
	_, err = NewRunner(nil).FixNamingAndStructure(skeleton.NewRig("Armature", sk), opts)
	require.NoError(t, err)

	assert.True(t, skirt.Connected, "nothing is excluded, so the first child continues the chain")
	assert.Equal(t, skirt.Head, spine.Tail)
}

func TestFixNamingAndStructure_CollisionRejected(t *testing.T) {
	sk := skeleton.New()
	_, err := sk.AddBone("J_Bip_C_Chest", r3.Vec{}, r3.Vec{Y: 1}, skeleton.NoBone)
	require.NoError(t, err)
	_, err = sk.AddBone("J_Sec_C_Chest", r3.Vec{}, r3.Vec{Y: 1}, skeleton.NoBone)
	require.NoError(t, err)
	rig := skeleton.NewRig("Armature", sk)

	result, err := NewRunner(nil).FixNamingAndStructure(rig, DefaultOptions())
	require.Error(t, err)
	assert.True(t, rigerrors.IsStructural(err))
	assert.Equal(t, StatusCancelled, result.Status)
	assert.Equal(t, []string{"J_Bip_C_Chest", "J_Sec_C_Chest"}, sk.Names())
}

func TestFixNamingAndStructure_CollisionSuffixed(t *testing.T) {
	sk := skeleton.New()
	_, err := sk.AddBone("J_Bip_C_Chest", r3.Vec{}, r3.Vec{Y: 1}, skeleton.NoBone)
	require.NoError(t, err)
	_, err = sk.AddBone("J_Sec_C_Chest", r3.Vec{}, r3.Vec{Y: 1}, skeleton.NoBone)
	require.NoError(t, err)
	rig := skeleton.NewRig("Armature", sk)

	opts := DefaultOptions()
	opts.Collision = naming.CollisionSuffix
	_, err = NewRunner(nil).FixNamingAndStructure(rig, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chest", "Chest.001"}, sk.Names())
}

func TestPreconditions(t *testing.T) {
	posed := vroidRig(t)
	posed.SetMode(skeleton.ModePose)

	tests := []struct {
		name string
		rig  *skeleton.Rig
		code string
	}{
		{"nil rig", nil, rigerrors.ErrNilRig},
		{"no skeleton", skeleton.NewRig("Armature", nil), rigerrors.ErrNoActiveSkeleton},
		{"pose mode", posed, rigerrors.ErrWrongMode},
	}

	runner := NewRunner(nil)
	for _, tt := range tests {
		for _, action := range Actions {
			t.Run(tt.name+"/"+string(action), func(t *testing.T) {
				result, err := runner.Run(action, tt.rig, DefaultOptions())
				require.Error(t, err)
				assert.True(t, rigerrors.IsPrecondition(err))
				assert.True(t, rigerrors.HasCode(err, tt.code))
				assert.Equal(t, StatusCancelled, result.Status)
			})
		}
	}

	assert.Equal(t, "J_Bip_C_Hips", posed.Skeleton().Names()[1])
	assert.Zero(t, posed.Commits())
}

func TestSetupActions(t *testing.T) {
	sk := skeleton.New()
	parent := skeleton.NoBone
	for i, name := range []string{"UpperArm_L", "LowerArm_L", "Hand_L", "Index1_L", "Index2_L", "Index3_L"} {
		b, err := sk.AddBone(name, r3.Vec{X: float64(i)}, r3.Vec{X: float64(i + 1)}, parent)
		require.NoError(t, err)
		parent = b.ID
	}
	rig := skeleton.NewRig("Armature", sk)
	runner := NewRunner(nil)

	result, err := runner.SetupIK(rig, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "IK was setup! (1 bones configured, 3 not found)", result.Summary)
	assert.Equal(t, Stats{ConstraintsSet: 1, Missed: 3}, result.Stats)

	result, err = runner.SetupFingerConstraints(rig, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "Finger constraints were setup!")
	assert.Equal(t, 2, result.Stats.ConstraintsSet)

	result, err = runner.SetupRotationLimits(rig, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "Rotation limits were added!")
	assert.Equal(t, 2, result.Stats.ConstraintsSet)

	assert.Equal(t, 3, rig.Commits())
}

func TestDeepCleanup(t *testing.T) {
	rig := vroidRig(t)

	result, err := NewRunner(nil).DeepCleanup(rig, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, result.Status)
	assert.Equal(t, "Cleanup complete! (2 bones removed)", result.Summary)
	assert.Equal(t, []string{"Root", "J_Bip_C_Hips", "J_Bip_C_Spine", "HairJoint-3f2a9c"}, rig.Skeleton().Names())
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("Limits")
	require.NoError(t, err)
	assert.Equal(t, ActionLimits, a)

	_, err = ParseAction("pose")
	assert.Error(t, err)
}

func TestRunUnknownAction(t *testing.T) {
	result, err := NewRunner(nil).Run(Action("explode"), vroidRig(t), DefaultOptions())
	assert.Error(t, err)
	assert.Equal(t, StatusCancelled, result.Status)
}

func TestRunner_QuietAtInfoLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	runner := NewRunner(zap.New(core))

	for _, action := range []Action{ActionFix, ActionIK, ActionFingers, ActionLimits, ActionCleanup} {
		_, err := runner.Run(action, vroidRig(t), DefaultOptions())
		require.NoError(t, err, action)
	}
	assert.Zero(t, logs.Len(), "outcomes are reported through Result, not the log")
}
