package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/pipeline"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

func TestFixCommand_InPlace(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)

	stdout, stderr, err := runCLI(t, "fix", path)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Armature was fixed!")

	rig, err := skeleton.Load(path)
	require.NoError(t, err)
	sk := rig.Skeleton()
	assert.Equal(t, []string{"Hips", "Spine", "UpperArm_L", "LowerArm_L"}, sk.Names())
	assert.True(t, sk.ByName("Spine").Connected)

	groups := rig.ChildObjects()[0].GroupNames()
	assert.Equal(t, []string{"Hips", "LowerArm_L"}, groups)
}

func TestFixCommand_SecondRunLeavesFileAlone(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)

	_, stderr, err := runCLI(t, "fix", path)
	require.NoError(t, err, stderr)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	stdout, stderr, err := runCLI(t, "fix", path)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "(unchanged)")

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestFixCommand_RootedRigSettlesAfterOnePass(t *testing.T) {
	rooted := strings.Replace(sourceRig, "bones:\n  - name: J_Bip_C_Hips\n",
		"bones:\n  - name: Root\n    head: [0, 0, 0]\n    tail: [0, 1, 0]\n  - name: J_Bip_C_Hips\n    parent: Root\n    connected: true\n", 1)
	path := writeRig(t, "avatar.rig.yml", rooted)

	_, stderr, err := runCLI(t, "fix", path)
	require.NoError(t, err, stderr)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	rig, err := skeleton.Load(path)
	require.NoError(t, err)
	root := rig.Skeleton().ByName("Root")
	require.NotNil(t, root)
	assert.InDelta(t, 0.2, root.Length(), 1e-9)
	assert.False(t, rig.Skeleton().ByName("Hips").Connected)

	for i := 0; i < 2; i++ {
		stdout, stderr, err := runCLI(t, "fix", path)
		require.NoError(t, err, stderr)
		assert.Contains(t, stdout, "(unchanged)")
	}

	last, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(last))
}

func TestFixCommand_Output(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)
	out := filepath.Join(filepath.Dir(path), "fixed.rig.json")

	_, stderr, err := runCLI(t, "fix", path, "-o", out)
	require.NoError(t, err, stderr)

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sourceRig, string(original), "input must not change")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	rig, err := skeleton.Load(out)
	require.NoError(t, err)
	assert.NotNil(t, rig.Skeleton().ByName("UpperArm_L"))
}

func TestFixCommand_OutputNeedsOneFile(t *testing.T) {
	a := writeRig(t, "a.rig.yml", sourceRig)
	b := writeRig(t, "b.rig.yml", sourceRig)

	_, _, err := runCLI(t, "fix", a, b, "-o", "out.rig.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one input file")
}

func TestFixCommand_FlagsOverrideConfig(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)

	_, stderr, err := runCLI(t, "fix", path, "--simplify=false", "--leaf-bones=false")
	require.NoError(t, err, stderr)

	rig, err := skeleton.Load(path)
	require.NoError(t, err)
	sk := rig.Skeleton()
	assert.NotNil(t, sk.ByName("UpperArm_L"), "sided names are still symmetrized")
	assert.NotNil(t, sk.ByName("J_Bip_C_Hips"))
	assert.NotNil(t, sk.ByName("J_Bip_L_LowerArm_end"))
}

func TestFixCommand_BatchWithFailure(t *testing.T) {
	good := writeRig(t, "good.rig.yml", sourceRig)
	bad := writeRig(t, "bad.rig.yml", "armature: A\nmode: POSE\nbones: []\n")

	stdout, stderr, err := runCLI(t, "fix", good, bad)
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stdout, "Armature was fixed!")
	assert.Contains(t, stderr, rigerrors.ErrWrongMode)
	assert.Contains(t, stderr, "1 of 2 documents processed")
}

func TestSetupCommands(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)
	_, stderr, err := runCLI(t, "fix", path)
	require.NoError(t, err, stderr)

	stdout, stderr, err := runCLI(t, "ik", path)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "IK was setup!")

	_, stderr, err = runCLI(t, "limits", path)
	require.NoError(t, err, stderr)

	rig, err := skeleton.Load(path)
	require.NoError(t, err)
	lower := rig.Skeleton().ByName("LowerArm_L")
	_, ok := lower.Constraint(skeleton.KindIK)
	assert.True(t, ok, "LowerArm_L should carry IK")
	_, ok = rig.Skeleton().ByName("UpperArm_L").Constraint(skeleton.KindRotationLimit)
	assert.True(t, ok, "UpperArm_L should carry a rotation limit")
}

func TestActionCommand_JSONReport(t *testing.T) {
	path := writeRig(t, "posed.rig.yml", "armature: A\nmode: POSE\nbones: []\n")

	stdout, _, err := runCLI(t, "cleanup", path, "--json")
	require.ErrorIs(t, err, errReported)

	var report rigerrors.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "error", report.Status)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, rigerrors.ErrWrongMode, report.Errors[0].Code)
	assert.Equal(t, path, report.Errors[0].Document)
}

func TestActionCommand_NoArmature(t *testing.T) {
	path := writeRig(t, "empty.rig.yml", "mode: EDIT_ARMATURE\n")

	_, stderr, err := runCLI(t, "fingers", path)
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, rigerrors.ErrNoActiveSkeleton)
}

func TestApplyFixChoices(t *testing.T) {
	opts := pipeline.DefaultOptions()
	applyFixChoices(&opts, []string{choiceSymmetrize, choiceChains})

	assert.True(t, opts.Symmetrize)
	assert.False(t, opts.Simplify)
	assert.False(t, opts.RenumberHairJoints)
	assert.False(t, opts.RemoveLeaves)
	assert.True(t, opts.ConnectChains)
}

func TestSetupCommandHelp(t *testing.T) {
	for _, action := range []pipeline.Action{pipeline.ActionIK, pipeline.ActionFingers, pipeline.ActionLimits, pipeline.ActionCleanup} {
		stdout, _, err := runCLI(t, string(action), "--help")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, setupDescriptions[action].long[:10]), "help for %s", action)
	}
}

func TestFixCommand_DryRun(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)

	stdout, stderr, err := runCLI(t, "fix", path, "--dry-run")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "--- a/"+path)
	assert.Regexp(t, `(?m)^-.*name: J_Bip_C_Hips$`, stdout)
	assert.Regexp(t, `(?m)^\+.*name: Hips$`, stdout)
	assert.Contains(t, stdout, "line(s) removed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sourceRig, string(data), "dry run must not write")
}

func TestFixCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "exports"), 0755))
	rigs := []string{filepath.Join(dir, "a.rig.yml"), filepath.Join(dir, "exports", "b.rig.yml")}
	for _, path := range rigs {
		require.NoError(t, os.WriteFile(path, []byte(sourceRig), 0644))
	}
	notes := filepath.Join(dir, "notes.yml")
	require.NoError(t, os.WriteFile(notes, []byte("not: a rig\n"), 0644))

	_, stderr, err := runCLI(t, "fix", dir)
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "2 of 2 documents processed")

	for _, path := range rigs {
		rig, err := skeleton.Load(path)
		require.NoError(t, err)
		assert.NotNil(t, rig.Skeleton().ByName("Hips"), path)
	}
	data, err := os.ReadFile(notes)
	require.NoError(t, err)
	assert.Equal(t, "not: a rig\n", string(data))
}

func TestFixCommand_EmptyDirectory(t *testing.T) {
	_, _, err := runCLI(t, "fix", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rig documents")
}
