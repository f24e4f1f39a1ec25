package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
)

func TestFindCommand(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)

	stdout, stderr, err := runCLI(t, "find", path, "LowerArm_L")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "J_Bip_L_LowerArm")
	assert.Contains(t, stdout, "Body (1)")
}

func TestFindCommand_Miss(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)

	_, stderr, err := runCLI(t, "find", path, "UperArm_L")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, rigerrors.ErrBoneNotFound)
	assert.Contains(t, stderr, "J_Bip_L_UpperArm", "canonical spelling should suggest the source bone")
}

func TestFindCommand_Unique(t *testing.T) {
	rig := `armature: A
bones:
  - {name: J_Bip_L_Index1, head: [0, 0, 0], tail: [0, 1, 0]}
  - {name: J_Sec_L_Index1, head: [0, 0, 0], tail: [0, 1, 0]}
`
	path := writeRig(t, "hands.rig.yml", rig)

	stdout, _, err := runCLI(t, "find", path, "Index1_L")
	require.NoError(t, err)
	assert.Contains(t, stdout, "J_Bip_L_Index1")

	_, stderr, err := runCLI(t, "find", path, "Index1_L", "--unique")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, rigerrors.ErrAmbiguousBone)
}

func TestInspectCommand(t *testing.T) {
	path := writeRig(t, "avatar.rig.yml", sourceRig)

	stdout, stderr, err := runCLI(t, "inspect", path)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "J_Bip_C_Hips")
	assert.Contains(t, stdout, "UpperArm_L", "fixed names are listed")
	assert.Contains(t, stdout, "2 verts")
	assert.Regexp(t, `Bones:\s+5`, stdout)
	assert.Regexp(t, `Bones to rename:\s+4`, stdout)
}

func TestInspectCommand_MissingFile(t *testing.T) {
	_, stderr, err := runCLI(t, "inspect", "missing.rig.yml")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, rigerrors.ErrUnreadableDocument)
}
