package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
)

func TestFind(t *testing.T) {
	rig := buildRig(t, "J_Bip_C_Hips", "J_Bip_L_LowerArm", "LowerArm_R", "J_Sec_L_LowerArm")
	sk := rig.Skeleton()

	tests := []struct {
		query string
		want  string
	}{
		{"LowerArm_R", "LowerArm_R"},
		{"LowerArm_L", "J_Bip_L_LowerArm"},
		{"J_Bip_C_Hips", "J_Bip_C_Hips"},
		{"Hips", "J_Bip_C_Hips"},
		{"Arm", ""},
		{"LowerArm_C", ""},
		{"Upper_Arm_L", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			b := Find(sk, tt.query)
			if tt.want == "" {
				assert.Nil(t, b)
				return
			}
			require.NotNil(t, b)
			assert.Equal(t, tt.want, b.Name)
		})
	}
}

func TestFindUnique_ReportsAmbiguity(t *testing.T) {
	rig := buildRig(t, "J_Bip_L_LowerArm", "J_Sec_L_LowerArm", "J_Bip_R_LowerArm")
	sk := rig.Skeleton()

	_, err := FindUnique(sk, "LowerArm_L")
	require.Error(t, err)
	assert.True(t, rigerrors.HasCode(err, rigerrors.ErrAmbiguousBone))

	b, err := FindUnique(sk, "LowerArm_R")
	require.NoError(t, err)
	assert.Equal(t, "J_Bip_R_LowerArm", b.Name)

	b, err = FindUnique(sk, "Spine")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestFindUnique_BareLeaf(t *testing.T) {
	rig := buildRig(t, "J_Bip_C_Neck", "J_Bip_C_Head", "J_Adj_C_Head", "J_Bip_C_UpperChest")
	sk := rig.Skeleton()

	b, err := FindUnique(sk, "Neck")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "J_Bip_C_Neck", b.Name)

	b, err = FindUnique(sk, "Chest")
	require.NoError(t, err)
	assert.Nil(t, b, "UpperChest is a different leaf")

	_, err = FindUnique(sk, "Head")
	assert.True(t, rigerrors.HasCode(err, rigerrors.ErrAmbiguousBone))
	assert.Equal(t, "J_Bip_C_Head", Find(sk, "Head").Name)
}

func TestSplitCanonical(t *testing.T) {
	leaf, side, ok := SplitCanonical("Index1_L")
	assert.True(t, ok)
	assert.Equal(t, "Index1", leaf)
	assert.Equal(t, SideLeft, side)

	_, _, ok = SplitCanonical("Index1")
	assert.False(t, ok)
	_, _, ok = SplitCanonical("a_b_L")
	assert.False(t, ok)
}
