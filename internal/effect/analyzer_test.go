package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vroidbones/vroidbones/internal/skeleton"
)

func TestAnalyzer_HasEffect(t *testing.T) {
	sk := skeleton.New()
	hips, err := sk.AddBone("Hips", r3.Vec{}, r3.Vec{Y: 1}, skeleton.NoBone)
	require.NoError(t, err)
	empty, err := sk.AddBone("Empty", r3.Vec{}, r3.Vec{Y: 1}, hips.ID)
	require.NoError(t, err)
	missing, err := sk.AddBone("Missing", r3.Vec{}, r3.Vec{Y: 1}, hips.ID)
	require.NoError(t, err)
	elsewhere, err := sk.AddBone("Elsewhere", r3.Vec{}, r3.Vec{Y: 1}, hips.ID)
	require.NoError(t, err)

	rig := skeleton.NewRig("Armature", sk)
	face := skeleton.NewDeformTarget("Face", "Armature")
	face.SetGroup("Empty", nil)
	body := skeleton.NewDeformTarget("Body", "Armature")
	body.SetGroup("Hips", []int{0, 1})
	body.SetGroup("Empty", []int{})
	prop := skeleton.NewDeformTarget("Prop", "OtherArmature")
	prop.SetGroup("Elsewhere", []int{3})
	rig.AddDeformTarget(face)
	rig.AddDeformTarget(body)
	rig.AddDeformTarget(prop)

	a := New(rig)
	assert.True(t, a.HasEffect(hips))
	assert.False(t, a.HasEffect(empty))
	assert.False(t, a.HasEffect(missing))
	assert.False(t, a.HasEffect(elsewhere), "objects parented elsewhere do not count")

	assert.Equal(t, map[string]int{"Body": 2}, a.Influence(hips))
}

func TestAnalyzer_SeesCurrentState(t *testing.T) {
	sk := skeleton.New()
	b, err := sk.AddBone("Hips", r3.Vec{}, r3.Vec{Y: 1}, skeleton.NoBone)
	require.NoError(t, err)
	rig := skeleton.NewRig("Armature", sk)
	body := skeleton.NewDeformTarget("Body", "Armature")
	rig.AddDeformTarget(body)

	a := New(rig)
	assert.False(t, a.HasEffect(b))
	body.SetGroup("Hips", []int{9})
	assert.True(t, a.HasEffect(b))
}
