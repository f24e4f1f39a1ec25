package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vroidbones/vroidbones/internal/skeleton"
)

func add(t *testing.T, sk *skeleton.Skeleton, name string, parent *skeleton.Bone, head, tail r3.Vec) *skeleton.Bone {
	t.Helper()
	pid := skeleton.NoBone
	if parent != nil {
		pid = parent.ID
	}
	b, err := sk.AddBone(name, head, tail, pid)
	require.NoError(t, err)
	return b
}

func TestConnectChains_ExcludedChildSkipped(t *testing.T) {
	sk := skeleton.New()
	spine := add(t, sk, "Spine", nil, r3.Vec{Y: 1}, r3.Vec{Y: 1.1})
	skirt := add(t, sk, "SkirtFront", spine, r3.Vec{Y: 1, Z: 0.1}, r3.Vec{Y: 0.8, Z: 0.1})
	skirt.Connected = true
	chest := add(t, sk, "Chest", spine, r3.Vec{Y: 1.2}, r3.Vec{Y: 1.4})

	report := ConnectChains(sk, []string{"Skirt"}, nil)

	assert.Equal(t, chest.Head, spine.Tail)
	assert.True(t, chest.Connected)
	assert.Equal(t, spine.ID, chest.Parent)
	assert.False(t, skirt.Connected)
	assert.Equal(t, []string{"SkirtFront"}, report.Detached)
	assert.Contains(t, report.Connected, "Spine->Chest")
	require.NoError(t, sk.Validate())
}

func TestConnectChains_SingleChildAlwaysContinues(t *testing.T) {
	sk := skeleton.New()
	upper := add(t, sk, "UpperArm_L", nil, r3.Vec{X: 0.2}, r3.Vec{X: 0.3})
	lower := add(t, sk, "LowerArm_L", upper, r3.Vec{X: 0.45}, r3.Vec{X: 0.7})

	ConnectChains(sk, DefaultExclusions, nil)

	assert.Equal(t, r3.Vec{X: 0.45}, upper.Tail)
	assert.True(t, lower.Connected)
}

func TestConnectChains_AllChildrenExcluded(t *testing.T) {
	sk := skeleton.New()
	chest := add(t, sk, "Chest", nil, r3.Vec{Y: 1.2}, r3.Vec{Y: 1.3})
	bustL := add(t, sk, "Bust1_L", chest, r3.Vec{X: 0.1, Y: 1.3}, r3.Vec{X: 0.1, Y: 1.3, Z: 0.1})
	bustR := add(t, sk, "Bust1_R", chest, r3.Vec{X: -0.1, Y: 1.3}, r3.Vec{X: -0.1, Y: 1.3, Z: 0.1})
	tail := chest.Tail

	report := ConnectChains(sk, DefaultExclusions, nil)

	assert.Equal(t, tail, chest.Tail, "no continuation, tail untouched")
	assert.False(t, bustL.Connected)
	assert.False(t, bustR.Connected)
	assert.Equal(t, []string{"Chest"}, report.Skipped)
}

func TestConnectChains_HandNeverWelded(t *testing.T) {
	sk := skeleton.New()
	hand := add(t, sk, "Hand_L", nil, r3.Vec{X: 0.7}, r3.Vec{X: 0.75})
	index := add(t, sk, "Index1_L", hand, r3.Vec{X: 0.8}, r3.Vec{X: 0.83})
	add(t, sk, "Thumb1_L", hand, r3.Vec{X: 0.72, Z: 0.02}, r3.Vec{X: 0.74, Z: 0.04})

	ConnectChains(sk, DefaultExclusions, nil)

	assert.Equal(t, r3.Vec{X: 0.75}, hand.Tail)
	assert.False(t, index.Connected)
}

func TestConnectChains_RootShortened(t *testing.T) {
	sk := skeleton.New()
	root := add(t, sk, "Root", nil, r3.Vec{}, r3.Vec{Y: 1})
	hips := add(t, sk, "Hips", root, r3.Vec{Y: 0.9}, r3.Vec{Y: 1})

	report := ConnectChains(sk, DefaultExclusions, nil)

	assert.InDelta(t, 0.18, root.Tail.Y, 1e-9)
	assert.InDelta(t, 0.18, root.Length(), 1e-9)
	assert.False(t, hips.Connected)
	assert.Equal(t, []string{"Root"}, report.Shortened)
}

func TestConnectChains_RootStableAcrossPasses(t *testing.T) {
	sk := skeleton.New()
	root := add(t, sk, "Root", nil, r3.Vec{}, r3.Vec{Y: 1})
	add(t, sk, "Hips", root, r3.Vec{Y: 1}, r3.Vec{Y: 1.1})

	ConnectChains(sk, DefaultExclusions, nil)
	first := root.Tail
	ConnectChains(sk, DefaultExclusions, nil)
	ConnectChains(sk, DefaultExclusions, nil)

	assert.InDelta(t, 0.2, first.Y, 1e-9)
	assert.Equal(t, first, root.Tail)
}

func TestConnectChains_RootReleasesWeldedChild(t *testing.T) {
	sk := skeleton.New()
	root := add(t, sk, "Root", nil, r3.Vec{}, r3.Vec{Y: 1})
	hips := add(t, sk, "Hips", root, r3.Vec{Y: 1}, r3.Vec{Y: 1.1})
	hips.Connected = true

	report := ConnectChains(sk, DefaultExclusions, nil)

	assert.False(t, hips.Connected)
	assert.Equal(t, r3.Vec{Y: 1}, hips.Head)
	assert.Contains(t, report.Detached, "Hips")
	assertWelded(t, sk)
}

func TestConnectChains_SiblingOffMovedTailDetached(t *testing.T) {
	sk := skeleton.New()
	spine := add(t, sk, "Spine", nil, r3.Vec{Y: 1}, r3.Vec{Y: 1.1})
	chest := add(t, sk, "Chest", spine, r3.Vec{Y: 1.2}, r3.Vec{Y: 1.4})
	ribbon := add(t, sk, "Ribbon", spine, r3.Vec{Y: 1.1}, r3.Vec{Y: 1.1, Z: 0.1})
	ribbon.Connected = true

	report := ConnectChains(sk, nil, nil)

	assert.Equal(t, r3.Vec{Y: 1.2}, spine.Tail)
	assert.True(t, chest.Connected)
	assert.False(t, ribbon.Connected)
	assert.Equal(t, r3.Vec{Y: 1.1}, ribbon.Head)
	assert.Equal(t, []string{"Ribbon"}, report.Detached)
	assertWelded(t, sk)
}

// assertWelded checks that every connected bone starts on its parent's tail
func assertWelded(t *testing.T, sk *skeleton.Skeleton) {
	t.Helper()
	for _, b := range sk.Bones() {
		if !b.Connected {
			continue
		}
		p := sk.Parent(b)
		require.NotNil(t, p, "connected root %s", b.Name)
		assert.Equal(t, p.Tail, b.Head, "%s is connected but off %s's tail", b.Name, p.Name)
	}
}

func TestConnectChains_DecisionsIndependentOfPassOrder(t *testing.T) {
	sk := skeleton.New()
	a := add(t, sk, "A", nil, r3.Vec{}, r3.Vec{Y: 1})
	b := add(t, sk, "B", a, r3.Vec{Y: 2}, r3.Vec{Y: 3})
	c := add(t, sk, "C", b, r3.Vec{Y: 4}, r3.Vec{Y: 5})

	ConnectChains(sk, nil, nil)

	assert.Equal(t, r3.Vec{Y: 2}, a.Tail)
	assert.Equal(t, r3.Vec{Y: 4}, b.Tail)
	assert.Equal(t, r3.Vec{Y: 2}, b.Head)
	assert.True(t, b.Connected)
	assert.True(t, c.Connected)
	assertWelded(t, sk)
}

func TestIsExcluded(t *testing.T) {
	assert.True(t, IsExcluded("J_Sec_L_SkirtBack0_01", DefaultExclusions))
	assert.True(t, IsExcluded("HairJoint_4", DefaultExclusions))
	assert.False(t, IsExcluded("Chest", DefaultExclusions))
	assert.False(t, IsExcluded("Chest", []string{""}))
}
