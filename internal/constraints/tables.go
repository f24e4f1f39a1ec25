package constraints

import "github.com/vroidbones/vroidbones/internal/skeleton"

// hinge150 is the 150 degree hinge clamp of the limb IK chains, in radians
const hinge150 = 2.61799

// ikSpec configures one limb IK chain
type ikSpec struct {
	bone        string
	chainLength int
	locked      skeleton.AxisSet
	limits      skeleton.Limits
}

// ikTable lists the limb-end bones. Elbows hinge about Z and mirror between
// sides; knees hinge about X and bend the same way on both sides.
var ikTable = []ikSpec{
	{
		bone:        "LowerArm_L",
		chainLength: 2,
		locked:      skeleton.NewAxisSet(skeleton.AxisX, skeleton.AxisY),
		limits:      skeleton.Limits{skeleton.AxisZ: {Min: -hinge150, Max: 0}},
	},
	{
		bone:        "LowerArm_R",
		chainLength: 2,
		locked:      skeleton.NewAxisSet(skeleton.AxisX, skeleton.AxisY),
		limits:      skeleton.Limits{skeleton.AxisZ: {Min: 0, Max: hinge150}},
	},
	{
		bone:        "LowerLeg_L",
		chainLength: 2,
		locked:      skeleton.NewAxisSet(skeleton.AxisY, skeleton.AxisZ),
		limits:      skeleton.Limits{skeleton.AxisX: {Min: -hinge150, Max: 0}},
	},
	{
		bone:        "LowerLeg_R",
		chainLength: 2,
		locked:      skeleton.NewAxisSet(skeleton.AxisY, skeleton.AxisZ),
		limits:      skeleton.Limits{skeleton.AxisX: {Min: -hinge150, Max: 0}},
	},
}

// limit builds a full three-axis limit from literal bounds
func limit(xMin, xMax, yMin, yMax, zMin, zMax float64) skeleton.Limits {
	return skeleton.Limits{
		skeleton.AxisX: {Min: xMin, Max: xMax},
		skeleton.AxisY: {Min: yMin, Max: yMax},
		skeleton.AxisZ: {Min: zMin, Max: zMax},
	}
}

// rotationLimitTable holds the per-bone rotation bounds in local space, radians
var rotationLimitTable = []struct {
	bone   string
	limits skeleton.Limits
}{
	{"Spine", limit(-0.523599, 0.523599, -0.349066, 0.349066, -0.349066, 0.349066)},
	{"Chest", limit(-0.349066, 0.349066, -0.349066, 0.349066, -0.261799, 0.261799)},
	{"UpperChest", limit(-0.261799, 0.261799, -0.261799, 0.261799, -0.174533, 0.174533)},
	{"Neck", limit(-0.698132, 0.698132, -0.785398, 0.785398, -0.523599, 0.523599)},
	{"Head", limit(-0.698132, 0.698132, -1.047198, 1.047198, -0.610865, 0.610865)},
	{"UpperLeg_L", limit(-2.094395, 0.785398, -0.785398, 0.785398, -0.785398, 1.047198)},
	{"UpperLeg_R", limit(-2.094395, 0.785398, -0.785398, 0.785398, -1.047198, 0.785398)},
	{"UpperArm_L", limit(-1.570796, 1.570796, -1.570796, 1.570796, -1.396263, 1.570796)},
	{"UpperArm_R", limit(-1.570796, 1.570796, -1.570796, 1.570796, -1.570796, 1.396263)},
	{"Shoulder_L", limit(-0.261799, 0.261799, -0.174533, 0.174533, -0.261799, 0.523599)},
	{"Shoulder_R", limit(-0.261799, 0.261799, -0.174533, 0.174533, -0.523599, 0.261799)},
	{"Foot_L", limit(-0.785398, 0.872665, -0.349066, 0.349066, -0.261799, 0.261799)},
	{"Foot_R", limit(-0.785398, 0.872665, -0.349066, 0.349066, -0.261799, 0.261799)},
	{"Thumb1_L", limit(-0.349066, 0.349066, -0.523599, 0.523599, -0.785398, 0.523599)},
	{"Thumb1_R", limit(-0.349066, 0.349066, -0.523599, 0.523599, -0.523599, 0.785398)},
}

// fingerProximalLimits is shared by the first joint of every non-thumb
// finger: flexion about X only, no spread or twist
var fingerProximalLimits = limit(-1.570796, 0.174533, 0, 0, 0, 0)

// Fingers lists the finger names of the humanoid hand, thumb first
var Fingers = []string{"Thumb", "Index", "Middle", "Ring", "Little"}

// Sides lists the mirrored side tags
var Sides = []string{"L", "R"}

const thumb = "Thumb"
