package opw

import (
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/robosculpt/kinematics/spatialmath"
	"github.com/robosculpt/kinematics/utils"
)

// jointAngleTol is the worst joint angle drift, in degrees, tolerated across a
// forward/inverse round trip through the 5-decimal pose rounding.
const jointAngleTol = 0.02

func jointsAlmostEqual(a, b JointPositions) bool {
	for i := range a {
		if !utils.Float64AlmostEqual(a[i], b[i], jointAngleTol) {
			return false
		}
	}
	return true
}

func containsSolution(solutions []JointPositions, want JointPositions) bool {
	for _, s := range solutions {
		if jointsAlmostEqual(s, want) {
			return true
		}
	}
	return false
}

func TestInverseKinematicsKnownPose(t *testing.T) {
	m := testKuka(t)
	jp := JointPositions{0, -90, 90, 0, 90, 0}
	target, ok := m.ForwardKinematics(jp)
	test.That(t, ok, test.ShouldBeTrue)

	solutions, err := m.InverseKinematics(target)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(solutions), test.ShouldBeGreaterThan, 0)
	test.That(t, containsSolution(solutions, jp), test.ShouldBeTrue)
}

func TestInverseKinematicsSolutionsReachTarget(t *testing.T) {
	m := testKuka(t)
	for _, jp := range []JointPositions{
		{0, -90, 90, 0, 90, 0},
		{30, -60, 45, 20, -45, 120},
		{-120, -100, 120, 160, 80, -160},
	} {
		target, ok := m.ForwardKinematics(jp)
		test.That(t, ok, test.ShouldBeTrue)

		solutions, err := m.InverseKinematics(target)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(solutions), test.ShouldBeGreaterThan, 0)
		test.That(t, containsSolution(solutions, jp), test.ShouldBeTrue)
		for _, sol := range solutions {
			pose, ok := m.ForwardKinematics(sol)
			test.That(t, ok, test.ShouldBeTrue)
			test.That(t, spatialmath.PoseAlmostCoincident(pose, target, 0.1, 1e-3), test.ShouldBeTrue)
		}
	}
}

func TestInverseKinematicsWristSingularity(t *testing.T) {
	m := testKuka(t)
	jp := JointPositions{0, -90, 90, 0, 0, 0}
	target, ok := m.ForwardKinematics(jp)
	test.That(t, ok, test.ShouldBeTrue)

	solutions, err := m.InverseKinematics(target)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(solutions), test.ShouldBeGreaterThan, 0)

	// at the singularity joint 4 is pinned to zero and only the sum of joints 4
	// and 6 is determined; the zeroed branch must recover the seed configuration
	test.That(t, containsSolution(solutions, jp), test.ShouldBeTrue)
	for _, sol := range solutions {
		pose, ok := m.ForwardKinematics(sol)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, spatialmath.PoseAlmostCoincident(pose, target, 0.1, 1e-3), test.ShouldBeTrue)
	}
}

func TestInverseKinematicsWristBranchesPrincipal(t *testing.T) {
	m := testKuka(t)
	jp := JointPositions{30, -60, 45, 20, -45, 120}
	target, ok := m.ForwardKinematics(jp)
	test.That(t, ok, test.ShouldBeTrue)

	solutions, err := m.InverseKinematics(target)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(solutions), test.ShouldBeGreaterThan, 0)

	// away from the wrist singularity, every wrist branch must come back in its
	// principal range, not as a 360-degree-shifted twin
	for _, sol := range solutions {
		test.That(t, sol[3], test.ShouldBeBetweenOrEqual, -180, 180)
		test.That(t, sol[5], test.ShouldBeBetweenOrEqual, -180, 180)
	}
	test.That(t, containsSolution(solutions, jp), test.ShouldBeTrue)
}

func TestInverseKinematicsUnreachable(t *testing.T) {
	m := testKuka(t)

	// far outside the sphere the arm can span
	solutions, err := m.InverseKinematics(spatialmath.NewPoseFromPoint(r3.Vector{X: 10000, Z: 2000}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solutions, test.ShouldHaveLength, 0)
}

func TestInverseKinematicsBaseCheck(t *testing.T) {
	_, p, err := UnmarshalParametersJSON(kukaKR340R3300JSON)
	test.That(t, err, test.ShouldBeNil)
	p.BaseRadius = 500
	m, err := NewModel("kuka with base", p, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	solutions, err := m.InverseKinematics(spatialmath.NewPoseFromPoint(r3.Vector{X: 100, Z: 500}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solutions, test.ShouldHaveLength, 0)
}

func TestInverseKinematicsMalformedTarget(t *testing.T) {
	m := testKuka(t)

	_, err := m.InverseKinematics(nil)
	test.That(t, err, test.ShouldNotBeNil)

	scaled, err := spatialmath.NewRotationMatrix([]float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	test.That(t, err, test.ShouldBeNil)
	_, err = m.InverseKinematics(spatialmath.NewPose(r3.Vector{X: 2000, Z: 2000}, scaled))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "orthonormal")
}

func TestInverseKinematicsRandomRoundTrip(t *testing.T) {
	m := testKuka(t)
	r := rand.New(rand.NewSource(42))

	sample := func(min, max float64) float64 {
		return min + r.Float64()*(max-min)
	}

	for i := 0; i < 75; i++ {
		// joints 1, 4 and 6 stay inside a single turn so the seed configuration
		// is recoverable; joint 5 keeps clear of the wrist singularity
		jp := JointPositions{
			sample(-179, 179),
			sample(-130, 20),
			sample(-100, 144),
			sample(-179, 179),
			sample(5, 120),
			sample(-179, 179),
		}
		if r.Intn(2) == 0 {
			jp[4] = -jp[4]
		}

		target, ok := m.ForwardKinematics(jp)
		test.That(t, ok, test.ShouldBeTrue)

		solutions, err := m.InverseKinematics(target)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, containsSolution(solutions, jp), test.ShouldBeTrue)
	}
}
