package opw

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/robosculpt/kinematics/spatialmath"
)

func TestSolveToolpath(t *testing.T) {
	m := testKuka(t)

	home, ok := m.ForwardKinematics(JointPositions{0, -90, 90, 0, 90, 0})
	test.That(t, ok, test.ShouldBeTrue)
	tilted, ok := m.ForwardKinematics(JointPositions{30, -60, 45, 20, -45, 120})
	test.That(t, ok, test.ShouldBeTrue)
	unreachable := spatialmath.NewPoseFromPoint(r3.Vector{X: 10000, Z: 2000})

	solutions, err := m.SolveToolpath(context.Background(), []*spatialmath.Pose{home, unreachable, tilted})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solutions, test.ShouldHaveLength, 3)
	test.That(t, containsSolution(solutions[0], JointPositions{0, -90, 90, 0, 90, 0}), test.ShouldBeTrue)
	test.That(t, solutions[1], test.ShouldHaveLength, 0)
	test.That(t, containsSolution(solutions[2], JointPositions{30, -60, 45, 20, -45, 120}), test.ShouldBeTrue)
}

func TestSolveToolpathEmpty(t *testing.T) {
	m := testKuka(t)
	solutions, err := m.SolveToolpath(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solutions, test.ShouldHaveLength, 0)
}

func TestSolveToolpathReportsBadWaypoints(t *testing.T) {
	m := testKuka(t)

	home, ok := m.ForwardKinematics(JointPositions{0, -90, 90, 0, 90, 0})
	test.That(t, ok, test.ShouldBeTrue)

	scaled, err := spatialmath.NewRotationMatrix([]float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	test.That(t, err, test.ShouldBeNil)
	bad := spatialmath.NewPose(r3.Vector{X: 2000, Z: 2000}, scaled)

	_, err = m.SolveToolpath(context.Background(), []*spatialmath.Pose{home, bad, nil})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "waypoint 1")
	test.That(t, err.Error(), test.ShouldContainSubstring, "waypoint 2")
}
