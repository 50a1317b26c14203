package opw

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/robosculpt/kinematics/spatialmath"
	"github.com/robosculpt/kinematics/utils"
)

// wristSingularityTol is the angle in radians under which joint 5 is treated as
// being at the wrist singularity, where axes 4 and 6 are co-linear.
const wristSingularityTol = 1e-6

// orthonormalityTol bounds how far a target rotation may be from a proper
// rotation matrix. It is loose enough to accept poses that were round-tripped
// through the 5-decimal reporting precision of ForwardKinematics.
const orthonormalityTol = 1e-4

// InverseKinematics returns every joint configuration, in the vendor convention
// and degrees, that reaches the target pose, filtered for reachability,
// numerical validity and joint limits. An empty slice means the target is
// unreachable; that is an expected outcome near the workspace boundary, not an
// error. An error is returned only for a malformed target: a nil pose or a
// rotation that is not orthonormal.
//
// The self-collision pre-check here tests the raw target position against the
// base cylinder, while ForwardKinematics checks the wrist center and the tool
// tip. The asymmetry is kept on purpose: it is the behavior the surrounding
// motion pipeline was tuned against.
func (m *Model) InverseKinematics(target *spatialmath.Pose) ([]JointPositions, error) {
	if target == nil {
		return nil, errors.New("target pose must not be nil")
	}
	r0e := target.Orientation()
	if oErr := r0e.OrthonormalityError(); oErr > orthonormalityTol {
		return nil, errors.Errorf("target rotation is not orthonormal (deviation %.2e)", oErr)
	}

	pt := target.Point()
	if m.CollidesWithBase(pt) {
		m.logger.Debugf("self-collision: target (%.2f, %.2f, %.2f) is inside the robot base", pt.X, pt.Y, pt.Z)
		return nil, nil
	}

	// Recover the wrist center by backing out the tool offset and the flange
	// length c4 along the tool Z axis, both rotated into the root frame.
	wc := pt.Sub(r0e.Mul(m.p.ToolOffset)).Sub(r0e.Mul(r3.Vector{Z: m.p.C4}))

	positional := m.solvePosition(wc)
	var candidates [][NumJoints]float64
	for _, t := range positional {
		candidates = append(candidates, m.solveWrist(t, r0e)...)
	}
	if len(candidates) == 0 {
		m.logger.Debugf("point (%.2f, %.2f, %.2f) is out of the reachable domain", pt.X, pt.Y, pt.Z)
		return nil, nil
	}

	var solutions []JointPositions
	for _, cand := range candidates {
		var deg [NumJoints]float64
		for i, a := range cand {
			deg[i] = utils.RadToDeg(a)
		}
		jp := m.ToVendor(deg)
		if !m.WithinJointLimits(jp) {
			continue
		}
		for i := range jp {
			jp[i] = utils.RoundTo(jp[i], precision)
		}
		solutions = append(solutions, jp)
	}
	if len(solutions) == 0 {
		m.logger.Debugf("all joint solutions for (%.2f, %.2f, %.2f) exceed the configured joint limits", pt.X, pt.Y, pt.Z)
	}
	return solutions, nil
}

// solvePosition enumerates the closed-form candidates for the first three
// academic joint angles, in radians, from the wrist center position. Two
// shoulder branches times two elbow branches give up to four candidates;
// branches whose acos argument leaves [-1, 1] evaluate to NaN and are dropped.
func (m *Model) solvePosition(wc r3.Vector) [][3]float64 {
	planarSq := wc.X*wc.X + wc.Y*wc.Y
	if planarSq < m.p.B*m.p.B {
		// the vertical line through the wrist center runs inside the shoulder
		// offset cylinder of radius b; no positional solution exists
		return nil
	}

	nx1 := math.Sqrt(planarSq-m.p.B*m.p.B) - m.p.A1
	dz := wc.Z - m.p.C1
	s1Sq := nx1*nx1 + dz*dz
	s2Sq := (nx1+2*m.p.A1)*(nx1+2*m.p.A1) + dz*dz
	k := math.Hypot(m.p.A2, m.p.C3)
	psi3 := math.Atan2(m.p.A2, m.p.C3)

	theta1a := normalizeAngle(math.Atan2(wc.Y, wc.X) - math.Atan2(m.p.B, nx1+m.p.A1))
	theta1b := normalizeAngle(math.Atan2(wc.Y, wc.X) + math.Atan2(m.p.B, nx1+m.p.A1) - math.Pi)

	c2 := m.p.C2
	value1 := (s1Sq + c2*c2 - k*k) / (2 * math.Sqrt(s1Sq) * c2)
	value2 := (s2Sq + c2*c2 - k*k) / (2 * math.Sqrt(s2Sq) * c2)
	value3a := (s1Sq - c2*c2 - k*k) / (2 * c2 * k)
	value3b := (s2Sq - c2*c2 - k*k) / (2 * c2 * k)

	theta1 := [4]float64{theta1a, theta1a, theta1b, theta1b}
	theta2 := [4]float64{
		-math.Acos(value1) + math.Atan2(nx1, dz),
		+math.Acos(value1) + math.Atan2(nx1, dz),
		-math.Acos(value2) - math.Atan2(nx1+2*m.p.A1, dz),
		+math.Acos(value2) - math.Atan2(nx1+2*m.p.A1, dz),
	}
	theta3 := [4]float64{
		+math.Acos(value3a) - psi3,
		-math.Acos(value3a) - psi3,
		+math.Acos(value3b) - psi3,
		-math.Acos(value3b) - psi3,
	}

	var out [][3]float64
	for i := 0; i < 4; i++ {
		if math.IsNaN(theta1[i]) || math.IsNaN(theta2[i]) || math.IsNaN(theta3[i]) {
			continue
		}
		out = append(out, [3]float64{theta1[i], theta2[i], theta3[i]})
	}
	return out
}

// solveWrist derives the two wrist solutions (joints 4 to 6, academic radians)
// for one positional candidate. At the wrist singularity the general formulas
// for joints 4 and 6 are indeterminate: joint 4 is fixed to zero and joint 6 is
// read directly off the residual rotation, with the 2*pi-shifted twin as the
// second branch.
func (m *Model) solveWrist(t [3]float64, r0e *spatialmath.RotationMatrix) [][NumJoints]float64 {
	s1, c1 := math.Sincos(t[0])
	s23, c23 := math.Sincos(t[1] + t[2])

	e11, e12, e13 := r0e.At(0, 0), r0e.At(0, 1), r0e.At(0, 2)
	e21, e22, e23 := r0e.At(1, 0), r0e.At(1, 1), r0e.At(1, 2)
	e31, e32, e33 := r0e.At(2, 0), r0e.At(2, 1), r0e.At(2, 2)

	// projection of the tool Z axis onto wrist axis 5; the max() guards the
	// sqrt against numerical overshoot of |mProj| past 1
	mProj := e13*s23*c1 + e23*s23*s1 + e33*c23
	theta5 := math.Atan2(math.Sqrt(math.Max(1-mProj*mProj, 0)), mProj)

	var theta4a, theta4b, theta6a, theta6b float64
	if math.Abs(theta5) < wristSingularityTol {
		theta4a, theta4b = 0, 0
		r0c := rotBaseToWrist(t[0], t[1], t[2])
		rce := spatialmath.MatMul(r0c.Transpose(), r0e)
		theta6a = math.Atan2(rce.At(1, 0), rce.At(0, 0))
		theta6b = theta6a - 2*math.Pi
	} else {
		theta4a = math.Atan2(e23*c1-e13*s1, e13*c23*c1+e23*c23*s1-e33*s23)
		theta4b = normalizeAngle(theta4a + math.Pi)
		theta6a = math.Atan2(e12*s23*c1+e22*s23*s1+e32*c23, -e11*s23*c1-e21*s23*s1-e31*c23)
		theta6b = normalizeAngle(theta6a - math.Pi)
	}

	return [][NumJoints]float64{
		{t[0], t[1], t[2], theta4a, theta5, theta6a},
		{t[0], t[1], t[2], theta4b, -theta5, theta6b},
	}
}

// normalizeAngle wraps an angle in radians to [-pi, pi).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
