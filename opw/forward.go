package opw

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/robosculpt/kinematics/spatialmath"
	"github.com/robosculpt/kinematics/utils"
)

// wristCenter computes the position of the spherical wrist center in the root
// frame from the first three academic joint angles in radians.
func (m *Model) wristCenter(ja [NumJoints]float64) r3.Vector {
	psi3 := math.Atan2(m.p.A2, m.p.C3)
	k := math.Hypot(m.p.A2, m.p.C3)

	cx1 := m.p.C2*math.Sin(ja[1]) + k*math.Sin(ja[1]+ja[2]+psi3) + m.p.A1
	cy1 := m.p.B
	cz1 := m.p.C2*math.Cos(ja[1]) + k*math.Cos(ja[1]+ja[2]+psi3)

	s0, c0 := math.Sincos(ja[0])
	return r3.Vector{
		X: cx1*c0 - cy1*s0,
		Y: cx1*s0 + cy1*c0,
		Z: cz1 + m.p.C1,
	}
}

// rotBaseToWrist is the rotation contributed by the first three joints, from
// the root frame to the wrist center frame.
func rotBaseToWrist(t1, t2, t3 float64) *spatialmath.RotationMatrix {
	s1, c1 := math.Sincos(t1)
	s2, c2 := math.Sincos(t2)
	s3, c3 := math.Sincos(t3)
	return spatialmath.RotationMatrixFromRows(
		r3.Vector{X: c1*c2*c3 - c1*s2*s3, Y: -s1, Z: c1*c2*s3 + c1*s2*c3},
		r3.Vector{X: s1*c2*c3 - s1*s2*s3, Y: c1, Z: s1*c2*s3 + s1*s2*c3},
		r3.Vector{X: -s2*c3 - c2*s3, Y: 0, Z: -s2*s3 + c2*c3},
	)
}

// rotWristToFlange is the rotation contributed by the spherical wrist, from the
// wrist center frame to the flange frame.
func rotWristToFlange(t4, t5, t6 float64) *spatialmath.RotationMatrix {
	s4, c4 := math.Sincos(t4)
	s5, c5 := math.Sincos(t5)
	s6, c6 := math.Sincos(t6)
	return spatialmath.RotationMatrixFromRows(
		r3.Vector{X: c4*c5*c6 - s4*s6, Y: -c4*c5*s6 - s4*c6, Z: c4 * s5},
		r3.Vector{X: s4*c5*c6 + c4*s6, Y: -s4*c5*s6 + c4*c6, Z: s4 * s5},
		r3.Vector{X: -s5 * c6, Y: s5 * s6, Z: c5},
	)
}

// ForwardKinematics maps joint angles in the vendor convention, in degrees, to
// the tool pose in the root frame. The returned bool is false when the
// configuration violates the joint limits or places the wrist center or the
// tool tip inside the base cylinder; no pose is computed in that case.
func (m *Model) ForwardKinematics(jp JointPositions) (*spatialmath.Pose, bool) {
	if !m.WithinJointLimits(jp) {
		m.logger.Debugf("joint angles %v are not within joint limits", jp)
		return nil, false
	}

	academic := m.ToAcademic(jp)
	var ja [NumJoints]float64
	for i, a := range academic {
		ja[i] = utils.DegToRad(a)
	}

	wc := m.wristCenter(ja)
	if m.CollidesWithBase(wc) {
		m.logger.Debugf("self-collision: wrist center (%.2f, %.2f, %.2f) is inside the robot base", wc.X, wc.Y, wc.Z)
		return nil, false
	}

	r0e := spatialmath.MatMul(rotBaseToWrist(ja[0], ja[1], ja[2]), rotWristToFlange(ja[3], ja[4], ja[5]))

	tip := wc.Add(r0e.Mul(r3.Vector{Z: m.p.C4})).Add(r0e.Mul(m.p.ToolOffset))
	if m.CollidesWithBase(tip) {
		m.logger.Debugf("self-collision: tool tip (%.2f, %.2f, %.2f) is inside the robot base", tip.X, tip.Y, tip.Z)
		return nil, false
	}

	return roundPose(spatialmath.NewPose(tip, r0e)), true
}

// roundPose rounds every entry of the pose to the reporting precision so that
// repeated evaluations are bit-for-bit reproducible.
func roundPose(p *spatialmath.Pose) *spatialmath.Pose {
	r := p.Orientation()
	rounded := spatialmath.RotationMatrixFromRows(
		roundVector(r.Row(0)),
		roundVector(r.Row(1)),
		roundVector(r.Row(2)),
	)
	return spatialmath.NewPose(roundVector(p.Point()), rounded)
}

func roundVector(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: utils.RoundTo(v.X, precision),
		Y: utils.RoundTo(v.Y, precision),
		Z: utils.RoundTo(v.Z, precision),
	}
}
