package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// homogeneousRowTol is how far the bottom row of a supplied 4x4 matrix may
// deviate from (0, 0, 0, 1) before the matrix is rejected as non-rigid.
const homogeneousRowTol = 1e-9

// Pose represents a rigid transform in the 3D world: a rotation together with a
// translation in millimeters.
type Pose struct {
	rotation    *RotationMatrix
	translation r3.Vector
}

// NewPose takes in a point and a rotation and returns a Pose.
func NewPose(point r3.Vector, rotation *RotationMatrix) *Pose {
	return &Pose{rotation: rotation, translation: point}
}

// NewZeroPose returns a pose with no translation or rotation.
func NewZeroPose() *Pose {
	return &Pose{rotation: NewZeroRotation()}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a pure
// translation with an identity rotation.
func NewPoseFromPoint(point r3.Vector) *Pose {
	return &Pose{rotation: NewZeroRotation(), translation: point}
}

// Point returns the translation part of the pose.
func (p *Pose) Point() r3.Vector {
	return p.translation
}

// Orientation returns the rotation part of the pose.
func (p *Pose) Orientation() *RotationMatrix {
	return p.rotation
}

// TransformPoint applies the pose to a point: rotation followed by translation.
func (p *Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return p.rotation.Mul(pt).Add(p.translation)
}

// Compose treats Poses as functions A(x) and B(x) and returns the pose that
// equals A(B(x)).
func Compose(a, b *Pose) *Pose {
	return &Pose{
		rotation:    MatMul(a.rotation, b.rotation),
		translation: a.TransformPoint(b.translation),
	}
}

// PoseInverse returns the pose that undoes the given pose, so that
// Compose(p, PoseInverse(p)) is the zero pose.
func PoseInverse(p *Pose) *Pose {
	rt := p.rotation.Transpose()
	return &Pose{
		rotation:    rt,
		translation: rt.Mul(p.translation).Mul(-1),
	}
}

// Homogeneous returns the pose as a 4x4 homogeneous transformation matrix.
func (p *Pose) Homogeneous() *mat.Dense {
	r, t := p.rotation, p.translation
	return mat.NewDense(4, 4, []float64{
		r.At(0, 0), r.At(0, 1), r.At(0, 2), t.X,
		r.At(1, 0), r.At(1, 1), r.At(1, 2), t.Y,
		r.At(2, 0), r.At(2, 1), r.At(2, 2), t.Z,
		0, 0, 0, 1,
	})
}

// NewPoseFromHomogeneous builds a pose from a 4x4 homogeneous transformation
// matrix. The bottom row must be (0, 0, 0, 1); the rotation block is not
// checked for orthonormality here, that is up to the consumer of the pose.
func NewPoseFromHomogeneous(m mat.Matrix) (*Pose, error) {
	rows, cols := m.Dims()
	if rows != 4 || cols != 4 {
		return nil, errors.Errorf("homogeneous transformation matrix must be 4x4, got %dx%d", rows, cols)
	}
	for c, expect := range []float64{0, 0, 0, 1} {
		if diff := m.At(3, c) - expect; diff > homogeneousRowTol || diff < -homogeneousRowTol {
			return nil, errors.New("bottom row of a homogeneous transformation matrix must be (0, 0, 0, 1)")
		}
	}
	rotation := RotationMatrixFromRows(
		r3.Vector{X: m.At(0, 0), Y: m.At(0, 1), Z: m.At(0, 2)},
		r3.Vector{X: m.At(1, 0), Y: m.At(1, 1), Z: m.At(1, 2)},
		r3.Vector{X: m.At(2, 0), Y: m.At(2, 1), Z: m.At(2, 2)},
	)
	return &Pose{
		rotation:    rotation,
		translation: r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)},
	}, nil
}

// PoseAlmostCoincident checks whether two poses are within the given linear
// (mm) and angular (radians) tolerances of one another.
func PoseAlmostCoincident(a, b *Pose, linearTol, angularTol float64) bool {
	return a.translation.Sub(b.translation).Norm() < linearTol &&
		OrientationAlmostEqual(a.rotation, b.rotation, angularTol)
}
