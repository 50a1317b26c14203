// Package spatialmath defines spatial mathematical operations: rotations, rigid
// transforms in 3D space, and conversions between their representations.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// EulerOrder selects the axis sequence for Euler angle conversions. The letters
// name the axis sequence in application order, i.e. OrderZYX means
// R = Rz(first) * Ry(second) * Rx(third).
type EulerOrder string

// Supported Euler axis sequences. OrderZYX matches the A/B/C angles reported by
// KUKA controllers; OrderZYZ is the convention of the spherical wrist
// decomposition.
const (
	OrderZYX = EulerOrder("ZYX")
	OrderXYZ = EulerOrder("XYZ")
	OrderZYZ = EulerOrder("ZYZ")
)

// eulerSingularityTol is the threshold under which the middle Euler angle is
// considered to be at the representation's singularity.
const eulerSingularityTol = 1e-6

// RotationMatrix is a 3x3 rotation matrix in row major order.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates a rotation matrix from a slice of 9 floats in row
// major order.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("need 9 numbers to create a rotation matrix, got %d", len(m))
	}
	var mat [9]float64
	copy(mat[:], m)
	return &RotationMatrix{mat}, nil
}

// NewZeroRotation returns the identity rotation.
func NewZeroRotation() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// RotationMatrixFromRows builds a rotation matrix from its three row vectors.
func RotationMatrixFromRows(r0, r1, r2 r3.Vector) *RotationMatrix {
	return &RotationMatrix{[9]float64{
		r0.X, r0.Y, r0.Z,
		r1.X, r1.Y, r1.Z,
		r2.X, r2.Y, r2.Z,
	}}
}

// NewRotationMatrixFromEuler builds a rotation from three angles in radians,
// applied about the axes named by the order, left to right.
func NewRotationMatrixFromEuler(order EulerOrder, first, second, third float64) (*RotationMatrix, error) {
	if len(order) != 3 {
		return nil, errors.Errorf("unsupported euler order %q", order)
	}
	angles := []float64{first, second, third}
	out := NewZeroRotation()
	for i, axis := range string(order) {
		var basic *RotationMatrix
		switch axis {
		case 'X':
			basic = rotX(angles[i])
		case 'Y':
			basic = rotY(angles[i])
		case 'Z':
			basic = rotZ(angles[i])
		default:
			return nil, errors.Errorf("unsupported euler order %q", order)
		}
		out = MatMul(out, basic)
	}
	return out, nil
}

func rotX(a float64) *RotationMatrix {
	s, c := math.Sincos(a)
	return &RotationMatrix{[9]float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}}
}

func rotY(a float64) *RotationMatrix {
	s, c := math.Sincos(a)
	return &RotationMatrix{[9]float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}}
}

func rotZ(a float64) *RotationMatrix {
	s, c := math.Sincos(a)
	return &RotationMatrix{[9]float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}}
}

// At returns the value of the matrix at the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[row*3+col]
}

// Row returns the a vector representing a particular row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[row*3], Y: rm.mat[row*3+1], Z: rm.mat[row*3+2]}
}

// Col returns the a vector representing a particular column.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[3+col], Z: rm.mat[6+col]}
}

// Mul returns the product of the rotation matrix with an r3 vector.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.mat[0]*v.X + rm.mat[1]*v.Y + rm.mat[2]*v.Z,
		Y: rm.mat[3]*v.X + rm.mat[4]*v.Y + rm.mat[5]*v.Z,
		Z: rm.mat[6]*v.X + rm.mat[7]*v.Y + rm.mat[8]*v.Z,
	}
}

// MatMul returns the product a*b of two rotation matrices.
func MatMul(a, b *RotationMatrix) *RotationMatrix {
	var mat [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			mat[r*3+c] = a.mat[r*3]*b.mat[c] + a.mat[r*3+1]*b.mat[3+c] + a.mat[r*3+2]*b.mat[6+c]
		}
	}
	return &RotationMatrix{mat}
}

// Transpose returns the transpose of the rotation matrix, which for a valid
// rotation is also its inverse.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	m := rm.mat
	return &RotationMatrix{[9]float64{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}}
}

// Determinant returns the determinant of the matrix; +1 for a proper rotation.
func (rm *RotationMatrix) Determinant() float64 {
	m := rm.mat
	return m[0]*(m[4]*m[8]-m[5]*m[7]) - m[1]*(m[3]*m[8]-m[5]*m[6]) + m[2]*(m[3]*m[7]-m[4]*m[6])
}

// OrthonormalityError measures how far the matrix is from a proper rotation: the
// largest absolute deviation of R*R^T from identity, or of the determinant from +1.
func (rm *RotationMatrix) OrthonormalityError() float64 {
	prod := MatMul(rm, rm.Transpose())
	worst := math.Abs(rm.Determinant() - 1)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			expect := 0.0
			if r == c {
				expect = 1.0
			}
			if d := math.Abs(prod.At(r, c) - expect); d > worst {
				worst = d
			}
		}
	}
	return worst
}

// Quaternion returns the quaternion representation of the rotation matrix.
func (rm *RotationMatrix) Quaternion() quat.Number {
	var q quat.Number
	m := rm.mat

	// converting from a rotation matrix to a quaternion is a numerically
	// delicate operation; this branches on the trace to stay well conditioned
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m[7] - m[5]) * s,
			Jmag: (m[2] - m[6]) * s,
			Kmag: (m[3] - m[1]) * s,
		}
	case m[0] > m[4] && m[0] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[0]-m[4]-m[8])
		q = quat.Number{
			Real: (m[7] - m[5]) / s,
			Imag: 0.25 * s,
			Jmag: (m[1] + m[3]) / s,
			Kmag: (m[2] + m[6]) / s,
		}
	case m[4] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[4]-m[0]-m[8])
		q = quat.Number{
			Real: (m[2] - m[6]) / s,
			Imag: (m[1] + m[3]) / s,
			Jmag: 0.25 * s,
			Kmag: (m[5] + m[7]) / s,
		}
	default:
		s := 2.0 * math.Sqrt(1.0+m[8]-m[0]-m[4])
		q = quat.Number{
			Real: (m[3] - m[1]) / s,
			Imag: (m[2] + m[6]) / s,
			Jmag: (m[5] + m[7]) / s,
			Kmag: 0.25 * s,
		}
	}
	return q
}

// EulerAngles extracts three angles in radians such that
// NewRotationMatrixFromEuler with the same order reproduces the matrix. At the
// representation's singularity only the sum or difference of the first and
// third angles is observable; the third angle is fixed to zero there.
func (rm *RotationMatrix) EulerAngles(order EulerOrder) (first, second, third float64, err error) {
	m := rm.mat
	switch order {
	case OrderZYX:
		sy := math.Hypot(m[0], m[3])
		if sy < eulerSingularityTol {
			first = math.Atan2(-m[5], m[4])
			second = math.Atan2(-m[6], sy)
			third = 0
		} else {
			first = math.Atan2(m[3], m[0])
			second = math.Atan2(-m[6], sy)
			third = math.Atan2(m[7], m[8])
		}
	case OrderXYZ:
		sy := math.Hypot(m[0], m[1])
		if sy < eulerSingularityTol {
			first = math.Atan2(m[7], m[4])
			second = math.Atan2(m[2], sy)
			third = 0
		} else {
			first = math.Atan2(-m[5], m[8])
			second = math.Atan2(m[2], sy)
			third = math.Atan2(-m[1], m[0])
		}
	case OrderZYZ:
		sy := math.Hypot(m[2], m[5])
		if sy < eulerSingularityTol {
			first = math.Atan2(m[3], m[0])
			second = math.Atan2(sy, m[8])
			third = 0
		} else {
			first = math.Atan2(m[5], m[2])
			second = math.Atan2(sy, m[8])
			third = math.Atan2(m[7], -m[6])
		}
	default:
		return 0, 0, 0, errors.Errorf("unsupported euler order %q", order)
	}
	return first, second, third, nil
}

// OrientationDistance returns the angle in radians of the rotation taking a to b.
func OrientationDistance(a, b *RotationMatrix) float64 {
	qa, qb := a.Quaternion(), b.Quaternion()
	dot := qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag
	dot = math.Min(math.Abs(dot), 1)
	return 2 * math.Acos(dot)
}

// OrientationAlmostEqual returns whether two rotations differ by less than the
// given angle in radians.
func OrientationAlmostEqual(a, b *RotationMatrix, tolerance float64) bool {
	return OrientationDistance(a, b) < tolerance
}
