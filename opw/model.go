// Package opw implements closed-form forward and inverse kinematics for
// six-axis industrial manipulators with an ortho-parallel basis and a spherical
// wrist, following the decomposition in Brandstötter, Angerer and Hofbaur, "An
// Analytical Solution of the Inverse Kinematics Problem of Industrial Serial
// Manipulators with an Ortho-parallel Basis and a Spherical Wrist" (2014).
package opw

import (
	"fmt"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robosculpt/kinematics/utils"
)

// NumJoints is the number of axes of the solved manipulator.
const NumJoints = 6

// precision is the number of decimals used when rounding reported angles and
// poses, and when testing candidate angles against joint limits. Rounding keeps
// boundary configurations from failing limit checks over floating point noise.
const precision = 5

// Limit represents the minimum and maximum allowable rotation of a joint, in
// degrees, vendor convention.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Joint describes one axis: the sign and zero offset mapping the academic
// angle convention of the decomposition onto the vendor convention reported by
// the robot controller, and the travel limits in the vendor convention.
type Joint struct {
	Sign   int
	Offset float64
	Limit  Limit
}

// JointPositions holds one angle per axis A1..A6, in degrees, vendor convention.
type JointPositions [NumJoints]float64

// String formats the joint positions the way robot programs name them.
func (jp JointPositions) String() string {
	parts := make([]string, 0, NumJoints)
	for i, v := range jp {
		parts = append(parts, fmt.Sprintf("A%d: %.5f", i+1, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Parameters is the immutable description of one manipulator: link geometry,
// the base exclusion cylinder, the tool offset, and the per-joint convention
// corrections and travel limits.
type Parameters struct {
	// Link geometry per the Brandstötter decomposition, in millimeters.
	A1, A2, B, C1, C2, C3, C4 float64

	// BaseRadius is the radius in millimeters of the cylinder of height C1
	// around the root Z axis that stands in for the physical base housing.
	BaseRadius float64

	// ToolOffset is the offset from the flange null frame to the tool tip,
	// expressed in the tool frame, in millimeters.
	ToolOffset r3.Vector

	// Joints holds the convention correction and travel range per axis.
	Joints [NumJoints]Joint
}

// Validate checks the parameters for structural faults. All faults found are
// combined into the returned error.
func (p Parameters) Validate() error {
	var err error
	for i, j := range p.Joints {
		if j.Sign != 1 && j.Sign != -1 {
			err = multierr.Combine(err, errors.Errorf("joint A%d: sign must be +1 or -1, got %d", i+1, j.Sign))
		}
		if j.Limit.Min > j.Limit.Max {
			err = multierr.Combine(err, errors.Errorf("joint A%d: limit min %f exceeds max %f", i+1, j.Limit.Min, j.Limit.Max))
		}
	}
	if p.BaseRadius < 0 {
		err = multierr.Combine(err, errors.Errorf("base radius must not be negative, got %f", p.BaseRadius))
	}
	return err
}

// Model is a validated kinematic model of one manipulator. It is immutable
// after construction and safe for concurrent use.
type Model struct {
	name   string
	p      Parameters
	logger golog.Logger
}

// NewModel validates the given parameters and returns a ready solver.
func NewModel(name string, p Parameters, logger golog.Logger) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid parameters for robot %q", name)
	}
	if logger == nil {
		logger = golog.NewLogger(name)
	}
	return &Model{name: name, p: p, logger: logger}, nil
}

// Name returns the name of the modeled robot.
func (m *Model) Name() string {
	return m.name
}

// Parameters returns a copy of the model's parameters.
func (m *Model) Parameters() Parameters {
	return m.p
}

// ToVendor converts joint angles in degrees from the academic convention of the
// decomposition to the vendor convention used at the API boundary.
func (m *Model) ToVendor(academic [NumJoints]float64) JointPositions {
	var out JointPositions
	for i, j := range m.p.Joints {
		out[i] = academic[i]*float64(j.Sign) + j.Offset
	}
	return out
}

// ToAcademic converts joint angles in degrees from the vendor convention back
// to the academic convention; it is the exact inverse of ToVendor.
func (m *Model) ToAcademic(vendor JointPositions) [NumJoints]float64 {
	var out [NumJoints]float64
	for i, j := range m.p.Joints {
		out[i] = (vendor[i] - j.Offset) * float64(j.Sign)
	}
	return out
}

// WithinJointLimits reports whether every axis lies inside its configured
// travel range, bounds included. Angles are rounded to the reporting precision
// first so that values on a limit do not fail from floating point noise.
func (m *Model) WithinJointLimits(jp JointPositions) bool {
	for i, j := range m.p.Joints {
		v := utils.RoundTo(jp[i], precision)
		if v < j.Limit.Min || v > j.Limit.Max {
			return false
		}
	}
	return true
}

// CollidesWithBase reports whether a point in the root frame lies inside the
// cylinder modeling the robot base. A point exactly on the cylinder surface or
// on a cap counts as colliding; the check is deliberately conservative.
func (m *Model) CollidesWithBase(pt r3.Vector) bool {
	return pt.X*pt.X+pt.Y*pt.Y <= m.p.BaseRadius*m.p.BaseRadius &&
		pt.Z >= 0 && pt.Z <= m.p.C1
}
