// Package spatialmath defines spatial mathematical operations.
// Poses are rigid transforms made of a translation and a rotation; composition follows the usual
// convention that Compose(a, b) applies b in the frame described by a.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) and the Orientation() method returns the rotation.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// pose stores the translation and rotation verbatim so that converting to and from the wire
// encoding is lossless.
type pose struct {
	point    r3.Vector
	rotation quat.Number
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return &pose{rotation: quat.Number{Real: 1}}
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return &pose{point: p, rotation: o.Quaternion()}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(p r3.Vector) Pose {
	return &pose{point: p, rotation: quat.Number{Real: 1}}
}

// NewPoseFromOrientation takes in an orientation and returns a pose at the origin with that orientation.
func NewPoseFromOrientation(o Orientation) Pose {
	return NewPose(r3.Vector{}, o)
}

// Point returns the position of the pose.
func (p *pose) Point() r3.Vector {
	return p.point
}

// Orientation returns the rotation of the pose.
func (p *pose) Orientation() Orientation {
	q := Quaternion(p.rotation)
	return &q
}

func (p *pose) String() string {
	return fmt.Sprintf("{X:%.3f Y:%.3f Z:%.3f QW:%.6f QX:%.6f QY:%.6f QZ:%.6f}",
		p.point.X, p.point.Y, p.point.Z,
		p.rotation.Real, p.rotation.Imag, p.rotation.Jmag, p.rotation.Kmag)
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// The translation of b is rotated into a's frame and added to a's translation; the rotations are multiplied a*b.
// Compose is not commutative.
func Compose(a, b Pose) Pose {
	qa := a.Orientation().Quaternion()
	qb := b.Orientation().Quaternion()
	return &pose{
		point:    a.Point().Add(RotatePoint(qa, b.Point())),
		rotation: quat.Mul(qa, qb),
	}
}

// PoseInverse returns the inverse of a pose, such that Compose(p, PoseInverse(p)) is the zero pose.
func PoseInverse(p Pose) Pose {
	inv := quat.Conj(Normalize(p.Orientation().Quaternion()))
	return &pose{
		point:    RotatePoint(inv, p.Point()).Mul(-1),
		rotation: inv,
	}
}

// PoseBetween returns the difference between two Poses, such that Compose(a, PoseBetween(a, b)) == b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same within the given epsilon.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return PoseAlmostCoincidentEps(a, b, epsilon) && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// PoseAlmostCoincidentEps will return a bool describing whether 2 poses approximately are at the same 3D coordinate location.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return a.Sub(b).Norm() < epsilon
}
