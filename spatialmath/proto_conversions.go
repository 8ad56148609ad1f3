package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	transformpb "go.viam.com/posegraph/proto/transform/v1"
)

// PoseToProtobuf converts a pose into the wire Rigid3d encoding. The quaternion is written as-is,
// without normalization, so that the conversion is lossless.
func PoseToProtobuf(p Pose) *transformpb.Rigid3d {
	pt := p.Point()
	q := p.Orientation().Quaternion()
	return &transformpb.Rigid3d{
		Translation: &transformpb.Vector3d{X: pt.X, Y: pt.Y, Z: pt.Z},
		Rotation:    &transformpb.Quaterniond{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real},
	}
}

// NewPoseFromProtobuf creates a pose from a wire Rigid3d. A missing translation is the origin and a
// missing rotation is the identity.
func NewPoseFromProtobuf(r *transformpb.Rigid3d) Pose {
	if r == nil {
		return NewZeroPose()
	}
	p := &pose{rotation: quat.Number{Real: 1}}
	if t := r.Translation; t != nil {
		p.point = r3.Vector{X: t.X, Y: t.Y, Z: t.Z}
	}
	if q := r.Rotation; q != nil {
		p.rotation = quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
	}
	return p
}
