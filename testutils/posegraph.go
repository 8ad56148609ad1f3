package testutils

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.viam.com/posegraph/spatialmath"
)

// PoseComparer makes cmp compare poses by the exact values of their translation and rotation.
var PoseComparer = cmp.Comparer(func(a, b spatialmath.Pose) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Point() == b.Point() && a.Orientation().Quaternion() == b.Orientation().Quaternion()
})

// GraphCmpOptions are the cmp options used to compare pose graph snapshots.
var GraphCmpOptions = []cmp.Option{PoseComparer, cmpopts.EquateEmpty()}

// RotationAboutZ returns the pose of a rotation by theta radians about the z axis at the given point.
func RotationAboutZ(p r3.Vector, theta float64) spatialmath.Pose {
	return spatialmath.NewPose(p, &spatialmath.R4AA{Theta: theta, RX: 0, RY: 0, RZ: 1})
}

// HalfTurnAboutZ is a rotation by pi about the z axis with an exactly representable quaternion.
func HalfTurnAboutZ(p r3.Vector) spatialmath.Pose {
	q := spatialmath.Quaternion{Kmag: 1}
	return spatialmath.NewPose(p, &q)
}

// QuarterTurnAboutZ is a rotation by pi/2 about the z axis.
func QuarterTurnAboutZ(p r3.Vector) spatialmath.Pose {
	q := spatialmath.Quaternion{Real: math.Sqrt2 / 2, Kmag: math.Sqrt2 / 2}
	return spatialmath.NewPose(p, &q)
}
