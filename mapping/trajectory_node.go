package mapping

import (
	"time"

	"go.viam.com/posegraph/spatialmath"
)

// TrajectoryNodeConstantData is the immutable part of a trajectory node, shared by every copy of it.
type TrajectoryNodeConstantData struct {
	// Time is the acquisition time of the sensor data the node was built from.
	Time         time.Time
	TrajectoryID int
	// TrackingToPose takes the tracking frame into the frame reported for the node.
	TrackingToPose spatialmath.Pose
}

// TrajectoryNode is a timestamped pose estimate along a trajectory.
type TrajectoryNode struct {
	ConstantData *TrajectoryNodeConstantData
	// Pose is the optimized pose of the tracking frame in the global frame.
	Pose spatialmath.Pose
}

// Time returns the acquisition time of the node.
func (n TrajectoryNode) Time() time.Time {
	return n.ConstantData.Time
}

// ReportedPose returns the pose reported for the node: the tracking frame pose followed by the
// tracking to pose offset.
func (n TrajectoryNode) ReportedPose() spatialmath.Pose {
	return spatialmath.Compose(n.Pose, n.ConstantData.TrackingToPose)
}
