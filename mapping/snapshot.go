package mapping

import (
	"go.viam.com/posegraph/spatialmath"
)

// A Snapshot is a consistent, read-only copy of the state of a sparse pose graph. Its slices are
// owned by the snapshot and are not shared with the graph it was taken from.
type Snapshot struct {
	Constraints []Constraint
	// TrajectoryNodes holds the nodes of each trajectory, indexed by trajectory id, in node index order.
	TrajectoryNodes [][]TrajectoryNode
	// SubmapPoses holds the global poses of the submaps of each trajectory in creation order.
	SubmapPoses map[int][]spatialmath.Pose
}

// SubmapTransforms returns the global poses of the submaps of the given trajectory.
func (s Snapshot) SubmapTransforms(trajectoryID int) []spatialmath.Pose {
	return s.SubmapPoses[trajectoryID]
}
