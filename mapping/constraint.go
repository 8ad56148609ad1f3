// Package mapping defines the sparse pose graph: trajectory nodes, submap placements and the
// constraints between them, together with its wire encoding and its options.
package mapping

import (
	"fmt"

	"go.viam.com/posegraph/spatialmath"
)

// SubmapID identifies a submap by the trajectory it belongs to and its index within it.
type SubmapID struct {
	TrajectoryID int
	SubmapIndex  int
}

func (id SubmapID) String() string {
	return fmt.Sprintf("(%d, %d)", id.TrajectoryID, id.SubmapIndex)
}

// NodeID identifies a trajectory node by the trajectory it belongs to and its index within it.
type NodeID struct {
	TrajectoryID int
	NodeIndex    int
}

func (id NodeID) String() string {
	return fmt.Sprintf("(%d, %d)", id.TrajectoryID, id.NodeIndex)
}

// Tag differentiates between intra-submap constraints, where the node was inserted into the submap
// during local mapping, and inter-submap constraints found by loop closure. It is a closed
// enumeration: a value other than IntraSubmap or InterSubmap is a programming error.
type Tag int

const (
	// IntraSubmap constraints tie a node to a submap it was inserted into.
	IntraSubmap Tag = iota
	// InterSubmap constraints tie a node to a finished submap it was matched against.
	InterSubmap
)

func (t Tag) String() string {
	switch t {
	case IntraSubmap:
		return "INTRA_SUBMAP"
	case InterSubmap:
		return "INTER_SUBMAP"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// ConstraintPose is the expected pose of a node relative to a submap together with the weights
// the optimizer gives to its translational and rotational parts.
type ConstraintPose struct {
	// ZbarIJ takes data from the node frame into the submap frame.
	ZbarIJ            spatialmath.Pose
	TranslationWeight float64
	RotationWeight    float64
}

// A Constraint is an edge of the pose graph between a submap and a node.
type Constraint struct {
	SubmapID SubmapID
	NodeID   NodeID
	Pose     ConstraintPose
	Tag      Tag
}
