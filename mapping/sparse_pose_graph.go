package mapping

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/posegraph/logging"
	pb "go.viam.com/posegraph/proto/mapping/v1"
	"go.viam.com/posegraph/spatialmath"
)

// SparsePoseGraph owns the nodes, submap poses and constraints of a pose graph. It is safe for
// concurrent use: a single writer (local mapping, constraint search or the optimizer) may mutate it
// while readers take snapshots.
type SparsePoseGraph struct {
	mu               sync.RWMutex
	constraints      []Constraint
	trajectoryNodes  [][]TrajectoryNode
	submapTransforms map[int][]spatialmath.Pose

	logger logging.Logger
}

// NewSparsePoseGraph returns an empty graph.
func NewSparsePoseGraph(logger logging.Logger) *SparsePoseGraph {
	return &SparsePoseGraph{
		submapTransforms: map[int][]spatialmath.Pose{},
		logger:           logger,
	}
}

// AddTrajectory makes sure the graph has a trajectory with the given id, even if it has no nodes
// yet. Trajectories with smaller ids are created as well.
func (g *SparsePoseGraph) AddTrajectory(trajectoryID int) error {
	if err := checkID("trajectory id", trajectoryID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.growTrajectories(trajectoryID)
	return nil
}

// AddTrajectoryNode appends a node to the trajectory named by its constant data and returns its id.
func (g *SparsePoseGraph) AddTrajectoryNode(constantData *TrajectoryNodeConstantData, pose spatialmath.Pose) (NodeID, error) {
	if constantData == nil {
		return NodeID{}, errors.New("trajectory node is missing its constant data")
	}
	if err := checkID("trajectory id", constantData.TrajectoryID); err != nil {
		return NodeID{}, err
	}
	if constantData.TrackingToPose == nil {
		return NodeID{}, errors.New("trajectory node is missing its tracking to pose transform")
	}
	if pose == nil {
		return NodeID{}, errors.New("trajectory node is missing its pose")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.growTrajectories(constantData.TrajectoryID)
	nodes := g.trajectoryNodes[constantData.TrajectoryID]
	if err := checkID("node index", len(nodes)); err != nil {
		return NodeID{}, err
	}
	id := NodeID{TrajectoryID: constantData.TrajectoryID, NodeIndex: len(nodes)}
	g.trajectoryNodes[constantData.TrajectoryID] = append(nodes, TrajectoryNode{ConstantData: constantData, Pose: pose})
	return id, nil
}

// AddSubmap appends a submap with the given global pose to a trajectory and returns its id.
func (g *SparsePoseGraph) AddSubmap(trajectoryID int, pose spatialmath.Pose) (SubmapID, error) {
	if err := checkID("trajectory id", trajectoryID); err != nil {
		return SubmapID{}, err
	}
	if pose == nil {
		return SubmapID{}, errors.New("submap is missing its pose")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	poses := g.submapTransforms[trajectoryID]
	if err := checkID("submap index", len(poses)); err != nil {
		return SubmapID{}, err
	}
	id := SubmapID{TrajectoryID: trajectoryID, SubmapIndex: len(poses)}
	g.submapTransforms[trajectoryID] = append(poses, pose)
	g.logger.Debugw("adding submap", "submap_id", id)
	return id, nil
}

// AddConstraint adds an edge to the graph. The ids it references must fit the wire format but are
// not checked against the nodes and submaps of the graph.
func (g *SparsePoseGraph) AddConstraint(constraint Constraint) error {
	if constraint.Pose.ZbarIJ == nil {
		return errors.New("constraint is missing its relative pose")
	}
	for _, id := range []struct {
		name  string
		value int
	}{
		{"submap trajectory id", constraint.SubmapID.TrajectoryID},
		{"submap index", constraint.SubmapID.SubmapIndex},
		{"node trajectory id", constraint.NodeID.TrajectoryID},
		{"node index", constraint.NodeID.NodeIndex},
	} {
		if err := checkID(id.name, id.value); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.constraints = append(g.constraints, constraint)
	return nil
}

// SetNodePose replaces the optimized pose of a node.
func (g *SparsePoseGraph) SetNodePose(id NodeID, pose spatialmath.Pose) error {
	if pose == nil {
		return errors.Errorf("node %v is missing its pose", id)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if id.TrajectoryID < 0 || id.TrajectoryID >= len(g.trajectoryNodes) ||
		id.NodeIndex < 0 || id.NodeIndex >= len(g.trajectoryNodes[id.TrajectoryID]) {
		return errors.Errorf("node %v does not exist", id)
	}
	g.trajectoryNodes[id.TrajectoryID][id.NodeIndex].Pose = pose
	return nil
}

// SetSubmapPose replaces the global pose of a submap.
func (g *SparsePoseGraph) SetSubmapPose(id SubmapID, pose spatialmath.Pose) error {
	if pose == nil {
		return errors.Errorf("submap %v is missing its pose", id)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	poses := g.submapTransforms[id.TrajectoryID]
	if id.SubmapIndex < 0 || id.SubmapIndex >= len(poses) {
		return errors.Errorf("submap %v does not exist", id)
	}
	poses[id.SubmapIndex] = pose
	return nil
}

// Constraints returns a copy of the constraints of the graph.
func (g *SparsePoseGraph) Constraints() []Constraint {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Constraint(nil), g.constraints...)
}

// TrajectoryNodes returns a copy of the nodes of every trajectory, indexed by trajectory id.
func (g *SparsePoseGraph) TrajectoryNodes() [][]TrajectoryNode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.copyTrajectoryNodes()
}

// SubmapTransforms returns a copy of the global poses of the submaps of a trajectory.
func (g *SparsePoseGraph) SubmapTransforms(trajectoryID int) []spatialmath.Pose {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]spatialmath.Pose(nil), g.submapTransforms[trajectoryID]...)
}

// Snapshot returns a consistent copy of the whole graph.
func (g *SparsePoseGraph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	submapPoses := make(map[int][]spatialmath.Pose, len(g.submapTransforms))
	for trajectoryID, poses := range g.submapTransforms {
		submapPoses[trajectoryID] = append([]spatialmath.Pose(nil), poses...)
	}
	return Snapshot{
		Constraints:     append([]Constraint(nil), g.constraints...),
		TrajectoryNodes: g.copyTrajectoryNodes(),
		SubmapPoses:     submapPoses,
	}
}

// ToProto converts a snapshot of the current graph into its wire message.
func (g *SparsePoseGraph) ToProto() *pb.SparsePoseGraph {
	return ToProto(g.Snapshot())
}

func (g *SparsePoseGraph) growTrajectories(trajectoryID int) {
	for len(g.trajectoryNodes) <= trajectoryID {
		g.logger.Debugw("adding trajectory", "trajectory_id", len(g.trajectoryNodes))
		g.trajectoryNodes = append(g.trajectoryNodes, nil)
	}
}

// checkID rejects ids that are negative or do not fit the int32 fields of the wire format.
func checkID(name string, id int) error {
	if id < 0 || int64(id) > math.MaxInt32 {
		return errors.Errorf("invalid %s %d", name, id)
	}
	return nil
}

func (g *SparsePoseGraph) copyTrajectoryNodes() [][]TrajectoryNode {
	nodes := make([][]TrajectoryNode, len(g.trajectoryNodes))
	for i, trajectory := range g.trajectoryNodes {
		nodes[i] = append([]TrajectoryNode(nil), trajectory...)
	}
	return nodes
}
