package mapping

import (
	"math"
	"sync"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/posegraph/logging"
	"go.viam.com/posegraph/spatialmath"
)

func TestAddTrajectoryNode(t *testing.T) {
	g := NewSparsePoseGraph(logging.NewTestLogger(t))

	id, err := g.AddTrajectoryNode(&TrajectoryNodeConstantData{
		Time:           startTime,
		TrajectoryID:   2,
		TrackingToPose: spatialmath.NewZeroPose(),
	}, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id, test.ShouldResemble, NodeID{TrajectoryID: 2, NodeIndex: 0})

	id, err = g.AddTrajectoryNode(&TrajectoryNodeConstantData{
		Time:           startTime,
		TrajectoryID:   2,
		TrackingToPose: spatialmath.NewZeroPose(),
	}, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id, test.ShouldResemble, NodeID{TrajectoryID: 2, NodeIndex: 1})

	nodes := g.TrajectoryNodes()
	test.That(t, nodes, test.ShouldHaveLength, 3)
	test.That(t, nodes[0], test.ShouldBeEmpty)
	test.That(t, nodes[1], test.ShouldBeEmpty)
	test.That(t, nodes[2], test.ShouldHaveLength, 2)

	_, err = g.AddTrajectoryNode(&TrajectoryNodeConstantData{TrajectoryID: -1, TrackingToPose: spatialmath.NewZeroPose()},
		spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)
	_, err = g.AddTrajectoryNode(nil, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)
	_, err = g.AddTrajectoryNode(&TrajectoryNodeConstantData{}, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)

	t.Run("missing pose", func(t *testing.T) {
		_, err := g.AddTrajectoryNode(&TrajectoryNodeConstantData{
			Time:           startTime,
			TrackingToPose: spatialmath.NewZeroPose(),
		}, nil)
		test.That(t, err, test.ShouldBeError, errors.New("trajectory node is missing its pose"))
		test.That(t, g.TrajectoryNodes()[0], test.ShouldBeEmpty)
		test.That(t, func() { g.ToProto() }, test.ShouldNotPanic)
	})

	t.Run("trajectory id out of wire range", func(t *testing.T) {
		_, err := g.AddTrajectoryNode(&TrajectoryNodeConstantData{
			TrajectoryID:   outOfRangeID(),
			TrackingToPose: spatialmath.NewZeroPose(),
		}, spatialmath.NewZeroPose())
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "invalid trajectory id")
	})
}

// outOfRangeID returns an id that does not fit the int32 ids of the wire format. On platforms
// where int is 32 bits wide it wraps to a negative id, which is rejected as well.
func outOfRangeID() int {
	id := math.MaxInt32
	id++
	return id
}

func TestAddSubmap(t *testing.T) {
	g := NewSparsePoseGraph(logging.NewTestLogger(t))

	id, err := g.AddSubmap(1, spatialmath.NewPoseFromPoint(r3.Vector{X: 1}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id, test.ShouldResemble, SubmapID{TrajectoryID: 1, SubmapIndex: 0})
	id, err = g.AddSubmap(1, spatialmath.NewPoseFromPoint(r3.Vector{X: 2}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id, test.ShouldResemble, SubmapID{TrajectoryID: 1, SubmapIndex: 1})

	test.That(t, g.SubmapTransforms(0), test.ShouldBeEmpty)
	test.That(t, g.SubmapTransforms(1), test.ShouldHaveLength, 2)

	_, err = g.AddSubmap(-1, spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)
	_, err = g.AddSubmap(outOfRangeID(), spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)

	_, err = g.AddSubmap(0, nil)
	test.That(t, err, test.ShouldBeError, errors.New("submap is missing its pose"))
	test.That(t, g.SubmapTransforms(0), test.ShouldBeEmpty)
	test.That(t, func() { g.ToProto() }, test.ShouldNotPanic)
}

func TestAddConstraint(t *testing.T) {
	g := NewSparsePoseGraph(logging.NewTestLogger(t))
	valid := Constraint{
		SubmapID: SubmapID{TrajectoryID: 0, SubmapIndex: 3},
		NodeID:   NodeID{TrajectoryID: 1, NodeIndex: 7},
		Pose:     ConstraintPose{ZbarIJ: spatialmath.NewZeroPose(), TranslationWeight: 1, RotationWeight: 1},
		Tag:      InterSubmap,
	}
	test.That(t, g.AddConstraint(valid), test.ShouldBeNil)

	missingPose := valid
	missingPose.Pose.ZbarIJ = nil
	test.That(t, g.AddConstraint(missingPose), test.ShouldBeError, errors.New("constraint is missing its relative pose"))

	for _, tc := range []struct {
		name   string
		modify func(c *Constraint)
	}{
		{"negative submap trajectory id", func(c *Constraint) { c.SubmapID.TrajectoryID = -1 }},
		{"negative submap index", func(c *Constraint) { c.SubmapID.SubmapIndex = -1 }},
		{"negative node trajectory id", func(c *Constraint) { c.NodeID.TrajectoryID = -1 }},
		{"negative node index", func(c *Constraint) { c.NodeID.NodeIndex = -1 }},
		{"submap index out of wire range", func(c *Constraint) { c.SubmapID.SubmapIndex = outOfRangeID() }},
		{"node index out of wire range", func(c *Constraint) { c.NodeID.NodeIndex = outOfRangeID() }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.modify(&c)
			test.That(t, g.AddConstraint(c), test.ShouldNotBeNil)
		})
	}

	test.That(t, g.Constraints(), test.ShouldResemble, []Constraint{valid})
	test.That(t, func() { g.ToProto() }, test.ShouldNotPanic)
}

func TestSetPoses(t *testing.T) {
	g := newTestGraph(t, logging.NewTestLogger(t))

	moved := spatialmath.NewPoseFromPoint(r3.Vector{X: 42})
	test.That(t, g.SetNodePose(NodeID{TrajectoryID: 1, NodeIndex: 0}, moved), test.ShouldBeNil)
	test.That(t, g.TrajectoryNodes()[1][0].Pose.Point(), test.ShouldResemble, r3.Vector{X: 42})
	test.That(t, g.SetNodePose(NodeID{TrajectoryID: 1, NodeIndex: 1}, moved), test.ShouldNotBeNil)
	test.That(t, g.SetNodePose(NodeID{TrajectoryID: 5, NodeIndex: 0}, moved), test.ShouldNotBeNil)

	test.That(t, g.SetSubmapPose(SubmapID{TrajectoryID: 0, SubmapIndex: 1}, moved), test.ShouldBeNil)
	test.That(t, g.SubmapTransforms(0)[1].Point(), test.ShouldResemble, r3.Vector{X: 42})
	test.That(t, g.SetSubmapPose(SubmapID{TrajectoryID: 0, SubmapIndex: 2}, moved), test.ShouldNotBeNil)

	test.That(t, g.SetNodePose(NodeID{TrajectoryID: 1, NodeIndex: 0}, nil), test.ShouldNotBeNil)
	test.That(t, g.SetSubmapPose(SubmapID{TrajectoryID: 0, SubmapIndex: 1}, nil), test.ShouldNotBeNil)
	test.That(t, g.TrajectoryNodes()[1][0].Pose.Point(), test.ShouldResemble, r3.Vector{X: 42})
	test.That(t, g.SubmapTransforms(0)[1].Point(), test.ShouldResemble, r3.Vector{X: 42})
	test.That(t, func() { g.ToProto() }, test.ShouldNotPanic)
}

func TestSnapshotIsolation(t *testing.T) {
	g := newTestGraph(t, logging.NewTestLogger(t))
	snapshot := g.Snapshot()

	moved := spatialmath.NewPoseFromPoint(r3.Vector{X: 42})
	test.That(t, g.SetNodePose(NodeID{TrajectoryID: 0, NodeIndex: 0}, moved), test.ShouldBeNil)
	test.That(t, g.SetSubmapPose(SubmapID{TrajectoryID: 0, SubmapIndex: 0}, moved), test.ShouldBeNil)
	test.That(t, g.AddConstraint(Constraint{Pose: ConstraintPose{ZbarIJ: moved}}), test.ShouldBeNil)

	test.That(t, snapshot.Constraints, test.ShouldHaveLength, 2)
	test.That(t, snapshot.TrajectoryNodes[0][0].Pose.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, snapshot.SubmapTransforms(0)[0].Point(), test.ShouldResemble, r3.Vector{X: 0.5})

	test.That(t, g.Constraints(), test.ShouldHaveLength, 3)
}

func TestConcurrentSnapshots(t *testing.T) {
	g := NewSparsePoseGraph(logging.NewTestLogger(t))

	const numNodes = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < numNodes; i++ {
			nodeID, err := g.AddTrajectoryNode(&TrajectoryNodeConstantData{
				Time:           startTime,
				TrackingToPose: spatialmath.NewZeroPose(),
			}, spatialmath.NewPoseFromPoint(r3.Vector{X: float64(i)}))
			if err != nil {
				t.Error(err)
				return
			}
			submapID, err := g.AddSubmap(0, spatialmath.NewZeroPose())
			if err != nil {
				t.Error(err)
				return
			}
			if err := g.AddConstraint(Constraint{
				SubmapID: submapID,
				NodeID:   nodeID,
				Pose:     ConstraintPose{ZbarIJ: spatialmath.NewZeroPose()},
				Tag:      IntraSubmap,
			}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < numNodes; i++ {
			graph := g.ToProto()
			if _, err := graph.Marshal(); err != nil {
				t.Error(err)
				return
			}
			// A constraint is only added after its node, so a consistent copy never has more
			// constraints than nodes.
			snapshot := g.Snapshot()
			numSnapshotNodes := 0
			if len(snapshot.TrajectoryNodes) > 0 {
				numSnapshotNodes = len(snapshot.TrajectoryNodes[0])
			}
			if len(snapshot.Constraints) > numSnapshotNodes {
				t.Errorf("snapshot has %d constraints but only %d nodes", len(snapshot.Constraints), numSnapshotNodes)
				return
			}
		}
	}()
	wg.Wait()

	test.That(t, g.Constraints(), test.ShouldHaveLength, numNodes)
	test.That(t, g.TrajectoryNodes()[0], test.ShouldHaveLength, numNodes)
	test.That(t, g.SubmapTransforms(0), test.ShouldHaveLength, numNodes)
}

func TestAddTrajectory(t *testing.T) {
	g := NewSparsePoseGraph(logging.NewTestLogger(t))
	test.That(t, g.AddTrajectory(1), test.ShouldBeNil)
	test.That(t, g.AddTrajectory(0), test.ShouldBeNil)
	test.That(t, g.AddTrajectory(-1), test.ShouldNotBeNil)
	test.That(t, g.AddTrajectory(outOfRangeID()), test.ShouldNotBeNil)

	graph := g.ToProto()
	test.That(t, graph.Trajectory, test.ShouldHaveLength, 2)
	test.That(t, graph.Trajectory[1].Node, test.ShouldBeEmpty)
}
