package v1

import (
	"testing"

	"go.viam.com/test"
	"google.golang.org/protobuf/encoding/protowire"

	transformpb "go.viam.com/posegraph/proto/transform/v1"
	"go.viam.com/posegraph/protoutils"
)

func testGraph() *SparsePoseGraph {
	pose := &transformpb.Rigid3d{
		Translation: &transformpb.Vector3d{X: 1, Y: 2, Z: 3},
		Rotation:    &transformpb.Quaterniond{W: 1},
	}
	return &SparsePoseGraph{
		Constraint: []*Constraint{
			{
				SubmapID:          &SubmapID{TrajectoryID: 0, SubmapIndex: 1},
				ScanID:            &ScanID{TrajectoryID: 0, ScanIndex: 4},
				RelativePose:      pose,
				Tag:               ConstraintTagInterSubmap,
				TranslationWeight: 500,
				RotationWeight:    1600,
			},
		},
		Trajectory: []*Trajectory{
			{
				Node: []*TrajectoryNode{
					{Timestamp: 636245033665358979, Pose: pose},
					{Timestamp: -5, Pose: pose},
				},
				Submap: []*TrajectorySubmap{{Pose: pose}},
			},
			{},
		},
	}
}

func TestSparsePoseGraphRoundTrip(t *testing.T) {
	graph := testGraph()
	b, err := graph.Marshal()
	test.That(t, err, test.ShouldBeNil)

	var decoded SparsePoseGraph
	test.That(t, decoded.Unmarshal(b), test.ShouldBeNil)
	test.That(t, decoded.Constraint, test.ShouldResemble, graph.Constraint)
	test.That(t, decoded.Trajectory[0], test.ShouldResemble, graph.Trajectory[0])
	test.That(t, decoded.Trajectory, test.ShouldHaveLength, 2)
	test.That(t, decoded.Trajectory[1].Node, test.ShouldBeEmpty)
	test.That(t, decoded.Trajectory[1].Submap, test.ShouldBeEmpty)

	again, err := decoded.Marshal()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, b)
}

func TestUnmarshalReplacesContents(t *testing.T) {
	b, err := testGraph().Marshal()
	test.That(t, err, test.ShouldBeNil)

	graph := testGraph()
	test.That(t, graph.Unmarshal(b), test.ShouldBeNil)
	test.That(t, graph.Constraint, test.ShouldHaveLength, 1)
	test.That(t, graph.Trajectory, test.ShouldHaveLength, 2)
}

func TestConstraintWritesZeroValues(t *testing.T) {
	b := (&Constraint{}).AppendWire(nil)
	var nums []protowire.Number
	test.That(t, protoutils.RangeFields(b, func(num protowire.Number, _ protowire.Type, _ []byte) error {
		nums = append(nums, num)
		return nil
	}), test.ShouldBeNil)
	test.That(t, nums, test.ShouldResemble, []protowire.Number{5, 6, 7})
}

func TestNegativeIDs(t *testing.T) {
	id := &SubmapID{TrajectoryID: -1, SubmapIndex: -2}
	b := id.AppendWire(nil)
	var decoded SubmapID
	test.That(t, decoded.MergeWire(b), test.ShouldBeNil)
	test.That(t, decoded, test.ShouldResemble, *id)
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	b, err := testGraph().Marshal()
	test.That(t, err, test.ShouldBeNil)
	// field 3 is not part of SparsePoseGraph
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	var decoded SparsePoseGraph
	test.That(t, decoded.Unmarshal(b), test.ShouldBeNil)
	test.That(t, decoded.Constraint, test.ShouldResemble, testGraph().Constraint)
}

func TestUnmarshalErrors(t *testing.T) {
	var graph SparsePoseGraph
	err := graph.Unmarshal([]byte{0x12, 0x05, 0x00})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot unmarshal SparsePoseGraph")

	b := protoutils.AppendDouble(nil, sparsePoseGraphTrajectoryField, 1)
	test.That(t, graph.Unmarshal(b), test.ShouldNotBeNil)
}

func TestConstraintTag(t *testing.T) {
	test.That(t, ConstraintTagIntraSubmap.String(), test.ShouldEqual, "INTRA_SUBMAP")
	test.That(t, ConstraintTagInterSubmap.String(), test.ShouldEqual, "INTER_SUBMAP")
	test.That(t, ConstraintTag(3).String(), test.ShouldEqual, "ConstraintTag(3)")
	test.That(t, ConstraintTagInterSubmap.IsValid(), test.ShouldBeTrue)
	test.That(t, ConstraintTag(-1).IsValid(), test.ShouldBeFalse)
}
