package v1_test

import (
	"bytes"
	"math"
	"testing"

	"go.viam.com/test"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"

	pb "go.viam.com/posegraph/proto/mapping/v1"
	transformpb "go.viam.com/posegraph/proto/transform/v1"
	"go.viam.com/posegraph/testutils"
)

func TestMarshalMatchesProtobufRuntime(t *testing.T) {
	md := testutils.LoadMessageDescriptor(t, "../../..", "cartographer.mapping.proto.SparsePoseGraph")

	for _, tc := range []struct {
		name  string
		graph *pb.SparsePoseGraph
	}{
		{"empty", &pb.SparsePoseGraph{}},
		{
			"zero values and empty trajectory",
			&pb.SparsePoseGraph{
				Constraint: []*pb.Constraint{{
					SubmapID:     &pb.SubmapID{},
					ScanID:       &pb.ScanID{},
					RelativePose: &transformpb.Rigid3d{Translation: &transformpb.Vector3d{}, Rotation: &transformpb.Quaterniond{}},
				}},
				Trajectory: []*pb.Trajectory{{}},
			},
		},
		{
			"extreme values",
			&pb.SparsePoseGraph{
				Constraint: []*pb.Constraint{{
					SubmapID: &pb.SubmapID{TrajectoryID: -1, SubmapIndex: math.MaxInt32},
					ScanID:   &pb.ScanID{TrajectoryID: math.MinInt32, ScanIndex: 300},
					RelativePose: &transformpb.Rigid3d{
						Translation: &transformpb.Vector3d{X: math.Inf(1), Y: -1e-300, Z: math.MaxFloat64},
						Rotation:    &transformpb.Quaterniond{X: 0.5, Y: -0.5, Z: 0.5, W: -0.5},
					},
					Tag:               pb.ConstraintTagInterSubmap,
					TranslationWeight: 1e5,
					RotationWeight:    -2,
				}},
				Trajectory: []*pb.Trajectory{
					{},
					{
						Node: []*pb.TrajectoryNode{
							{Timestamp: math.MinInt64},
							{Timestamp: 636250661665358979, Pose: &transformpb.Rigid3d{Translation: &transformpb.Vector3d{X: 1}}},
						},
						Submap: []*pb.TrajectorySubmap{{Pose: &transformpb.Rigid3d{}}},
					},
				},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.graph.Marshal()
			test.That(t, err, test.ShouldBeNil)

			msg := dynamicpb.NewMessage(md)
			test.That(t, proto.Unmarshal(b, msg), test.ShouldBeNil)
			test.That(t, msg.GetUnknown(), test.ShouldBeEmpty)

			reencoded, err := proto.MarshalOptions{Deterministic: true}.Marshal(msg)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, bytes.Equal(reencoded, b), test.ShouldBeTrue)

			// and the other way around
			var decoded pb.SparsePoseGraph
			test.That(t, decoded.Unmarshal(reencoded), test.ShouldBeNil)
			again, err := decoded.Marshal()
			test.That(t, err, test.ShouldBeNil)
			test.That(t, bytes.Equal(again, b), test.ShouldBeTrue)
		})
	}
}
