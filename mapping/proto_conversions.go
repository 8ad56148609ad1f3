package mapping

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	pb "go.viam.com/posegraph/proto/mapping/v1"
	"go.viam.com/posegraph/spatialmath"
	"go.viam.com/posegraph/utils"
)

// ToProto converts a snapshot of the graph into its wire message.
//
// Submaps are looked up using the trajectory id of the first node of each trajectory, so a
// trajectory without nodes is written without submaps even when submap poses exist for it.
func ToProto(snapshot Snapshot) *pb.SparsePoseGraph {
	graph := &pb.SparsePoseGraph{
		Constraint: make([]*pb.Constraint, 0, len(snapshot.Constraints)),
		Trajectory: make([]*pb.Trajectory, 0, len(snapshot.TrajectoryNodes)),
	}

	for _, constraint := range snapshot.Constraints {
		graph.Constraint = append(graph.Constraint, constraintToProto(constraint))
	}

	for _, nodes := range snapshot.TrajectoryNodes {
		trajectory := &pb.Trajectory{}
		for _, node := range nodes {
			trajectory.Node = append(trajectory.Node, &pb.TrajectoryNode{
				Timestamp: utils.ToUniversal(node.Time()),
				Pose:      spatialmath.PoseToProtobuf(node.ReportedPose()),
			})
		}

		if len(nodes) > 0 {
			for _, transform := range snapshot.SubmapTransforms(nodes[0].ConstantData.TrajectoryID) {
				trajectory.Submap = append(trajectory.Submap, &pb.TrajectorySubmap{
					Pose: spatialmath.PoseToProtobuf(transform),
				})
			}
		}
		graph.Trajectory = append(graph.Trajectory, trajectory)
	}

	return graph
}

func constraintToProto(constraint Constraint) *pb.Constraint {
	return &pb.Constraint{
		SubmapID: &pb.SubmapID{
			TrajectoryID: int32(constraint.SubmapID.TrajectoryID),
			SubmapIndex:  int32(constraint.SubmapID.SubmapIndex),
		},
		ScanID: &pb.ScanID{
			TrajectoryID: int32(constraint.NodeID.TrajectoryID),
			ScanIndex:    int32(constraint.NodeID.NodeIndex),
		},
		RelativePose:      spatialmath.PoseToProtobuf(constraint.Pose.ZbarIJ),
		Tag:               TagToProto(constraint.Tag),
		TranslationWeight: constraint.Pose.TranslationWeight,
		RotationWeight:    constraint.Pose.RotationWeight,
	}
}

// FromProto rehydrates a snapshot from a wire message. Trajectory ids and node indices are the
// positions of the trajectories and nodes in the message. Node poses on the wire already include
// the tracking to pose offset, so rehydrated nodes carry an identity TrackingToPose.
func FromProto(graph *pb.SparsePoseGraph) (Snapshot, error) {
	snapshot := Snapshot{SubmapPoses: map[int][]spatialmath.Pose{}}
	if graph == nil {
		return snapshot, nil
	}

	for i, c := range graph.Constraint {
		constraint, err := constraintFromProto(c)
		if err != nil {
			return Snapshot{}, errors.Wrapf(err, "constraint %d", i)
		}
		snapshot.Constraints = append(snapshot.Constraints, constraint)
	}

	for trajectoryID, trajectory := range graph.Trajectory {
		nodes := lo.Map(trajectory.Node, func(node *pb.TrajectoryNode, _ int) TrajectoryNode {
			return TrajectoryNode{
				ConstantData: &TrajectoryNodeConstantData{
					Time:           utils.FromUniversal(node.Timestamp),
					TrajectoryID:   trajectoryID,
					TrackingToPose: spatialmath.NewZeroPose(),
				},
				Pose: spatialmath.NewPoseFromProtobuf(node.Pose),
			}
		})
		snapshot.TrajectoryNodes = append(snapshot.TrajectoryNodes, nodes)

		if len(trajectory.Submap) > 0 {
			snapshot.SubmapPoses[trajectoryID] = lo.Map(trajectory.Submap, func(submap *pb.TrajectorySubmap, _ int) spatialmath.Pose {
				return spatialmath.NewPoseFromProtobuf(submap.Pose)
			})
		}
	}

	return snapshot, nil
}

func constraintFromProto(c *pb.Constraint) (Constraint, error) {
	if !c.Tag.IsValid() {
		return Constraint{}, errors.Errorf("unsupported constraint tag %v", c.Tag)
	}
	if c.SubmapID == nil {
		return Constraint{}, errors.New("missing submap_id")
	}
	if c.ScanID == nil {
		return Constraint{}, errors.New("missing scan_id")
	}
	return Constraint{
		SubmapID: SubmapID{
			TrajectoryID: int(c.SubmapID.TrajectoryID),
			SubmapIndex:  int(c.SubmapID.SubmapIndex),
		},
		NodeID: NodeID{
			TrajectoryID: int(c.ScanID.TrajectoryID),
			NodeIndex:    int(c.ScanID.ScanIndex),
		},
		Pose: ConstraintPose{
			ZbarIJ:            spatialmath.NewPoseFromProtobuf(c.RelativePose),
			TranslationWeight: c.TranslationWeight,
			RotationWeight:    c.RotationWeight,
		},
		Tag: TagFromProto(c.Tag),
	}, nil
}
