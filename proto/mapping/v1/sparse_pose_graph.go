// Package v1 contains the wire messages of sparse_pose_graph.proto.
//
// Every scalar field of a message is written on encode, including zero values, matching the
// explicit presence of the proto2 schema where the producer sets every field. Fields are written in
// field number order so that encoding a message twice yields identical bytes.
package v1

import (
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	transformpb "go.viam.com/posegraph/proto/transform/v1"
	"go.viam.com/posegraph/protoutils"
)

// Field numbers of sparse_pose_graph.proto.
const (
	idTrajectoryIDField = protowire.Number(1)
	idIndexField        = protowire.Number(2)

	constraintSubmapIDField          = protowire.Number(1)
	constraintScanIDField            = protowire.Number(2)
	constraintRelativePoseField      = protowire.Number(3)
	constraintTagField               = protowire.Number(5)
	constraintTranslationWeightField = protowire.Number(6)
	constraintRotationWeightField    = protowire.Number(7)

	nodeTimestampField = protowire.Number(1)
	nodePoseField      = protowire.Number(5)

	submapPoseField = protowire.Number(1)

	trajectoryNodeField   = protowire.Number(1)
	trajectorySubmapField = protowire.Number(2)

	sparsePoseGraphConstraintField = protowire.Number(2)
	sparsePoseGraphTrajectoryField = protowire.Number(4)
)

// ConstraintTag is SparsePoseGraph.Constraint.Tag.
type ConstraintTag int32

// Values of ConstraintTag.
const (
	ConstraintTagIntraSubmap ConstraintTag = 0
	ConstraintTagInterSubmap ConstraintTag = 1
)

var constraintTagNames = map[ConstraintTag]string{
	ConstraintTagIntraSubmap: "INTRA_SUBMAP",
	ConstraintTagInterSubmap: "INTER_SUBMAP",
}

// String returns the schema name of the tag.
func (t ConstraintTag) String() string {
	if name, ok := constraintTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ConstraintTag(%d)", int32(t))
}

// IsValid reports whether the tag is one of the values declared in the schema.
func (t ConstraintTag) IsValid() bool {
	_, ok := constraintTagNames[t]
	return ok
}

// SubmapID is SubmapId.
type SubmapID struct {
	TrajectoryID int32
	SubmapIndex  int32
}

// ScanID is ScanId. It carries the node identifier of a constraint.
type ScanID struct {
	TrajectoryID int32
	ScanIndex    int32
}

// Constraint is SparsePoseGraph.Constraint.
type Constraint struct {
	SubmapID          *SubmapID
	ScanID            *ScanID
	RelativePose      *transformpb.Rigid3d
	Tag               ConstraintTag
	TranslationWeight float64
	RotationWeight    float64
}

// TrajectoryNode is Trajectory.Node.
type TrajectoryNode struct {
	Timestamp int64
	Pose      *transformpb.Rigid3d
}

// TrajectorySubmap is Trajectory.Submap.
type TrajectorySubmap struct {
	Pose *transformpb.Rigid3d
}

// Trajectory holds the nodes of one trajectory and the poses of its submaps.
type Trajectory struct {
	Node   []*TrajectoryNode
	Submap []*TrajectorySubmap
}

// SparsePoseGraph is the serialized form of a sparse pose graph.
type SparsePoseGraph struct {
	Constraint []*Constraint
	Trajectory []*Trajectory
}

// Marshal encodes the graph in the protobuf binary format.
func (m *SparsePoseGraph) Marshal() ([]byte, error) {
	return protoutils.Marshal(m)
}

// Unmarshal replaces the contents of m with the graph encoded in b.
func (m *SparsePoseGraph) Unmarshal(b []byte) error {
	*m = SparsePoseGraph{}
	return errors.Wrap(m.MergeWire(b), "cannot unmarshal SparsePoseGraph")
}

// AppendWire appends the encoded message to b.
func (m *SparsePoseGraph) AppendWire(b []byte) []byte {
	for _, c := range m.Constraint {
		b = protoutils.AppendMessage(b, sparsePoseGraphConstraintField, c)
	}
	for _, t := range m.Trajectory {
		b = protoutils.AppendMessage(b, sparsePoseGraphTrajectoryField, t)
	}
	return b
}

// MergeWire merges the encoded message in b into m.
func (m *SparsePoseGraph) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case sparsePoseGraphConstraintField:
			c := &Constraint{}
			if err := protoutils.DecodeMessage(num, typ, value, c); err != nil {
				return err
			}
			m.Constraint = append(m.Constraint, c)
		case sparsePoseGraphTrajectoryField:
			t := &Trajectory{}
			if err := protoutils.DecodeMessage(num, typ, value, t); err != nil {
				return err
			}
			m.Trajectory = append(m.Trajectory, t)
		}
		return nil
	})
}

// AppendWire appends the encoded message to b.
func (m *Constraint) AppendWire(b []byte) []byte {
	if m.SubmapID != nil {
		b = protoutils.AppendMessage(b, constraintSubmapIDField, m.SubmapID)
	}
	if m.ScanID != nil {
		b = protoutils.AppendMessage(b, constraintScanIDField, m.ScanID)
	}
	if m.RelativePose != nil {
		b = protoutils.AppendMessage(b, constraintRelativePoseField, m.RelativePose)
	}
	b = protoutils.AppendInt32(b, constraintTagField, int32(m.Tag))
	b = protoutils.AppendDouble(b, constraintTranslationWeightField, m.TranslationWeight)
	return protoutils.AppendDouble(b, constraintRotationWeightField, m.RotationWeight)
}

// MergeWire merges the encoded message in b into m.
func (m *Constraint) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case constraintSubmapIDField:
			if m.SubmapID == nil {
				m.SubmapID = &SubmapID{}
			}
			return protoutils.DecodeMessage(num, typ, value, m.SubmapID)
		case constraintScanIDField:
			if m.ScanID == nil {
				m.ScanID = &ScanID{}
			}
			return protoutils.DecodeMessage(num, typ, value, m.ScanID)
		case constraintRelativePoseField:
			if m.RelativePose == nil {
				m.RelativePose = &transformpb.Rigid3d{}
			}
			return protoutils.DecodeMessage(num, typ, value, m.RelativePose)
		case constraintTagField:
			tag, err := protoutils.DecodeInt32(num, typ, value)
			m.Tag = ConstraintTag(tag)
			return err
		case constraintTranslationWeightField:
			var err error
			m.TranslationWeight, err = protoutils.DecodeDouble(num, typ, value)
			return err
		case constraintRotationWeightField:
			var err error
			m.RotationWeight, err = protoutils.DecodeDouble(num, typ, value)
			return err
		}
		return nil
	})
}

// AppendWire appends the encoded message to b.
func (m *SubmapID) AppendWire(b []byte) []byte {
	b = protoutils.AppendInt32(b, idTrajectoryIDField, m.TrajectoryID)
	return protoutils.AppendInt32(b, idIndexField, m.SubmapIndex)
}

// MergeWire merges the encoded message in b into m.
func (m *SubmapID) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		switch num {
		case idTrajectoryIDField:
			m.TrajectoryID, err = protoutils.DecodeInt32(num, typ, value)
		case idIndexField:
			m.SubmapIndex, err = protoutils.DecodeInt32(num, typ, value)
		}
		return err
	})
}

// AppendWire appends the encoded message to b.
func (m *ScanID) AppendWire(b []byte) []byte {
	b = protoutils.AppendInt32(b, idTrajectoryIDField, m.TrajectoryID)
	return protoutils.AppendInt32(b, idIndexField, m.ScanIndex)
}

// MergeWire merges the encoded message in b into m.
func (m *ScanID) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		switch num {
		case idTrajectoryIDField:
			m.TrajectoryID, err = protoutils.DecodeInt32(num, typ, value)
		case idIndexField:
			m.ScanIndex, err = protoutils.DecodeInt32(num, typ, value)
		}
		return err
	})
}

// AppendWire appends the encoded message to b.
func (m *Trajectory) AppendWire(b []byte) []byte {
	for _, n := range m.Node {
		b = protoutils.AppendMessage(b, trajectoryNodeField, n)
	}
	for _, s := range m.Submap {
		b = protoutils.AppendMessage(b, trajectorySubmapField, s)
	}
	return b
}

// MergeWire merges the encoded message in b into m.
func (m *Trajectory) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case trajectoryNodeField:
			n := &TrajectoryNode{}
			if err := protoutils.DecodeMessage(num, typ, value, n); err != nil {
				return err
			}
			m.Node = append(m.Node, n)
		case trajectorySubmapField:
			s := &TrajectorySubmap{}
			if err := protoutils.DecodeMessage(num, typ, value, s); err != nil {
				return err
			}
			m.Submap = append(m.Submap, s)
		}
		return nil
	})
}

// AppendWire appends the encoded message to b.
func (m *TrajectoryNode) AppendWire(b []byte) []byte {
	b = protoutils.AppendInt64(b, nodeTimestampField, m.Timestamp)
	if m.Pose != nil {
		b = protoutils.AppendMessage(b, nodePoseField, m.Pose)
	}
	return b
}

// MergeWire merges the encoded message in b into m.
func (m *TrajectoryNode) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case nodeTimestampField:
			var err error
			m.Timestamp, err = protoutils.DecodeInt64(num, typ, value)
			return err
		case nodePoseField:
			if m.Pose == nil {
				m.Pose = &transformpb.Rigid3d{}
			}
			return protoutils.DecodeMessage(num, typ, value, m.Pose)
		}
		return nil
	})
}

// AppendWire appends the encoded message to b.
func (m *TrajectorySubmap) AppendWire(b []byte) []byte {
	if m.Pose != nil {
		b = protoutils.AppendMessage(b, submapPoseField, m.Pose)
	}
	return b
}

// MergeWire merges the encoded message in b into m.
func (m *TrajectorySubmap) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		if num == submapPoseField {
			if m.Pose == nil {
				m.Pose = &transformpb.Rigid3d{}
			}
			return protoutils.DecodeMessage(num, typ, value, m.Pose)
		}
		return nil
	})
}
