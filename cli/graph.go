package cli

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/posegraph/config"
	"go.viam.com/posegraph/logging"
	"go.viam.com/posegraph/mapping"
	"go.viam.com/posegraph/spatialmath"
)

// graphDescription is a human editable description of a sparse pose graph. Trajectory ids are the
// positions of the trajectories in the list.
type graphDescription struct {
	Constraints  []constraintDescription `json:"constraints"`
	Trajectories []trajectoryDescription `json:"trajectories"`
}

type constraintDescription struct {
	SubmapID          idDescription   `json:"submap_id"`
	NodeID            idDescription   `json:"node_id"`
	RelativePose      poseDescription `json:"relative_pose"`
	TranslationWeight float64         `json:"translation_weight"`
	RotationWeight    float64         `json:"rotation_weight"`
	Tag               string          `json:"tag"`
}

type idDescription struct {
	TrajectoryID int `json:"trajectory_id"`
	Index        int `json:"index"`
}

type trajectoryDescription struct {
	Nodes   []nodeDescription `json:"nodes"`
	Submaps []poseDescription `json:"submaps"`
}

type nodeDescription struct {
	Time           time.Time        `json:"time"`
	Pose           poseDescription  `json:"pose"`
	TrackingToPose *poseDescription `json:"tracking_to_pose"`
}

type poseDescription struct {
	Translation *r3.Vector             `json:"translation"`
	Rotation    *quaternionDescription `json:"rotation"`
}

type quaternionDescription struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p *poseDescription) pose() spatialmath.Pose {
	if p == nil {
		return spatialmath.NewZeroPose()
	}
	var point r3.Vector
	if p.Translation != nil {
		point = *p.Translation
	}
	if p.Rotation == nil {
		return spatialmath.NewPoseFromPoint(point)
	}
	q := spatialmath.Quaternion{Real: p.Rotation.W, Imag: p.Rotation.X, Jmag: p.Rotation.Y, Kmag: p.Rotation.Z}
	return spatialmath.NewPose(point, &q)
}

func parseTag(tag string) (mapping.Tag, error) {
	switch tag {
	case mapping.IntraSubmap.String():
		return mapping.IntraSubmap, nil
	case mapping.InterSubmap.String():
		return mapping.InterSubmap, nil
	default:
		return 0, errors.Errorf("unknown constraint tag %q", tag)
	}
}

// decodeGraphDescription decodes a graph description from a configuration dictionary.
func decodeGraphDescription(d config.Dictionary) (*graphDescription, error) {
	var desc graphDescription
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		TagName:     "json",
		Result:      &desc,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(d.AsMap()); err != nil {
		return nil, errors.Wrap(err, "cannot decode graph description")
	}
	return &desc, nil
}

// buildGraph adds every trajectory and constraint of the description to a new graph.
func (desc *graphDescription) buildGraph(logger logging.Logger) (*mapping.SparsePoseGraph, error) {
	g := mapping.NewSparsePoseGraph(logger)
	for trajectoryID, trajectory := range desc.Trajectories {
		if err := g.AddTrajectory(trajectoryID); err != nil {
			return nil, err
		}
		for i, node := range trajectory.Nodes {
			if _, err := g.AddTrajectoryNode(&mapping.TrajectoryNodeConstantData{
				Time:           node.Time,
				TrajectoryID:   trajectoryID,
				TrackingToPose: node.TrackingToPose.pose(),
			}, node.Pose.pose()); err != nil {
				return nil, errors.Wrapf(err, "trajectory %d node %d", trajectoryID, i)
			}
		}
		for i := range trajectory.Submaps {
			if _, err := g.AddSubmap(trajectoryID, trajectory.Submaps[i].pose()); err != nil {
				return nil, errors.Wrapf(err, "trajectory %d submap %d", trajectoryID, i)
			}
		}
	}

	for i, c := range desc.Constraints {
		tag, err := parseTag(c.Tag)
		if err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i)
		}
		if err := g.AddConstraint(mapping.Constraint{
			SubmapID: mapping.SubmapID{TrajectoryID: c.SubmapID.TrajectoryID, SubmapIndex: c.SubmapID.Index},
			NodeID:   mapping.NodeID{TrajectoryID: c.NodeID.TrajectoryID, NodeIndex: c.NodeID.Index},
			Pose: mapping.ConstraintPose{
				ZbarIJ:            c.RelativePose.pose(),
				TranslationWeight: c.TranslationWeight,
				RotationWeight:    c.RotationWeight,
			},
			Tag: tag,
		}); err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i)
		}
	}
	return g, nil
}
