package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/posegraph/config"
	"go.viam.com/posegraph/mapping"
	pb "go.viam.com/posegraph/proto/mapping/v1"
	"go.viam.com/posegraph/protoutils"
	"go.viam.com/posegraph/spatialmath"
	"go.viam.com/posegraph/utils"
)

// OptionsAction loads the sparse pose graph options from a file, rejects keys that were never
// read, and prints the resulting options as JSON.
func OptionsAction(c *cli.Context) error {
	logger := loggerFromContext(c).Sublogger("options")

	d, err := config.Read(c.Path(flagConfig))
	if err != nil {
		return err
	}
	section, err := config.Lookup(d, c.String(flagSection))
	if err != nil {
		return err
	}
	opts, err := mapping.CreateSparsePoseGraphOptions(section, mapping.DefaultSubOptionsLoaders(), logger)
	if err != nil {
		return errors.Wrap(err, "invalid sparse pose graph options")
	}
	if err := config.CheckAllKeysUsed(section); err != nil {
		return errors.Wrap(err, "invalid sparse pose graph options")
	}

	out, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	return nil
}

// SerializeAction builds a graph from each graph description and writes it in the wire format.
func SerializeAction(c *cli.Context) error {
	logger := loggerFromContext(c).Sublogger("serialize")
	inputs := c.StringSlice(flagInput)
	output := c.Path(flagOutput)
	delimited := c.Bool(flagDelimited)

	if !delimited && len(inputs) != 1 {
		return errors.Errorf("expected exactly one --%s without --%s, got %d", flagInput, flagDelimited, len(inputs))
	}

	graphs := make([]*pb.SparsePoseGraph, 0, len(inputs))
	for _, input := range inputs {
		same, err := samePath(input, output)
		if err != nil {
			return err
		}
		if same {
			return errors.Errorf("refusing to overwrite input %q", input)
		}

		d, err := config.Read(input)
		if err != nil {
			return err
		}
		desc, err := decodeGraphDescription(d)
		if err != nil {
			return errors.Wrapf(err, "%q", input)
		}
		g, err := desc.buildGraph(logger)
		if err != nil {
			return errors.Wrapf(err, "%q", input)
		}
		graphs = append(graphs, g.ToProto())
	}

	file, err := createOutputFile(output)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(file.Close)

	if delimited {
		writer := protoutils.NewDelimitedProtoWriter[*pb.SparsePoseGraph](file)
		for _, graph := range graphs {
			if err := writer.Append(graph); err != nil {
				return errors.Wrapf(err, "cannot write %q", output)
			}
		}
	} else {
		b, err := graphs[0].Marshal()
		if err != nil {
			return err
		}
		if _, err := file.Write(b); err != nil {
			return errors.Wrapf(err, "cannot write %q", output)
		}
	}
	if err := file.Sync(); err != nil {
		return err
	}

	logger.Debugw("wrote sparse pose graphs", "output", output, "count", len(graphs))
	printf(c.App.Writer, "wrote %d sparse pose graph(s) to %s", len(graphs), output)
	return nil
}

// InspectAction prints the constraints and trajectories of encoded graphs as tables.
func InspectAction(c *cli.Context) error {
	input := c.Path(flagInput)

	if !c.Bool(flagDelimited) {
		b, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		var graph pb.SparsePoseGraph
		if err := graph.Unmarshal(b); err != nil {
			return err
		}
		return printGraph(c.App.Writer, "", &graph)
	}

	//nolint:gosec
	file, err := os.Open(input)
	if err != nil {
		return err
	}
	reader := protoutils.NewDelimitedProtoReader[pb.SparsePoseGraph](file)
	defer goutils.UncheckedErrorFunc(reader.Close)

	i := 0
	for graph := range reader.All() {
		if err := printGraph(c.App.Writer, fmt.Sprintf("graph %d: ", i), graph); err != nil {
			return err
		}
		i++
	}
	return errors.Wrapf(reader.Err(), "cannot read %q", input)
}

func printGraph(w io.Writer, prefix string, graph *pb.SparsePoseGraph) error {
	// Rejects unsupported constraint tags before anything is printed.
	if _, err := mapping.FromProto(graph); err != nil {
		return err
	}

	constraints := table.NewWriter()
	constraints.SetTitle(fmt.Sprintf("%s%d constraints", prefix, len(graph.Constraint)))
	constraints.AppendHeader(table.Row{"#", "Submap", "Node", "Tag", "Translation", "Rotation", "Weights"})
	for i, c := range graph.Constraint {
		pose := spatialmath.NewPoseFromProtobuf(c.RelativePose)
		constraints.AppendRow(table.Row{
			i,
			fmt.Sprintf("(%d, %d)", c.SubmapID.TrajectoryID, c.SubmapID.SubmapIndex),
			fmt.Sprintf("(%d, %d)", c.ScanID.TrajectoryID, c.ScanID.ScanIndex),
			c.Tag,
			formatTranslation(pose),
			formatRotation(pose),
			fmt.Sprintf("%g / %g", c.TranslationWeight, c.RotationWeight),
		})
	}
	printf(w, "%s", constraints.Render())

	trajectories := table.NewWriter()
	trajectories.SetTitle(fmt.Sprintf("%s%d trajectories", prefix, len(graph.Trajectory)))
	trajectories.AppendHeader(table.Row{"#", "Nodes", "Submaps", "First node", "Last node"})
	for i, trajectory := range graph.Trajectory {
		first, last := "", ""
		if n := len(trajectory.Node); n > 0 {
			first = formatNode(trajectory.Node[0])
			last = formatNode(trajectory.Node[n-1])
		}
		trajectories.AppendRow(table.Row{i, len(trajectory.Node), len(trajectory.Submap), first, last})
	}
	printf(w, "%s", trajectories.Render())
	return nil
}

func formatNode(node *pb.TrajectoryNode) string {
	pose := spatialmath.NewPoseFromProtobuf(node.Pose)
	return fmt.Sprintf("%s %s", utils.FromUniversal(node.Timestamp).Format(time.RFC3339Nano), formatTranslation(pose))
}

func formatTranslation(pose spatialmath.Pose) string {
	pt := pose.Point()
	return fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", pt.X, pt.Y, pt.Z)
}

func formatRotation(pose spatialmath.Pose) string {
	aa := pose.Orientation().AxisAngles()
	return fmt.Sprintf("Theta:%.4f, RX:%.3f, RY:%.3f, RZ:%.3f", aa.Theta, aa.RX, aa.RY, aa.RZ)
}
