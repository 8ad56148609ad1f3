// Package cli contains the posegraph command line: loading sparse pose graph options and
// writing and reading sparse pose graphs in their wire format.
package cli

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"go.viam.com/posegraph/logging"
)

const (
	flagDebug     = "debug"
	flagConfig    = "config"
	flagSection   = "section"
	flagInput     = "input"
	flagOutput    = "output"
	flagDelimited = "delimited"

	loggerMetadataKey = "logger"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "posegraph",
		Usage:           "load sparse pose graph options and convert pose graphs to and from their wire format",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			level := zapcore.InfoLevel
			if c.Bool(flagDebug) {
				level = zapcore.DebugLevel
			}
			errWriter := c.App.ErrWriter
			if errWriter == nil {
				errWriter = os.Stderr
			}
			// Logs go to the error stream so the output of a command can be piped.
			logger := logging.NewWriterLogger("posegraph", errWriter, level)
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]interface{}{}
			}
			c.App.Metadata[loggerMetadataKey] = logger
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "options",
				Usage:     "load and validate sparse pose graph options",
				UsageText: "posegraph options --config <file> [--section <path>]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Usage:    "load options from `FILE` (json or yaml)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagSection,
						Usage: "dot separated `PATH` of the options within the file",
						Value: "sparse_pose_graph",
					},
				},
				Action: OptionsAction,
			},
			{
				Name:      "serialize",
				Usage:     "encode graph descriptions in the sparse pose graph wire format",
				UsageText: "posegraph serialize --input <file> [--input <file>...] --output <file> [--delimited]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     flagInput,
						Aliases:  []string{"i"},
						Usage:    "graph description `FILE` (json or yaml)",
						Required: true,
					},
					&cli.PathFlag{
						Name:     flagOutput,
						Aliases:  []string{"o"},
						Usage:    "write the encoded graph to `FILE`",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  flagDelimited,
						Usage: "write a size delimited stream of graphs, one per input",
					},
				},
				Action: SerializeAction,
			},
			{
				Name:      "inspect",
				Usage:     "print the contents of an encoded sparse pose graph",
				UsageText: "posegraph inspect --input <file> [--delimited]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagInput,
						Aliases:  []string{"i"},
						Usage:    "encoded graph `FILE`",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  flagDelimited,
						Usage: "read a size delimited stream of graphs",
					},
				},
				Action: InspectAction,
			},
		},
	}
}

func loggerFromContext(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[loggerMetadataKey].(logging.Logger); ok {
		return logger
	}
	return logging.Global()
}
