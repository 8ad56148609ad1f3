// Package main is the posegraph command line.
package main

import (
	"os"

	"go.uber.org/zap/zapcore"

	"go.viam.com/posegraph/cli"
	"go.viam.com/posegraph/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.NewWriterLogger("posegraph", os.Stderr, zapcore.InfoLevel).Fatal(err)
	}
}
