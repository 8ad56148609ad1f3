package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// samePath returns true if abs(path1) and abs(path2) are the same.
func samePath(path1, path2 string) (bool, error) {
	abs1, err := filepath.Abs(path1)
	if err != nil {
		return false, err
	}
	abs2, err := filepath.Abs(path2)
	if err != nil {
		return false, err
	}
	return abs1 == abs2, nil
}

// printf prints a message with a newline to the given writer.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// createOutputFile creates or truncates the file at filePath, creating its directory if needed.
func createOutputFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "could not create directory: %s", dir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not stat directory: %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("resolved path is not a directory: %s", dir)
	}

	//nolint:gosec
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "could not open file for writing")
	}
	return file, nil
}
