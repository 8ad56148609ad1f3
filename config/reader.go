package config

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Read reads a dictionary from the given file. Environment variables of the form ${VAR} are
// substituted before the file is decoded.
func Read(filePath string) (*AttributeDictionary, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a dictionary from the given reader and specifies
// where, if applicable, the file the reader originated from. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func FromReader(originalPath string, r io.Reader) (*AttributeDictionary, error) {
	values := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(originalPath)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&values); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %q as yaml", originalPath)
		}
	default:
		if err := json.NewDecoder(r).Decode(&values); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %q as json", originalPath)
		}
	}
	return NewAttributeDictionary(values), nil
}

// Lookup walks a dot separated path of nested dictionaries, e.g. "map_builder.sparse_pose_graph".
// An empty path returns d itself.
func Lookup(d Dictionary, path string) (Dictionary, error) {
	if path == "" {
		return d, nil
	}
	for _, key := range strings.Split(path, ".") {
		var err error
		if d, err = d.GetDictionary(key); err != nil {
			return nil, err
		}
	}
	return d, nil
}
