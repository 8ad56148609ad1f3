// Package config reads nested key/value configuration sources, such as the options of the sparse
// pose graph, and exposes them through typed lookups.
package config

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.uber.org/multierr"

	"go.viam.com/posegraph/utils"
)

// Dictionary is a nested key/value configuration source. Every lookup fails when the key is
// missing or holds a value of the wrong type.
type Dictionary interface {
	HasKey(key string) bool
	Keys() []string

	GetString(key string) (string, error)
	GetBool(key string) (bool, error)
	GetInt(key string) (int, error)
	GetNonNegativeInt(key string) (int, error)
	GetDouble(key string) (float64, error)
	GetDictionary(key string) (Dictionary, error)

	// AsMap returns the raw values of the dictionary and marks all of them as used.
	AsMap() map[string]interface{}
}

// An AttributeDictionary is a Dictionary over a decoded JSON or YAML document. It remembers which
// keys have been read so that typos in a configuration file can be reported.
type AttributeDictionary struct {
	path     string
	values   map[string]interface{}
	used     map[string]bool
	children map[string]*AttributeDictionary
}

// NewAttributeDictionary returns a dictionary over the given values.
func NewAttributeDictionary(values map[string]interface{}) *AttributeDictionary {
	return newAttributeDictionary("", values)
}

func newAttributeDictionary(path string, values map[string]interface{}) *AttributeDictionary {
	if values == nil {
		values = map[string]interface{}{}
	}
	return &AttributeDictionary{
		path:     path,
		values:   values,
		used:     map[string]bool{},
		children: map[string]*AttributeDictionary{},
	}
}

// HasKey returns whether the key is present. It does not mark the key as used.
func (ad *AttributeDictionary) HasKey(key string) bool {
	_, ok := ad.values[key]
	return ok
}

// Keys returns all keys of the dictionary in sorted order.
func (ad *AttributeDictionary) Keys() []string {
	keys := lo.Keys(ad.values)
	sort.Strings(keys)
	return keys
}

// GetString returns the string stored at key.
func (ad *AttributeDictionary) GetString(key string) (string, error) {
	v, err := ad.get(key)
	if err != nil {
		return "", err
	}
	s, err := utils.AssertType[string](v)
	return s, ad.wrap(err, key)
}

// GetBool returns the boolean stored at key.
func (ad *AttributeDictionary) GetBool(key string) (bool, error) {
	v, err := ad.get(key)
	if err != nil {
		return false, err
	}
	b, err := utils.AssertType[bool](v)
	return b, ad.wrap(err, key)
}

// GetInt returns the integer stored at key. Floating point values are accepted only if they are
// integral, since JSON decodes every number as a float64.
func (ad *AttributeDictionary) GetInt(key string) (int, error) {
	v, err := ad.get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case string, bool:
		return 0, ad.wrap(utils.NewUnexpectedTypeError[int](v), key)
	case float32:
		if !isIntegral(float64(n)) {
			return 0, ad.wrap(errors.Errorf("%v is not an integer", n), key)
		}
	case float64:
		if !isIntegral(n) {
			return 0, ad.wrap(errors.Errorf("%v is not an integer", n), key)
		}
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return 0, ad.wrap(err, key)
	}
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0, ad.wrap(errors.Errorf("%d does not fit in 32 bits", i), key)
	}
	return int(i), nil
}

// GetNonNegativeInt returns the integer stored at key and fails if it is negative.
func (ad *AttributeDictionary) GetNonNegativeInt(key string) (int, error) {
	i, err := ad.GetInt(key)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, ad.wrap(errors.Errorf("%d is negative", i), key)
	}
	return i, nil
}

// GetDouble returns the number stored at key as a float64.
func (ad *AttributeDictionary) GetDouble(key string) (float64, error) {
	v, err := ad.get(key)
	if err != nil {
		return 0, err
	}
	switch v.(type) {
	case string, bool:
		return 0, ad.wrap(utils.NewUnexpectedTypeError[float64](v), key)
	}
	f, err := cast.ToFloat64E(v)
	return f, ad.wrap(err, key)
}

// GetDictionary returns the nested dictionary stored at key. Repeated lookups of the same key
// return the same dictionary so that key usage is tracked across them.
func (ad *AttributeDictionary) GetDictionary(key string) (Dictionary, error) {
	if child, ok := ad.children[key]; ok {
		return child, nil
	}
	v, err := ad.get(key)
	if err != nil {
		return nil, err
	}
	m, err := utils.AssertType[map[string]interface{}](v)
	if err != nil {
		return nil, ad.wrap(err, key)
	}
	child := newAttributeDictionary(ad.qualify(key), m)
	ad.children[key] = child
	return child, nil
}

// AsMap returns the raw values and marks every key, recursively, as used.
func (ad *AttributeDictionary) AsMap() map[string]interface{} {
	for key := range ad.values {
		ad.used[key] = true
	}
	for _, child := range ad.children {
		child.AsMap()
	}
	return ad.values
}

// UnusedKeys returns the fully qualified names of all keys, including those of nested
// dictionaries that were looked up, that have never been read.
func (ad *AttributeDictionary) UnusedKeys() []string {
	var unused []string
	for _, key := range ad.Keys() {
		if !ad.used[key] {
			unused = append(unused, ad.qualify(key))
			continue
		}
		if child, ok := ad.children[key]; ok {
			unused = append(unused, child.UnusedKeys()...)
		}
	}
	return unused
}

// CheckAllKeysUsed returns an error naming every key of the dictionary that was never read.
// Dictionaries that do not track key usage always pass.
func CheckAllKeysUsed(d Dictionary) error {
	tracker, ok := d.(interface{ UnusedKeys() []string })
	if !ok {
		return nil
	}
	var err error
	for _, key := range tracker.UnusedKeys() {
		err = multierr.Append(err, errors.Errorf("key %q was never used", key))
	}
	return err
}

func (ad *AttributeDictionary) get(key string) (interface{}, error) {
	v, ok := ad.values[key]
	if !ok {
		return nil, utils.NewKeyNotFoundError(ad.qualify(key))
	}
	ad.used[key] = true
	return v, nil
}

func (ad *AttributeDictionary) qualify(key string) string {
	if ad.path == "" {
		return key
	}
	return strings.Join([]string{ad.path, key}, ".")
}

func (ad *AttributeDictionary) wrap(err error, key string) error {
	return errors.Wrapf(err, "invalid value for %q", ad.qualify(key))
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}
