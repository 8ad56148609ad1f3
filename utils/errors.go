// Package utils contains small helpers shared across posegraph packages.
package utils

import (
	"reflect"

	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError[ExpectedT any](actual interface{}) error {
	return errors.Errorf("expected %s but got %T", TypeStr[ExpectedT](), actual)
}

// NewKeyNotFoundError is used when a required configuration key is missing.
func NewKeyNotFoundError(key string) error {
	return errors.Errorf("key %q not found", key)
}

// TypeStr returns the name of the type parameter, including interfaces.
func TypeStr[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
