// Package protoutils are a collection of util methods for reading and writing the protobuf wire format
// of the hand-maintained messages under proto/.
package protoutils

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every wire message in this module. AppendWire appends the encoded
// fields of the message to b; MergeWire merges the encoded fields in b into the message.
type Message interface {
	AppendWire(b []byte) []byte
	MergeWire(b []byte) error
}

// AppendDouble appends a double field.
func AppendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// AppendInt32 appends an int32 field. Negative values are sign extended to ten bytes as protobuf requires.
func AppendInt32(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// AppendInt64 appends an int64 field.
func AppendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// AppendMessage appends a length-delimited embedded message field.
func AppendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.AppendWire(nil))
}

// Marshal encodes a message into a new buffer.
func Marshal(m Message) ([]byte, error) {
	return m.AppendWire(nil), nil
}

// RangeFields walks the fields encoded in b in order. For each field, fn receives the field number,
// its wire type and the raw encoded value (without the tag).
func RangeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, value []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "invalid field tag")
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return errors.Wrapf(protowire.ParseError(m), "invalid value for field %d", num)
		}
		if err := fn(num, typ, b[:m]); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

// DecodeDouble decodes the raw value of a double field.
func DecodeDouble(num protowire.Number, typ protowire.Type, value []byte) (float64, error) {
	if err := checkType(num, typ, protowire.Fixed64Type); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeFixed64(value)
	if n < 0 {
		return 0, errors.Wrapf(protowire.ParseError(n), "field %d", num)
	}
	return math.Float64frombits(v), nil
}

// DecodeInt32 decodes the raw value of an int32 or enum field.
func DecodeInt32(num protowire.Number, typ protowire.Type, value []byte) (int32, error) {
	v, err := DecodeInt64(num, typ, value)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// DecodeInt64 decodes the raw value of an int64 field.
func DecodeInt64(num protowire.Number, typ protowire.Type, value []byte) (int64, error) {
	if err := checkType(num, typ, protowire.VarintType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeVarint(value)
	if n < 0 {
		return 0, errors.Wrapf(protowire.ParseError(n), "field %d", num)
	}
	return int64(v), nil
}

// DecodeMessage merges the raw value of an embedded message field into m.
func DecodeMessage(num protowire.Number, typ protowire.Type, value []byte, m Message) error {
	if err := checkType(num, typ, protowire.BytesType); err != nil {
		return err
	}
	v, n := protowire.ConsumeBytes(value)
	if n < 0 {
		return errors.Wrapf(protowire.ParseError(n), "field %d", num)
	}
	return errors.Wrapf(m.MergeWire(v), "field %d", num)
}

func checkType(num protowire.Number, got, want protowire.Type) error {
	if got != want {
		return errors.Errorf("field %d has wire type %d, expected %d", num, got, want)
	}
	return nil
}
