// Package v1 contains the wire messages of transform.proto.
package v1

import (
	"google.golang.org/protobuf/encoding/protowire"

	"go.viam.com/posegraph/protoutils"
)

// Field numbers of transform.proto.
const (
	vector3dXField = protowire.Number(1)
	vector3dYField = protowire.Number(2)
	vector3dZField = protowire.Number(3)

	quaterniondXField = protowire.Number(1)
	quaterniondYField = protowire.Number(2)
	quaterniondZField = protowire.Number(3)
	quaterniondWField = protowire.Number(4)

	rigid3dTranslationField = protowire.Number(1)
	rigid3dRotationField    = protowire.Number(2)
)

// Vector3d is a translation in meters.
type Vector3d struct {
	X, Y, Z float64
}

// Quaterniond is a rotation stored as (x, y, z, w).
type Quaterniond struct {
	X, Y, Z, W float64
}

// Rigid3d is a rigid transform: a translation and a rotation.
type Rigid3d struct {
	Translation *Vector3d
	Rotation    *Quaterniond
}

// AppendWire appends the encoded message to b.
func (m *Vector3d) AppendWire(b []byte) []byte {
	b = protoutils.AppendDouble(b, vector3dXField, m.X)
	b = protoutils.AppendDouble(b, vector3dYField, m.Y)
	return protoutils.AppendDouble(b, vector3dZField, m.Z)
}

// MergeWire merges the encoded message in b into m.
func (m *Vector3d) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		switch num {
		case vector3dXField:
			m.X, err = protoutils.DecodeDouble(num, typ, value)
		case vector3dYField:
			m.Y, err = protoutils.DecodeDouble(num, typ, value)
		case vector3dZField:
			m.Z, err = protoutils.DecodeDouble(num, typ, value)
		}
		return err
	})
}

// AppendWire appends the encoded message to b.
func (m *Quaterniond) AppendWire(b []byte) []byte {
	b = protoutils.AppendDouble(b, quaterniondXField, m.X)
	b = protoutils.AppendDouble(b, quaterniondYField, m.Y)
	b = protoutils.AppendDouble(b, quaterniondZField, m.Z)
	return protoutils.AppendDouble(b, quaterniondWField, m.W)
}

// MergeWire merges the encoded message in b into m.
func (m *Quaterniond) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		var err error
		switch num {
		case quaterniondXField:
			m.X, err = protoutils.DecodeDouble(num, typ, value)
		case quaterniondYField:
			m.Y, err = protoutils.DecodeDouble(num, typ, value)
		case quaterniondZField:
			m.Z, err = protoutils.DecodeDouble(num, typ, value)
		case quaterniondWField:
			m.W, err = protoutils.DecodeDouble(num, typ, value)
		}
		return err
	})
}

// AppendWire appends the encoded message to b. Unset sub-messages are omitted.
func (m *Rigid3d) AppendWire(b []byte) []byte {
	if m.Translation != nil {
		b = protoutils.AppendMessage(b, rigid3dTranslationField, m.Translation)
	}
	if m.Rotation != nil {
		b = protoutils.AppendMessage(b, rigid3dRotationField, m.Rotation)
	}
	return b
}

// MergeWire merges the encoded message in b into m.
func (m *Rigid3d) MergeWire(b []byte) error {
	return protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case rigid3dTranslationField:
			if m.Translation == nil {
				m.Translation = &Vector3d{}
			}
			return protoutils.DecodeMessage(num, typ, value, m.Translation)
		case rigid3dRotationField:
			if m.Rotation == nil {
				m.Rotation = &Quaterniond{}
			}
			return protoutils.DecodeMessage(num, typ, value, m.Rotation)
		}
		return nil
	})
}
