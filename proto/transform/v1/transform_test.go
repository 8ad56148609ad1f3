package v1

import (
	"math"
	"testing"

	"go.viam.com/test"
	"google.golang.org/protobuf/encoding/protowire"

	"go.viam.com/posegraph/protoutils"
)

func TestRigid3dWire(t *testing.T) {
	r := &Rigid3d{
		Translation: &Vector3d{X: 1, Y: -2.5, Z: math.Inf(1)},
		Rotation:    &Quaterniond{X: 0.1, Y: 0.2, Z: 0.3, W: math.Sqrt(1 - 0.14)},
	}
	b, err := protoutils.Marshal(r)
	test.That(t, err, test.ShouldBeNil)

	var decoded Rigid3d
	test.That(t, decoded.MergeWire(b), test.ShouldBeNil)
	test.That(t, &decoded, test.ShouldResemble, r)
}

func TestVector3dWireLayout(t *testing.T) {
	b := (&Vector3d{X: 1, Y: 2, Z: 3}).AppendWire(nil)
	test.That(t, b, test.ShouldHaveLength, 27)

	var nums []protowire.Number
	test.That(t, protoutils.RangeFields(b, func(num protowire.Number, typ protowire.Type, _ []byte) error {
		test.That(t, typ, test.ShouldEqual, protowire.Fixed64Type)
		nums = append(nums, num)
		return nil
	}), test.ShouldBeNil)
	test.That(t, nums, test.ShouldResemble, []protowire.Number{1, 2, 3})
}

func TestRigid3dOmitsUnsetFields(t *testing.T) {
	test.That(t, (&Rigid3d{}).AppendWire(nil), test.ShouldBeEmpty)

	b := (&Rigid3d{Rotation: &Quaterniond{W: 1}}).AppendWire(nil)
	var decoded Rigid3d
	test.That(t, decoded.MergeWire(b), test.ShouldBeNil)
	test.That(t, decoded.Translation, test.ShouldBeNil)
	test.That(t, decoded.Rotation, test.ShouldResemble, &Quaterniond{W: 1})
}

func TestQuaterniondRejectsWrongWireType(t *testing.T) {
	b := protoutils.AppendInt64(nil, quaterniondWField, 1)
	var q Quaterniond
	test.That(t, q.MergeWire(b), test.ShouldNotBeNil)
}
