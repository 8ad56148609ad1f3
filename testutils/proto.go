package testutils

import (
	"testing"

	"github.com/jhump/protoreflect/desc/protoparse"
	"go.viam.com/test"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ProtoFiles are the schema files of the wire messages, relative to the module root.
var ProtoFiles = []string{
	"proto/transform/v1/transform.proto",
	"proto/mapping/v1/sparse_pose_graph.proto",
}

// LoadMessageDescriptor parses the schema files found under root and returns the descriptor of the
// named message, ready for use with dynamicpb and the protobuf runtime.
func LoadMessageDescriptor(t *testing.T, root string, name protoreflect.FullName) protoreflect.MessageDescriptor {
	t.Helper()
	parser := protoparse.Parser{ImportPaths: []string{root}}
	fds, err := parser.ParseFiles(ProtoFiles...)
	test.That(t, err, test.ShouldBeNil)

	set := &descriptorpb.FileDescriptorSet{}
	for _, fd := range fds {
		set.File = append(set.File, fd.AsFileDescriptorProto())
	}
	files, err := protodesc.NewFiles(set)
	test.That(t, err, test.ShouldBeNil)

	d, err := files.FindDescriptorByName(name)
	test.That(t, err, test.ShouldBeNil)
	md, ok := d.(protoreflect.MessageDescriptor)
	test.That(t, ok, test.ShouldBeTrue)
	return md
}
