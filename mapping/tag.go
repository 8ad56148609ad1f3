package mapping

import (
	"fmt"

	pb "go.viam.com/posegraph/proto/mapping/v1"
)

// TagToProto maps a constraint tag to its wire counterpart. It panics on a value outside of the
// enumeration.
func TagToProto(tag Tag) pb.ConstraintTag {
	switch tag {
	case IntraSubmap:
		return pb.ConstraintTagIntraSubmap
	case InterSubmap:
		return pb.ConstraintTagInterSubmap
	}
	panic(fmt.Sprintf("unsupported constraint tag %d", int(tag)))
}

// TagFromProto maps a wire constraint tag to its in-memory counterpart. It panics on a value
// outside of the enumeration; callers decoding untrusted input check pb.ConstraintTag.IsValid first.
func TagFromProto(tag pb.ConstraintTag) Tag {
	switch tag {
	case pb.ConstraintTagIntraSubmap:
		return IntraSubmap
	case pb.ConstraintTagInterSubmap:
		return InterSubmap
	}
	panic(fmt.Sprintf("unsupported constraint tag %v", tag))
}
