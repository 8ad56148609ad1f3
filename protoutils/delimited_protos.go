package protoutils

import (
	"bufio"
	"encoding/binary"
	"io"
	"iter"
	"math"

	"github.com/pkg/errors"
)

// DelimitedProtoWriter writes messages to an [io.Writer]. Each message is
// prefixed by its size in bytes so individual messages can later be retrieved.
// See also: [DelimitedProtoReader].
type DelimitedProtoWriter[M Message] struct {
	writer io.Writer
}

// RawDelimitedProtoReader reads messages from an [io.Reader] containing
// contents created by [DelimitedProtoWriter] and returns the encoded messages
// as byte slices. To automatically decode the messages during the iteration
// use a [DelimitedProtoReader].
type RawDelimitedProtoReader struct {
	reader io.Reader
	err    error
}

// DelimitedProtoReader iterates over messages from an [io.Reader] with
// contents created by [DelimitedProtoWriter]. It automatically decodes the
// messages at each step of the iteration.
type DelimitedProtoReader[T any, M interface {
	*T
	Message
}] struct {
	RawDelimitedProtoReader
}

// NewDelimitedProtoWriter creates a [DelimitedProtoWriter].
func NewDelimitedProtoWriter[M Message](writer io.Writer) *DelimitedProtoWriter[M] {
	return &DelimitedProtoWriter[M]{writer: writer}
}

// NewRawDelimitedProtoReader creates a [RawDelimitedProtoReader].
func NewRawDelimitedProtoReader(reader io.Reader) *RawDelimitedProtoReader {
	return &RawDelimitedProtoReader{reader: reader}
}

// NewDelimitedProtoReader creates a [DelimitedProtoReader].
func NewDelimitedProtoReader[T any, M interface {
	*T
	Message
}](reader io.Reader) *DelimitedProtoReader[T, M] {
	return &DelimitedProtoReader[T, M]{RawDelimitedProtoReader{reader: reader}}
}

// Close will close the underlying writer if it is a [io.Closer]. Otherwise it
// is a noop.
func (o *DelimitedProtoWriter[_]) Close() error {
	if closer, ok := o.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Append encodes the provided message and writes it to the underlying
// [io.Writer].
func (o *DelimitedProtoWriter[M]) Append(message M) error {
	messageBytes, err := Marshal(message)
	if err != nil {
		return err
	}
	if uint64(len(messageBytes)) > math.MaxUint32 {
		return errors.Errorf("message of %d bytes is too large to be delimited", len(messageBytes))
	}
	messageLenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(messageLenBytes, uint32(len(messageBytes)))
	for _, buffer := range [][]byte{messageLenBytes, messageBytes} {
		if _, err := o.writer.Write(buffer); err != nil {
			return err
		}
	}
	return nil
}

// Close will close the underlying reader if it is a [io.Closer]. Otherwise it
// is a noop.
func (o *RawDelimitedProtoReader) Close() error {
	if closer, ok := o.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Err returns the first error met by the last iteration, if any. A stream that
// ends in the middle of a message is an error.
func (o *RawDelimitedProtoReader) Err() error {
	return o.err
}

// All returns an [iter.Seq] that iterates over the individual messages of the
// underlying reader while decoding them into a new T. Iteration stops at the
// first message that cannot be decoded; check [RawDelimitedProtoReader.Err]
// afterwards.
func (o *DelimitedProtoReader[T, M]) All() iter.Seq[M] {
	return func(yield func(M) bool) {
		for messageBytes := range o.RawDelimitedProtoReader.All() {
			message := M(new(T))
			if err := message.MergeWire(messageBytes); err != nil {
				o.err = err
				return
			}
			if !yield(message) {
				return
			}
		}
	}
}

// All returns an [iter.Seq] that reads from the underlying
// [io.Reader] and iterates over the individual messages inside. The []byte
// yielded may be overwritten on subsequent iterations. If you need to use the
// yielded []byte outside an iteration you must copy it somewhere else.
func (o *RawDelimitedProtoReader) All() iter.Seq[[]byte] {
	// 2 GiB, the largest message protobuf allows
	const protoMaxBytes = 1024 * 1024 * 1024 * 2
	// Max message size + 4 bytes for the length header
	const bufferMaxSize = protoMaxBytes + 4
	// Fall back to max int size if necessary so the 32-bit tests pass.
	const realMaxSize = min(bufferMaxSize, math.MaxInt)
	return func(yield func([]byte) bool) {
		o.err = nil
		scanner := bufio.NewScanner(o.reader)
		// Start with no buffer and let bufio figure out the initial allocation +
		// when it needs to be resized.
		scanner.Buffer(nil, realMaxSize)
		scanner.Split(splitMessages)

		for scanner.Scan() {
			if !yield(scanner.Bytes()) {
				return
			}
		}
		o.err = scanner.Err()
	}
}

var errTruncatedMessage = errors.New("delimited stream ends in the middle of a message")

func splitMessages(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if len(data) < 4 {
		if !atEOF {
			return 0, nil, nil
		}
		if len(data) == 0 {
			return 0, nil, nil
		}
		return 0, nil, errTruncatedMessage
	}
	messageSize := binary.LittleEndian.Uint32(data[:4])
	messageBytes := data[4:]
	if uint64(len(messageBytes)) < uint64(messageSize) {
		if atEOF {
			return 0, nil, errTruncatedMessage
		}
		// Don't have the entire message in the buffer, request bufio read more in
		// and try again.
		return 0, nil, nil
	}
	messageBytes = messageBytes[:messageSize]
	return int(messageSize) + 4, messageBytes, nil
}
