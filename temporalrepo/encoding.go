package temporalrepo

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/decred/dcrd/wire"
)

// writeBytes/readBytes encode a length-prefixed byte slice, the same
// convention node.Serialize uses for its own variable-length fields.
func writeBytes(w *bytes.Buffer, b []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(b)))
	w.Write(length[:])
	w.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var length [4]byte
	if _, err := readFull(r, length[:]); err != nil {
		return nil, errors.Wrap(err, "read length prefix")
	}
	n := binary.BigEndian.Uint32(length[:])
	b := make([]byte, n)
	if _, err := readFull(r, b); err != nil {
		return nil, errors.Wrap(err, "read bytes")
	}
	return b, nil
}

func writeInt64(w *bytes.Buffer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "write int64")
}

func readInt64(r *bytes.Reader) (int64, error) {
	var buf [8]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "read int64")
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func writeInt32(w *bytes.Buffer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "write int32")
}

func readInt32(r *bytes.Reader) (int32, error) {
	var buf [4]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "read int32")
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func writeNameAndOutPoint(w *bytes.Buffer, name []byte, op wire.OutPoint) error {
	writeBytes(w, name)
	if _, err := w.Write(op.Hash[:]); err != nil {
		return errors.Wrap(err, "write outpoint hash")
	}
	return writeInt32(w, int32(op.Index))
}

func readNameAndOutPoint(r *bytes.Reader) ([]byte, wire.OutPoint, error) {
	var op wire.OutPoint
	name, err := readBytes(r)
	if err != nil {
		return nil, op, err
	}
	if _, err := readFull(r, op.Hash[:]); err != nil {
		return nil, op, errors.Wrap(err, "read outpoint hash")
	}
	index, err := readInt32(r)
	if err != nil {
		return nil, op, err
	}
	op.Index = uint32(index)
	return name, op, nil
}

func readFull(r io.Reader, buf []byte) (int, error) {
	return io.ReadFull(r, buf)
}
