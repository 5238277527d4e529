package node

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/decred/dcrd/wire"
)

// Serialize writes n in a fixed-width, big-endian, explicit layout
// (spec.md §4.3): a sorted children byte list, the claims vector, then
// the supports vector. The cached Hash is not persisted; it is always
// recomputed on load, since spec.md treats a stale on-disk hash as
// corruption rather than a value worth trusting (§4.2, check_consistency).
func (n *Node) Serialize(w io.Writer) error {
	children := make([]byte, 0, len(n.Children))
	for b := range n.Children {
		children = append(children, b)
	}
	bytesSortAsc(children)

	if err := writeUint32(w, uint32(len(children))); err != nil {
		return err
	}
	if _, err := w.Write(children); err != nil {
		return errors.Wrap(err, "write children")
	}

	if err := writeUint32(w, uint32(len(n.Claims))); err != nil {
		return err
	}
	for _, c := range n.Claims {
		if err := writeClaim(w, c); err != nil {
			return err
		}
	}

	if err := writeUint32(w, uint32(len(n.Supports))); err != nil {
		return err
	}
	for _, s := range n.Supports {
		if err := writeSupport(w, s); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reconstructs a Node from the layout Serialize writes. Per
// DESIGN.md's resolution of the "non-canonical order on disk" open
// question, a claims vector found out of I2 order is treated as
// corruption, not silently re-sorted.
func Deserialize(r io.Reader) (*Node, error) {
	n := New()

	childCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < childCount; i++ {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, errors.Wrap(err, "read child edge")
		}
		n.Children[b[0]] = true
	}

	claimCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	n.Claims = make(Claims, claimCount)
	for i := uint32(0); i < claimCount; i++ {
		c, err := readClaim(r)
		if err != nil {
			return nil, err
		}
		n.Claims[i] = c
	}
	if !sortedByI2(n.Claims) {
		return nil, errors.New("node: claims on disk are not in canonical I2 order")
	}

	supportCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	n.Supports = make([]*Support, supportCount)
	for i := uint32(0); i < supportCount; i++ {
		s, err := readSupport(r)
		if err != nil {
			return nil, err
		}
		n.Supports[i] = s
	}

	return n, nil
}

func sortedByI2(claims Claims) bool {
	for i := 1; i < len(claims); i++ {
		a, b := claims[i-1], claims[i]
		if a.EffectiveAmount < b.EffectiveAmount {
			return false
		}
		if a.EffectiveAmount == b.EffectiveAmount {
			if a.HeightValid > b.HeightValid {
				return false
			}
			if a.HeightValid == b.HeightValid && !a.ID.Less(b.ID) {
				return false
			}
		}
	}
	return true
}

func bytesSortAsc(b []byte) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j-1] > b[j]; j-- {
			b[j-1], b[j] = b[j], b[j-1]
		}
	}
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "write uint32")
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "read uint32")
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "write int64")
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "read int64")
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func writeOutPoint(w io.Writer, op wire.OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return errors.Wrap(err, "write outpoint hash")
	}
	return writeUint32(w, op.Index)
}

func readOutPoint(r io.Reader) (wire.OutPoint, error) {
	var op wire.OutPoint
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return op, errors.Wrap(err, "read outpoint hash")
	}
	index, err := readUint32(r)
	if err != nil {
		return op, err
	}
	op.Index = index
	return op, nil
}

func writeClaim(w io.Writer, c *Claim) error {
	if _, err := w.Write(c.ID[:]); err != nil {
		return errors.Wrap(err, "write claim id")
	}
	if err := writeOutPoint(w, c.OutPoint); err != nil {
		return err
	}
	if err := writeInt64(w, c.Amount); err != nil {
		return err
	}
	if err := writeInt64(w, c.EffectiveAmount); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(c.HeightClaimed)); err != nil {
		return err
	}
	return writeUint32(w, uint32(c.HeightValid))
}

func readClaim(r io.Reader) (*Claim, error) {
	c := &Claim{}
	if _, err := io.ReadFull(r, c.ID[:]); err != nil {
		return nil, errors.Wrap(err, "read claim id")
	}
	op, err := readOutPoint(r)
	if err != nil {
		return nil, err
	}
	c.OutPoint = op
	if c.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	if c.EffectiveAmount, err = readInt64(r); err != nil {
		return nil, err
	}
	heightClaimed, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	c.HeightClaimed = int32(heightClaimed)
	heightValid, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	c.HeightValid = int32(heightValid)
	return c, nil
}

func writeSupport(w io.Writer, s *Support) error {
	if _, err := w.Write(s.ID[:]); err != nil {
		return errors.Wrap(err, "write support id")
	}
	if _, err := w.Write(s.SupportedClaimID[:]); err != nil {
		return errors.Wrap(err, "write supported claim id")
	}
	if err := writeOutPoint(w, s.OutPoint); err != nil {
		return err
	}
	if err := writeInt64(w, s.Amount); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(s.HeightClaimed)); err != nil {
		return err
	}
	return writeUint32(w, uint32(s.HeightValid))
}

func readSupport(r io.Reader) (*Support, error) {
	s := &Support{}
	if _, err := io.ReadFull(r, s.ID[:]); err != nil {
		return nil, errors.Wrap(err, "read support id")
	}
	if _, err := io.ReadFull(r, s.SupportedClaimID[:]); err != nil {
		return nil, errors.Wrap(err, "read supported claim id")
	}
	op, err := readOutPoint(r)
	if err != nil {
		return nil, err
	}
	s.OutPoint = op
	if s.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	heightClaimed, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	s.HeightClaimed = int32(heightClaimed)
	heightValid, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	s.HeightValid = int32(heightValid)
	return s, nil
}

// MarshalBinary/UnmarshalBinary adapt Serialize/Deserialize to the
// encoding.BinaryMarshaler convention the leveldb-backed repo uses.
func (n *Node) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func UnmarshalNode(data []byte) (*Node, error) {
	return Deserialize(bytes.NewReader(data))
}
