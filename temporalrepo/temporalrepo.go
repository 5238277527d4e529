// Package temporalrepo persists the activation and expiration queues
// (spec.md §6's "two height-indexed tables for the queues") to a
// dedicated goleveldb database keyed by big-endian height, so a
// leveldb-backed deployment recovers pending claims/supports and
// not-yet-expired schedules on restart instead of losing them the way an
// in-process-only queue would.
package temporalrepo

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/lbryio/claimtrie/node"
	"github.com/lbryio/claimtrie/queue"
)

// table distinguishes the three key spaces sharing one database: pending
// claim activations, pending support activations, and expirations.
type table byte

const (
	tableClaimActivation   table = 'c'
	tableSupportActivation table = 's'
	tableExpiration        table = 'e'

	keyPrefixLen = 1 + 4 // table tag + big-endian height
)

// Repo persists and reloads the activation/expiration queues across
// restarts.
type Repo struct {
	db *leveldb.DB
}

// New opens (creating if necessary) the queue database at dir.
func New(dir string) (*Repo, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening temporal repo")
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	return errors.Wrap(r.db.Close(), "closing temporal repo")
}

// Save overwrites the persisted snapshot with the full in-memory state of
// activation and expiration. The queues are bounded by pending and
// not-yet-expired entries rather than by chain length, so rewriting the
// whole snapshot on every flush is cheap enough to avoid a more involved
// incremental update scheme.
func (r *Repo) Save(activation *queue.Activation, expiration *queue.Expiration) error {
	batch := new(leveldb.Batch)

	iter := r.db.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "temporal repo: scanning prior snapshot")
	}

	for height, claims := range activation.ClaimEntries() {
		for _, c := range claims {
			key := encodeKey(tableClaimActivation, height, c.Claim.ID)
			value, err := encodePendingClaim(c)
			if err != nil {
				return err
			}
			batch.Put(key, value)
		}
	}
	for height, supports := range activation.SupportEntries() {
		for _, s := range supports {
			key := encodeKey(tableSupportActivation, height, s.Support.ID)
			value, err := encodePendingSupport(s)
			if err != nil {
				return err
			}
			batch.Put(key, value)
		}
	}
	for height, records := range expiration.Entries() {
		for _, rec := range records {
			key := encodeKey(tableExpiration, height, rec.ClaimID)
			batch.Put(key, encodeExpirationRecord(rec))
		}
	}

	return errors.Wrap(r.db.Write(batch, nil), "temporal repo: write snapshot")
}

// Load reconstructs the activation and expiration queues from the
// persisted snapshot, for use at startup.
func (r *Repo) Load() (*queue.Activation, *queue.Expiration, error) {
	activation := queue.NewActivation()
	expiration := queue.NewExpiration()

	iter := r.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		if len(key) < keyPrefixLen+node.IDSize {
			continue
		}
		height := decodeHeight(key)
		var id node.ClaimID
		copy(id[:], key[keyPrefixLen:keyPrefixLen+node.IDSize])

		switch table(key[0]) {
		case tableClaimActivation:
			name, claim, err := decodePendingClaim(id, iter.Value())
			if err != nil {
				return nil, nil, err
			}
			activation.EnqueueClaim(height, name, claim)
		case tableSupportActivation:
			name, support, err := decodePendingSupport(id, iter.Value())
			if err != nil {
				return nil, nil, err
			}
			activation.EnqueueSupport(height, name, support)
		case tableExpiration:
			name, isSupport, err := decodeExpirationRecord(iter.Value())
			if err != nil {
				return nil, nil, err
			}
			expiration.Enqueue(height, name, id, isSupport)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, nil, errors.Wrap(err, "temporal repo: load")
	}
	return activation, expiration, nil
}

func encodeKey(t table, height int32, id node.ClaimID) []byte {
	key := make([]byte, 0, keyPrefixLen+node.IDSize)
	key = append(key, byte(t))
	var h [4]byte
	binary.BigEndian.PutUint32(h[:], uint32(height))
	key = append(key, h[:]...)
	key = append(key, id[:]...)
	return key
}

func decodeHeight(key []byte) int32 {
	return int32(binary.BigEndian.Uint32(key[1:5]))
}

func encodePendingClaim(c queue.PendingClaim) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNameAndOutPoint(&buf, c.Name, c.Claim.OutPoint); err != nil {
		return nil, err
	}
	if err := writeInt64(&buf, c.Claim.Amount); err != nil {
		return nil, err
	}
	if err := writeInt64(&buf, c.Claim.EffectiveAmount); err != nil {
		return nil, err
	}
	if err := writeInt32(&buf, c.Claim.HeightClaimed); err != nil {
		return nil, err
	}
	if err := writeInt32(&buf, c.Claim.HeightValid); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePendingClaim(id node.ClaimID, value []byte) ([]byte, *node.Claim, error) {
	r := bytes.NewReader(value)
	name, op, err := readNameAndOutPoint(r)
	if err != nil {
		return nil, nil, err
	}
	amount, err := readInt64(r)
	if err != nil {
		return nil, nil, err
	}
	effectiveAmount, err := readInt64(r)
	if err != nil {
		return nil, nil, err
	}
	heightClaimed, err := readInt32(r)
	if err != nil {
		return nil, nil, err
	}
	heightValid, err := readInt32(r)
	if err != nil {
		return nil, nil, err
	}
	claim := &node.Claim{
		ID:              id,
		OutPoint:        op,
		Amount:          amount,
		EffectiveAmount: effectiveAmount,
		HeightClaimed:   heightClaimed,
		HeightValid:     heightValid,
	}
	return name, claim, nil
}

func encodePendingSupport(s queue.PendingSupport) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNameAndOutPoint(&buf, s.Name, s.Support.OutPoint); err != nil {
		return nil, err
	}
	if _, err := buf.Write(s.Support.SupportedClaimID[:]); err != nil {
		return nil, errors.Wrap(err, "write supported claim id")
	}
	if err := writeInt64(&buf, s.Support.Amount); err != nil {
		return nil, err
	}
	if err := writeInt32(&buf, s.Support.HeightClaimed); err != nil {
		return nil, err
	}
	if err := writeInt32(&buf, s.Support.HeightValid); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePendingSupport(id node.ClaimID, value []byte) ([]byte, *node.Support, error) {
	r := bytes.NewReader(value)
	name, op, err := readNameAndOutPoint(r)
	if err != nil {
		return nil, nil, err
	}
	var supportedClaimID node.ClaimID
	if _, err := readFull(r, supportedClaimID[:]); err != nil {
		return nil, nil, errors.Wrap(err, "read supported claim id")
	}
	amount, err := readInt64(r)
	if err != nil {
		return nil, nil, err
	}
	heightClaimed, err := readInt32(r)
	if err != nil {
		return nil, nil, err
	}
	heightValid, err := readInt32(r)
	if err != nil {
		return nil, nil, err
	}
	support := &node.Support{
		ID:               id,
		OutPoint:         op,
		SupportedClaimID: supportedClaimID,
		Amount:           amount,
		HeightClaimed:    heightClaimed,
		HeightValid:      heightValid,
	}
	return name, support, nil
}

func encodeExpirationRecord(rec queue.ExpirationRecord) []byte {
	var buf bytes.Buffer
	writeBytes(&buf, rec.Name)
	if rec.IsSupport {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func decodeExpirationRecord(value []byte) (name []byte, isSupport bool, err error) {
	r := bytes.NewReader(value)
	name, err = readBytes(r)
	if err != nil {
		return nil, false, err
	}
	flag, err := r.ReadByte()
	if err != nil {
		return nil, false, errors.Wrap(err, "read is-support flag")
	}
	return name, flag == 1, nil
}
