package encodingrepository

import (
	"io"
	"math"
	"sort"

	"floatbits/pkg/bitorder"
	"floatbits/pkg/parity"
	"floatbits/pkg/serializer"
	"floatbits/pkg/types"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"golang.org/x/crypto/blake2b"
)

// Records are split into this many data shards plus parity shards.
const (
	DataShards   = 4
	ParityShards = 2
)

var ErrNotFound = errors.New("encoding not found")

var keyPrefix = []byte("enc/")

// Repository is a catalog of computed encodings stored in PebbleDB.
type Repository struct {
	db     *pebble.DB
	batch  *pebble.Batch // For transaction support
	parity *parity.Codec
}

// Open opens or creates the catalog at dbPath. A nil opts uses Pebble's defaults.
func Open(dbPath string, opts *pebble.Options) (*Repository, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	codec, err := parity.New(DataShards, ParityShards)
	if err != nil {
		return nil, err
	}
	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open encoding repository at %s", dbPath)
	}
	return &Repository{
		db:     db,
		parity: codec,
	}, nil
}

// Key returns the storage key of the encoding of value under order:
// the prefix followed by blake2b(value bits LE ++ order).
func Key(value float32, order bitorder.Order) []byte {
	input := serializer.EncodeLittleEndian(4, uint64(math.Float32bits(value)))
	input = append(input, byte(order))
	h := blake2b.Sum256(input)

	key := make([]byte, 0, len(keyPrefix)+len(h))
	key = append(key, keyPrefix...)
	return append(key, h[:]...)
}

// get reads through the active batch when a transaction is in progress.
func (r *Repository) get(key []byte) ([]byte, io.Closer, error) {
	if r.batch != nil {
		return r.batch.Get(key)
	}
	return r.db.Get(key)
}

func (r *Repository) newIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	if r.batch != nil {
		return r.batch.NewIter(opts)
	}
	return r.db.NewIter(opts)
}

// Put stores rec, replacing any earlier encoding of the same value and order.
func (r *Repository) Put(rec types.Record) error {
	if rec.Bits == nil {
		return errors.New("record has no bits")
	}
	frame, err := r.parity.Protect(serializer.SerializeRecord(rec))
	if err != nil {
		return errors.Wrap(err, "failed to protect record")
	}
	key := Key(rec.Value, rec.Order)
	if r.batch != nil {
		return r.batch.Set(key, frame, nil)
	}
	return r.db.Set(key, frame, pebble.Sync)
}

func (r *Repository) decode(frame []byte) (types.Record, error) {
	data, _, err := r.parity.Recover(frame)
	if err != nil {
		return types.Record{}, errors.Wrap(err, "failed to recover record")
	}
	rec, err := serializer.DeserializeRecord(data)
	if err != nil {
		return types.Record{}, errors.Wrap(err, "failed to deserialize record")
	}
	return rec, nil
}

// Get returns the stored encoding of value under order, or ErrNotFound.
func (r *Repository) Get(value float32, order bitorder.Order) (types.Record, error) {
	frame, closer, err := r.get(Key(value, order))
	if errors.Is(err, pebble.ErrNotFound) {
		return types.Record{}, errors.Wrapf(ErrNotFound, "value %v, order %v", value, order)
	}
	if err != nil {
		return types.Record{}, err
	}
	defer closer.Close()
	return r.decode(frame)
}

// Delete removes the encoding of value under order. Deleting a missing key is
// not an error.
func (r *Repository) Delete(value float32, order bitorder.Order) error {
	key := Key(value, order)
	if r.batch != nil {
		return r.batch.Delete(key, nil)
	}
	return r.db.Delete(key, pebble.Sync)
}

// List returns every stored encoding ordered by value, then by bit order.
func (r *Repository) List() ([]types.Record, error) {
	iter, err := r.newIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: prefixUpperBound(keyPrefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create iterator")
	}

	var records []types.Record
	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := r.decode(iter.Value())
		if err != nil {
			iter.Close()
			return nil, errors.Wrapf(err, "key %x", iter.Key())
		}
		records = append(records, rec)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Value != records[j].Value {
			return records[i].Value < records[j].Value
		}
		return records[i].Order < records[j].Order
	})
	return records, nil
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// BeginTransaction starts a new transaction
func (r *Repository) BeginTransaction() error {
	if r.batch != nil {
		return errors.New("transaction already in progress")
	}
	r.batch = r.db.NewIndexedBatch()
	return nil
}

// CommitTransaction commits the current transaction
func (r *Repository) CommitTransaction() error {
	if r.batch == nil {
		return errors.New("no transaction in progress")
	}
	err := r.batch.Commit(pebble.Sync)
	r.batch = nil
	return err
}

// RollbackTransaction aborts the current transaction
func (r *Repository) RollbackTransaction() error {
	if r.batch == nil {
		return errors.New("no transaction in progress")
	}
	err := r.batch.Close()
	r.batch = nil
	return err
}

// Close closes the database
func (r *Repository) Close() error {
	if r.batch != nil {
		r.batch.Close()
		r.batch = nil
	}
	return r.db.Close()
}
