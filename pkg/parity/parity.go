// Package parity protects stored bytes with Reed-Solomon parity shards. Each
// shard carries a BLAKE2b-256 digest so that damaged shards can be identified
// and rebuilt from the survivors.
package parity

import (
	"bytes"

	"floatbits/pkg/serializer"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/reedsolomon"
	"golang.org/x/crypto/blake2b"
)

const digestSize = blake2b.Size256

// ErrTooDamaged is returned when more shards are damaged than parity can rebuild.
var ErrTooDamaged = errors.New("too many damaged shards")

// Codec splits data into data shards plus parity shards.
type Codec struct {
	enc          reedsolomon.Encoder
	dataShards   int
	parityShards int
}

func New(dataShards, parityShards int) (*Codec, error) {
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Reed-Solomon encoder")
	}
	return &Codec{
		enc:          enc,
		dataShards:   dataShards,
		parityShards: parityShards,
	}, nil
}

func (c *Codec) totalShards() int {
	return c.dataShards + c.parityShards
}

// Protect returns a frame holding data and its parity:
//
//	original length (natural) | shard size (natural) | (digest | shard) * total shards
func (c *Codec) Protect(data []byte) ([]byte, error) {
	shards, err := c.enc.Split(append([]byte(nil), data...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to split data into shards")
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, errors.Wrap(err, "failed to compute parity")
	}
	shardSize := len(shards[0])

	frame := serializer.EncodeGeneralNatural(uint64(len(data)))
	frame = append(frame, serializer.EncodeGeneralNatural(uint64(shardSize))...)
	for _, shard := range shards {
		digest := blake2b.Sum256(shard)
		frame = append(frame, digest[:]...)
		frame = append(frame, shard...)
	}
	return frame, nil
}

// Recover returns the original data held in frame along with the number of
// shards that failed their digest and had to be rebuilt.
func (c *Codec) Recover(frame []byte) ([]byte, int, error) {
	size, n, ok := serializer.DecodeGeneralNatural(frame)
	if !ok {
		return nil, 0, errors.New("failed to decode data length")
	}
	frame = frame[n:]
	shardSize, n, ok := serializer.DecodeGeneralNatural(frame)
	if !ok {
		return nil, 0, errors.New("failed to decode shard size")
	}
	frame = frame[n:]

	if want := uint64(c.totalShards()) * (digestSize + shardSize); uint64(len(frame)) != want {
		return nil, 0, errors.Newf("invalid frame size: expected %d, got %d", want, len(frame))
	}
	if size > uint64(c.dataShards)*shardSize {
		return nil, 0, errors.Newf("data length %d exceeds shard capacity", size)
	}

	shards := make([][]byte, c.totalShards())
	damaged := 0
	stride := digestSize + int(shardSize)
	for i := range shards {
		entry := frame[i*stride : (i+1)*stride]
		shard := append([]byte(nil), entry[digestSize:]...)
		if blake2b.Sum256(shard) != [digestSize]byte(entry[:digestSize]) {
			damaged++
			continue
		}
		shards[i] = shard
	}
	if damaged > c.parityShards {
		return nil, damaged, errors.Wrapf(ErrTooDamaged, "%d of %d shards damaged", damaged, len(shards))
	}

	if damaged > 0 {
		if err := c.enc.ReconstructData(shards); err != nil {
			return nil, damaged, errors.Wrap(err, "failed to reconstruct data")
		}
	}

	var buf bytes.Buffer
	if err := c.enc.Join(&buf, shards, int(size)); err != nil {
		return nil, damaged, errors.Wrap(err, "failed to join shards")
	}
	return buf.Bytes(), damaged, nil
}
