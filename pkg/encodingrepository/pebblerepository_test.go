package encodingrepository

import (
	"testing"

	"floatbits/pkg/bitorder"
	"floatbits/pkg/bitvector"
	"floatbits/pkg/floatenc"
	"floatbits/pkg/types"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bitVectorComparer = cmp.Comparer(func(a, b *bitvector.BitVector) bool {
	return a.Order() == b.Order() && a.Equal(b)
})

func openRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(t *testing.T, value float32, order bitorder.Order) types.Record {
	t.Helper()
	bv, err := floatenc.NewEncoder(order).Encode(value)
	require.NoError(t, err)
	return types.Record{Value: value, Order: order, Bits: bv, RunID: uuid.New()}
}

func TestPutGet(t *testing.T) {
	repo := openRepo(t)
	rec := record(t, 15932.5497, bitorder.LSBFirst)
	require.NoError(t, repo.Put(rec))

	got, err := repo.Get(15932.5497, bitorder.LSBFirst)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got, bitVectorComparer); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "11001100 01001111 00011110 01100010", got.Bits.String())

	_, err = repo.Get(15932.5497, bitorder.MSBFirst)
	assert.True(t, errors.Is(err, ErrNotFound), "error = %v", err)
}

func TestPutReplaces(t *testing.T) {
	repo := openRepo(t)
	first := record(t, 1, bitorder.MSBFirst)
	second := record(t, 1, bitorder.MSBFirst)
	require.NoError(t, repo.Put(first))
	require.NoError(t, repo.Put(second))

	got, err := repo.Get(1, bitorder.MSBFirst)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, got.RunID)
}

func TestPutRequiresBits(t *testing.T) {
	repo := openRepo(t)
	assert.Error(t, repo.Put(types.Record{Value: 1}))
}

func TestDelete(t *testing.T) {
	repo := openRepo(t)
	require.NoError(t, repo.Put(record(t, -2.5, bitorder.LSBFirst)))
	require.NoError(t, repo.Delete(-2.5, bitorder.LSBFirst))
	_, err := repo.Get(-2.5, bitorder.LSBFirst)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, repo.Delete(-2.5, bitorder.LSBFirst))
}

func TestList(t *testing.T) {
	repo := openRepo(t)
	values := []float32{3, -1, 0.5, 3}
	orders := []bitorder.Order{bitorder.LSBFirst, bitorder.MSBFirst, bitorder.LSBFirst, bitorder.MSBFirst}
	for i := range values {
		require.NoError(t, repo.Put(record(t, values[i], orders[i])))
	}

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 4)

	type entry struct {
		Value float32
		Order bitorder.Order
	}
	var got []entry
	for _, rec := range list {
		got = append(got, entry{rec.Value, rec.Order})
	}
	want := []entry{
		{-1, bitorder.MSBFirst},
		{0.5, bitorder.LSBFirst},
		{3, bitorder.MSBFirst},
		{3, bitorder.LSBFirst},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestListEmpty(t *testing.T) {
	list, err := openRepo(t).List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTransactions(t *testing.T) {
	repo := openRepo(t)

	require.NoError(t, repo.BeginTransaction())
	assert.Error(t, repo.BeginTransaction())
	require.NoError(t, repo.Put(record(t, 7, bitorder.MSBFirst)))

	_, err := repo.Get(7, bitorder.MSBFirst)
	require.NoError(t, err, "pending write should be visible inside the transaction")
	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.RollbackTransaction())
	_, err = repo.Get(7, bitorder.MSBFirst)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repo.BeginTransaction())
	require.NoError(t, repo.Put(record(t, 7, bitorder.MSBFirst)))
	require.NoError(t, repo.CommitTransaction())
	_, err = repo.Get(7, bitorder.MSBFirst)
	assert.NoError(t, err)

	assert.Error(t, repo.CommitTransaction())
	assert.Error(t, repo.RollbackTransaction())
}

func TestGetRepairsCorruptedValue(t *testing.T) {
	repo := openRepo(t)
	rec := record(t, 0.1, bitorder.LSBFirst)
	require.NoError(t, repo.Put(rec))

	key := Key(0.1, bitorder.LSBFirst)
	frame, closer, err := repo.db.Get(key)
	require.NoError(t, err)
	damaged := append([]byte(nil), frame...)
	closer.Close()

	damaged[len(damaged)-1] ^= 0xFF
	require.NoError(t, repo.db.Set(key, damaged, pebble.Sync))

	got, err := repo.Get(0.1, bitorder.LSBFirst)
	require.NoError(t, err)
	assert.True(t, rec.Bits.Equal(got.Bits))
}

func TestKey(t *testing.T) {
	a := Key(1, bitorder.MSBFirst)
	b := Key(1, bitorder.LSBFirst)
	c := Key(-1, bitorder.MSBFirst)
	assert.Len(t, a, len(keyPrefix)+32)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Key(1, bitorder.MSBFirst))
	assert.Equal(t, []byte("enc0"), prefixUpperBound(keyPrefix))
}
