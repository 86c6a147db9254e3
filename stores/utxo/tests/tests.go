// Package tests holds the behaviour every utxo.Store implementation must share.
package tests

import (
	"testing"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	Hash, _  = chainhash.NewHashFromStr("5e3bc5947f48cec766090aa17f309fd16259de029dcef5d306b514848c9687c7")
	Hash2, _ = chainhash.NewHashFromStr("663bc5947f48cec766090aa17f309fd16259de029dcef5d306b514848c9687c8")
	Key0     = model.NewUTXOKey(*Hash, 0)
	Key1     = model.NewUTXOKey(*Hash, 1)
	Key2     = model.NewUTXOKey(*Hash2, 0)
	Owner    = []byte{0x02, 0x79, 0xbe, 0x66, 0x7e}
)

// Store checks add, get and the duplicate error on an empty store.
func Store(t *testing.T, db utxo.Store) {
	require.Equal(t, 0, db.Len())
	require.False(t, db.Contains(Key0))

	err := db.Add(Key0, model.NewOutput(1000, Owner))
	require.NoError(t, err)

	require.True(t, db.Contains(Key0))
	require.False(t, db.Contains(Key1))
	require.Equal(t, 1, db.Len())

	output, err := db.Get(Key0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), output.Satoshis)
	assert.Equal(t, Owner, output.OwnerKey)

	err = db.Add(Key0, model.NewOutput(5, Owner))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateUTXO))

	// the failed add must not have replaced the output
	output, err = db.Get(Key0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), output.Satoshis)

	_, err = db.Get(Key1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownUTXO))

	var data *errors.UtxoErrData
	require.True(t, errors.AsData(err, &data))
	assert.Equal(t, Key1.TxHash, data.TxHash)
	assert.Equal(t, Key1.Index, data.Index)

	require.Error(t, db.Add(Key1, nil))
}

// Remove checks removal and the unknown error on an empty store.
func Remove(t *testing.T, db utxo.Store) {
	require.NoError(t, db.Add(Key0, model.NewOutput(1, Owner)))
	require.NoError(t, db.Add(Key1, model.NewOutput(2, Owner)))

	require.NoError(t, db.Remove(Key0))
	assert.False(t, db.Contains(Key0))
	assert.True(t, db.Contains(Key1))
	assert.Equal(t, 1, db.Len())

	err := db.Remove(Key0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownUTXO))

	err = db.Remove(Key2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownUTXO))

	// a removed key can be added again
	require.NoError(t, db.Add(Key0, model.NewOutput(3, Owner)))
	assert.Equal(t, 2, db.Len())
}

// Isolation checks that nothing handed to or returned by the store aliases its contents.
func Isolation(t *testing.T, db utxo.Store) {
	owner := []byte{0x01, 0x02}
	output := model.NewOutput(10, owner)

	require.NoError(t, db.Add(Key0, output))

	output.Satoshis = 99
	output.OwnerKey[0] = 0xff

	got, err := db.Get(Key0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Satoshis)
	assert.Equal(t, []byte{0x01, 0x02}, got.OwnerKey)

	got.OwnerKey[1] = 0xff

	db.Iter(func(_ model.UTXOKey, o *model.Output) bool {
		o.Satoshis = 0
		return false
	})

	got, err = db.Get(Key0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Satoshis)
	assert.Equal(t, []byte{0x01, 0x02}, got.OwnerKey)
}

// Clone checks that a clone and its source evolve independently.
func Clone(t *testing.T, db utxo.Store) {
	require.NoError(t, db.Add(Key0, model.NewOutput(1, Owner)))
	require.NoError(t, db.Add(Key1, model.NewOutput(2, Owner)))

	clone := db.Clone()
	require.Equal(t, 2, clone.Len())

	require.NoError(t, db.Remove(Key0))
	require.NoError(t, db.Add(Key2, model.NewOutput(3, Owner)))

	assert.True(t, clone.Contains(Key0))
	assert.False(t, clone.Contains(Key2))

	require.NoError(t, clone.Remove(Key1))
	assert.True(t, db.Contains(Key1))

	assert.Equal(t, 2, db.Len())
	assert.Equal(t, 1, clone.Len())
}

// Iter checks that iteration visits every entry once and honours stop.
func Iter(t *testing.T, db utxo.Store) {
	require.NoError(t, db.Add(Key0, model.NewOutput(1, Owner)))
	require.NoError(t, db.Add(Key1, model.NewOutput(2, Owner)))
	require.NoError(t, db.Add(Key2, model.NewOutput(4, Owner)))

	seen := map[model.UTXOKey]int64{}

	db.Iter(func(key model.UTXOKey, output *model.Output) bool {
		seen[key] = output.Satoshis
		return false
	})

	assert.Equal(t, map[model.UTXOKey]int64{Key0: 1, Key1: 2, Key2: 4}, seen)

	calls := 0

	db.Iter(func(_ model.UTXOKey, _ *model.Output) bool {
		calls++
		return true
	})

	assert.Equal(t, 1, calls)

	total, err := utxo.TotalSatoshis(db)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	keys := utxo.SortedKeys(db)
	require.Len(t, keys, 3)

	// Hash sorts before Hash2 on raw bytes
	assert.Equal(t, []model.UTXOKey{Key0, Key1, Key2}, keys)
	assert.Len(t, utxo.ToMap(db), 3)
}
