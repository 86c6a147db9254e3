package memory

import (
	"sync"
	"testing"

	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/stores/utxo/tests"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Run("memory store", func(t *testing.T) {
		tests.Store(t, New(ulogger.TestLogger{}, 0))
	})

	t.Run("memory remove", func(t *testing.T) {
		tests.Remove(t, New(ulogger.TestLogger{}, 16))
	})

	t.Run("memory isolation", func(t *testing.T) {
		tests.Isolation(t, New(ulogger.TestLogger{}, 16))
	})

	t.Run("memory clone", func(t *testing.T) {
		tests.Clone(t, New(ulogger.TestLogger{}, 16))
	})

	t.Run("memory iter", func(t *testing.T) {
		tests.Iter(t, New(ulogger.TestLogger{}, -1))
	})
}

func TestFromMap(t *testing.T) {
	owner := []byte{0x02, 0x03}
	m := map[model.UTXOKey]*model.Output{
		tests.Key0: model.NewOutput(5, owner),
		tests.Key1: model.NewOutput(0, owner),
	}

	db, err := FromMap(ulogger.TestLogger{}, m)
	require.NoError(t, err)
	assert.Equal(t, 2, db.Len())

	// the caller's map and outputs are independent of the pool
	m[tests.Key0].Satoshis = 500
	m[tests.Key0].OwnerKey[0] = 0xff
	delete(m, tests.Key1)

	output, err := db.Get(tests.Key0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), output.Satoshis)
	assert.Equal(t, []byte{0x02, 0x03}, output.OwnerKey)
	assert.True(t, db.Contains(tests.Key1))

	_, err = FromMap(ulogger.TestLogger{}, map[model.UTXOKey]*model.Output{tests.Key2: nil})
	require.Error(t, err)
}

func TestNewFromSnapshot(t *testing.T) {
	source := New(ulogger.TestLogger{}, 4)
	require.NoError(t, source.Add(tests.Key0, model.NewOutput(1, tests.Owner)))
	require.NoError(t, source.Add(tests.Key2, model.NewOutput(2, tests.Owner)))

	db := NewFromSnapshot(ulogger.TestLogger{}, source)
	require.Equal(t, 2, db.Len())

	require.NoError(t, source.Remove(tests.Key0))
	assert.True(t, db.Contains(tests.Key0))

	require.NoError(t, db.Remove(tests.Key2))
	assert.True(t, source.Contains(tests.Key2))
}

func TestConcurrentReaders(t *testing.T) {
	db := New(ulogger.TestLogger{}, 16)
	require.NoError(t, db.Add(tests.Key0, model.NewOutput(1, tests.Owner)))

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				_, err := db.Get(tests.Key0)
				assert.NoError(t, err)
				assert.True(t, db.Contains(tests.Key0))
			}
		}()
	}

	wg.Wait()
}
