package utxo

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
)

// ToMap copies every entry of the pool into a plain map.
func ToMap(r Reader) map[model.UTXOKey]*model.Output {
	m := make(map[model.UTXOKey]*model.Output, r.Len())

	r.Iter(func(key model.UTXOKey, output *model.Output) bool {
		m[key] = output
		return false
	})

	return m
}

// SortedKeys returns the keys of the pool ordered by tx hash bytes, then index.
func SortedKeys(r Reader) []model.UTXOKey {
	keys := make([]model.UTXOKey, 0, r.Len())

	r.Iter(func(key model.UTXOKey, _ *model.Output) bool {
		keys = append(keys, key)
		return false
	})

	slices.SortFunc(keys, func(a, b model.UTXOKey) int {
		if c := bytes.Compare(a.TxHash[:], b.TxHash[:]); c != 0 {
			return c
		}

		return cmp.Compare(a.Index, b.Index)
	})

	return keys
}

// TotalSatoshis sums every output in the pool, failing if the total does not fit in an int64.
func TotalSatoshis(r Reader) (int64, error) {
	var (
		total int64
		err   error
	)

	r.Iter(func(key model.UTXOKey, output *model.Output) bool {
		if output.Satoshis > 0 && total > (1<<63-1)-output.Satoshis {
			err = errors.NewProcessingError("pool total overflows at %s", key)
			return true
		}

		total += output.Satoshis

		return false
	})

	return total, err
}
