// Package utxo defines the pool of unspent transaction outputs that epochs are settled against.
//
// A Store is single writer: only the epoch processor mutates it, one accepted transaction at a
// time. Readers get deep copies of every output, so nothing handed out can change the pool.
package utxo

import (
	"github.com/bsv-blockchain/epochsettle/model"
)

// Reader is the read only view of a pool used by the validator.
type Reader interface {
	Contains(key model.UTXOKey) bool
	// Get returns a copy of the output, or errors.ErrUnknownUTXO when the key is not in the pool.
	Get(key model.UTXOKey) (*model.Output, error)
	Len() int
	// Iter calls fn with a copy of every entry, in no particular order, until fn returns true.
	Iter(fn func(key model.UTXOKey, output *model.Output) (stop bool))
}

type Store interface {
	Reader
	// Add fails with errors.ErrDuplicateUTXO when the key is already present.
	Add(key model.UTXOKey, output *model.Output) error
	// Remove fails with errors.ErrUnknownUTXO when the key is not present.
	Remove(key model.UTXOKey) error
	// Clone returns an independent deep copy.
	Clone() Store
}
