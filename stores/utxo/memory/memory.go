// Package memory implements utxo.Store on a swiss table.
package memory

import (
	"sync"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/dolthub/swiss"
)

const defaultCapacity = 1024

type Memory struct {
	logger ulogger.Logger
	mu     sync.RWMutex
	// the swiss map uses a lot less memory than the standard map
	m *swiss.Map[model.UTXOKey, *model.Output]
}

// New returns an empty pool sized for capacity entries.
func New(logger ulogger.Logger, capacity int) *Memory {
	size, err := safeconversion.IntToUint32(capacity)
	if err != nil || size == 0 {
		size = defaultCapacity
	}

	return &Memory{
		logger: logger,
		m:      swiss.NewMap[model.UTXOKey, *model.Output](size),
	}
}

// NewFromSnapshot deep copies every entry of snapshot into a new pool.
func NewFromSnapshot(logger ulogger.Logger, snapshot utxo.Reader) *Memory {
	s := New(logger, snapshot.Len())

	snapshot.Iter(func(key model.UTXOKey, output *model.Output) bool {
		s.m.Put(key, output.Clone())
		return false
	})

	logger.Debugf("[UTXOStore][memory] loaded %d utxos from snapshot", s.m.Count())

	return s
}

// FromMap builds a pool from a bootstrap map. The map is deep copied; nil outputs are refused.
func FromMap(logger ulogger.Logger, m map[model.UTXOKey]*model.Output) (*Memory, error) {
	s := New(logger, len(m))

	for key, output := range m {
		if output == nil {
			return nil, errors.NewInvalidArgumentError("nil output for utxo %s", key)
		}

		s.m.Put(key, output.Clone())
	}

	logger.Debugf("[UTXOStore][memory] loaded %d utxos from map", s.m.Count())

	return s, nil
}

func (s *Memory) Contains(key model.UTXOKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.m.Has(key)
}

func (s *Memory) Get(key model.UTXOKey) (*model.Output, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	output, ok := s.m.Get(key)
	if !ok {
		return nil, errors.NewUnknownUTXOError(key.TxHash, key.Index)
	}

	return output.Clone(), nil
}

func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.m.Count()
}

func (s *Memory) Iter(fn func(key model.UTXOKey, output *model.Output) (stop bool)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.m.Iter(func(key model.UTXOKey, output *model.Output) bool {
		return fn(key, output.Clone())
	})
}

func (s *Memory) Add(key model.UTXOKey, output *model.Output) error {
	if output == nil {
		return errors.NewInvalidArgumentError("nil output for utxo %s", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m.Has(key) {
		return errors.NewDuplicateUTXOError(key.TxHash, key.Index)
	}

	s.m.Put(key, output.Clone())

	return nil
}

func (s *Memory) Remove(key model.UTXOKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.m.Delete(key) {
		return errors.NewUnknownUTXOError(key.TxHash, key.Index)
	}

	return nil
}

func (s *Memory) Clone() utxo.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size, err := safeconversion.IntToUint32(s.m.Count())
	if err != nil || size == 0 {
		size = defaultCapacity
	}

	clone := &Memory{
		logger: s.logger,
		m:      swiss.NewMap[model.UTXOKey, *model.Output](size),
	}

	s.m.Iter(func(key model.UTXOKey, output *model.Output) bool {
		clone.m.Put(key, output.Clone())
		return false
	})

	return clone
}
