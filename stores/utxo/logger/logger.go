// Package logger decorates a utxo.Store and logs every call, with the calling stack, at info level.
// It is meant for tracing pool corruption, not for production.
package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bsv-blockchain/epochsettle/model"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/epochsettle/ulogger"
)

type Store struct {
	logger ulogger.Logger
	store  utxo.Store
}

func New(logger ulogger.Logger, store utxo.Store) utxo.Store {
	s := &Store{
		logger: logger,
		store:  store,
	}

	return s
}

func caller() string {
	var callers []string

	depth := 5

	for i := 0; i < depth; i++ {
		pc, file, line, ok := runtime.Caller(2 + i)
		if !ok {
			break
		}

		// strip everything up to and including the module path
		folders := strings.Split(file, string(filepath.Separator))
		for j, folder := range folders {
			if folder == "epochsettle" {
				folders = folders[j+1:]
				break
			}
		}

		file = filepath.Join(folders...)

		funcName := runtime.FuncForPC(pc).Name()
		funcPaths := strings.Split(funcName, "/")
		funcName = funcPaths[len(funcPaths)-1]

		callers = append(callers, fmt.Sprintf("called from %s: %s:%d", funcName, file, line))
	}

	return strings.Join(callers, ",")
}

func (s *Store) Contains(key model.UTXOKey) bool {
	found := s.store.Contains(key)
	s.logger.Infof("[UTXOStore][logger][Contains] key %s found %t : %s", key, found, caller())

	return found
}

func (s *Store) Get(key model.UTXOKey) (*model.Output, error) {
	output, err := s.store.Get(key)
	s.logger.Infof("[UTXOStore][logger][Get] key %s output %s err %v : %s", key, output, err, caller())

	return output, err
}

func (s *Store) Len() int {
	n := s.store.Len()
	s.logger.Infof("[UTXOStore][logger][Len] %d : %s", n, caller())

	return n
}

func (s *Store) Iter(fn func(key model.UTXOKey, output *model.Output) (stop bool)) {
	s.logger.Infof("[UTXOStore][logger][Iter] : %s", caller())
	s.store.Iter(fn)
}

func (s *Store) Add(key model.UTXOKey, output *model.Output) error {
	err := s.store.Add(key, output)
	s.logger.Infof("[UTXOStore][logger][Add] key %s output %s err %v : %s", key, output, err, caller())

	return err
}

func (s *Store) Remove(key model.UTXOKey) error {
	err := s.store.Remove(key)
	s.logger.Infof("[UTXOStore][logger][Remove] key %s err %v : %s", key, err, caller())

	return err
}

// Clone clones the underlying store and keeps logging on the copy.
func (s *Store) Clone() utxo.Store {
	clone := s.store.Clone()
	s.logger.Infof("[UTXOStore][logger][Clone] %d utxos : %s", clone.Len(), caller())

	return New(s.logger, clone)
}
