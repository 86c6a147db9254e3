// Package factory creates utxo.Store implementations from a store URL.
//
// The scheme selects the backend; only "memory" is built in. Query parameters:
//
//	memory://?capacity=4096&logging=true
//
// capacity overrides utxostore_initialCapacity, and logging=true (or utxostore_verboseDebug) wraps the
// store in the logging decorator.
package factory

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/settings"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	storelogger "github.com/bsv-blockchain/epochsettle/stores/utxo/logger"
	"github.com/bsv-blockchain/epochsettle/ulogger"
)

var availableDatabases = map[string]func(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (utxo.Store, error){}

// NewStore creates an empty store for source from tSettings.UtxoStore.
func NewStore(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, source string) (utxo.Store, error) {
	storeURL := tSettings.UtxoStore.StoreURL
	if storeURL == nil {
		return nil, errors.NewConfigurationError("no utxostore url configured for %s", source)
	}

	dbInit, ok := availableDatabases[storeURL.Scheme]
	if !ok {
		return nil, errors.NewConfigurationError("unknown utxostore scheme: %s", storeURL.Scheme)
	}

	logger.Infof("[UTXOStore] creating %s store for %s", storeURL.Scheme, source)

	utxoStore, err := dbInit(ctx, logger, tSettings, storeURL)
	if err != nil {
		return nil, err
	}

	if storeURL.Query().Get("logging") == "true" || tSettings.UtxoStore.VerboseDebug {
		logger.Infof("[UTXOStore] verbose logging enabled for %s", source)
		utxoStore = storelogger.New(logger, utxoStore)
	}

	return utxoStore, nil
}

func capacityFromURL(storeURL *url.URL, defaultCapacity int) (int, error) {
	value := storeURL.Query().Get("capacity")
	if value == "" {
		return defaultCapacity, nil
	}

	capacity, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.NewConfigurationError("invalid utxostore capacity %q", value, err)
	}

	if capacity < 0 {
		return 0, errors.NewConfigurationError("utxostore capacity must not be negative, got %d", capacity)
	}

	return capacity, nil
}
