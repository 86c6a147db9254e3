package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/epochsettle/settings"
	"github.com/bsv-blockchain/epochsettle/stores/utxo"
	"github.com/bsv-blockchain/epochsettle/stores/utxo/memory"
	"github.com/bsv-blockchain/epochsettle/ulogger"
)

func init() {
	availableDatabases["memory"] = func(_ context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (utxo.Store, error) {
		capacity, err := capacityFromURL(storeURL, tSettings.UtxoStore.InitialCapacity)
		if err != nil {
			return nil, err
		}

		return memory.New(logger, capacity), nil
	}
}
