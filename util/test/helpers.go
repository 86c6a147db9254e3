package test

import (
	"net/url"

	"github.com/bsv-blockchain/epochsettle/settings"
)

// CreateBaseTestSettings returns settings suitable for unit tests: no tracing, no verbose store
// logging, and a parallel precheck that kicks in for small batches.
func CreateBaseTestSettings() *settings.Settings {
	tSettings := settings.NewSettings()
	tSettings.TracingEnabled = false
	tSettings.Epoch.PrecheckConcurrency = 4
	tSettings.Epoch.PrecheckMinBatchSize = 2
	tSettings.Epoch.LogRejections = true
	tSettings.UtxoStore.StoreURL = &url.URL{Scheme: "memory"}
	tSettings.UtxoStore.InitialCapacity = 64
	tSettings.UtxoStore.VerboseDebug = false
	tSettings.Validator.Verifier = settings.VerifierECDSA

	return tSettings
}
