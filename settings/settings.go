package settings

import (
	"github.com/bsv-blockchain/epochsettle/errors"
)

// Supported signature verifiers.
const (
	VerifierECDSA = "ecdsa"
)

func NewSettings() *Settings {
	return &Settings{
		ServiceName:    getString("SERVICE_NAME", "epochsettle"),
		LogLevel:       getString("logLevel", "INFO"),
		LoggerType:     getString("logger_type", "zerolog"),
		PrettyLogs:     getBool("PRETTY_LOGS", true),
		TracingEnabled: getBool("tracing_enabled", false),
		Tracing: TracingSettings{
			CollectorURL: getURL("tracing_collectorURL", "http://localhost:4318"),
			SampleRate:   getFloat64("tracing_sampleRate", 0.01),
		},
		Epoch: EpochSettings{
			PrecheckConcurrency:  getInt("epoch_precheckConcurrency", 8),
			PrecheckMinBatchSize: getInt("epoch_precheckMinBatchSize", 64),
			LogRejections:        getBool("epoch_logRejections", true),
		},
		UtxoStore: UtxoStoreSettings{
			StoreURL:        getURL("utxostore", "memory://"),
			InitialCapacity: getInt("utxostore_initialCapacity", 1024),
			VerboseDebug:    getBool("utxostore_verboseDebug", false),
		},
		Validator: ValidatorSettings{
			Verifier: getString("validator_verifier", VerifierECDSA),
		},
	}
}

// Validate checks the settings for values the services cannot run with.
func (s *Settings) Validate() error {
	if s.Epoch.PrecheckConcurrency < 0 {
		return errors.NewConfigurationError("epoch_precheckConcurrency must not be negative, got %d", s.Epoch.PrecheckConcurrency)
	}

	if s.Epoch.PrecheckMinBatchSize < 0 {
		return errors.NewConfigurationError("epoch_precheckMinBatchSize must not be negative, got %d", s.Epoch.PrecheckMinBatchSize)
	}

	if s.UtxoStore.InitialCapacity < 0 {
		return errors.NewConfigurationError("utxostore_initialCapacity must not be negative, got %d", s.UtxoStore.InitialCapacity)
	}

	if s.Tracing.SampleRate < 0 || s.Tracing.SampleRate > 1 {
		return errors.NewConfigurationError("tracing_sampleRate must be between 0 and 1, got %f", s.Tracing.SampleRate)
	}

	if s.TracingEnabled && s.Tracing.CollectorURL == nil {
		return errors.NewConfigurationError("tracing_collectorURL is required when tracing is enabled")
	}

	if s.UtxoStore.StoreURL == nil {
		return errors.NewConfigurationError("utxostore url is missing or invalid")
	}

	switch s.Validator.Verifier {
	case VerifierECDSA:
	default:
		return errors.NewConfigurationError("unknown validator_verifier %q", s.Validator.Verifier)
	}

	return nil
}

// ParallelPrecheck reports whether a batch of n candidates should be prechecked concurrently.
func (s *Settings) ParallelPrecheck(n int) bool {
	return s.Epoch.PrecheckConcurrency > 1 && n >= s.Epoch.PrecheckMinBatchSize && n > 1
}
