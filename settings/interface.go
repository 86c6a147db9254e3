package settings

import (
	"net/url"
)

type EpochSettings struct {
	PrecheckConcurrency  int
	PrecheckMinBatchSize int
	LogRejections        bool
}

type UtxoStoreSettings struct {
	StoreURL        *url.URL
	InitialCapacity int
	VerboseDebug    bool
}

type ValidatorSettings struct {
	Verifier string
}

type TracingSettings struct {
	CollectorURL *url.URL
	SampleRate   float64
}

type Settings struct {
	ServiceName    string
	LogLevel       string
	LoggerType     string
	PrettyLogs     bool
	TracingEnabled bool
	Tracing        TracingSettings
	Epoch          EpochSettings
	UtxoStore      UtxoStoreSettings
	Validator      ValidatorSettings
}
