package main

import (
	"context"
	"os"
	"time"

	"github.com/bsv-blockchain/epochsettle/cmd/settle/settle"
	"github.com/bsv-blockchain/epochsettle/errors"
	"github.com/bsv-blockchain/epochsettle/settings"
	"github.com/bsv-blockchain/epochsettle/tracing"
	"github.com/bsv-blockchain/epochsettle/ulogger"
	"github.com/ordishs/gocore"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "epochsettle"

// Version & commit strings injected at build with -ldflags -X...
var version string
var commit string

func init() {
	gocore.SetInfo(progname, version, commit)
}

func main() {
	os.Exit(start())
}

func start() int {
	tSettings := settings.NewSettings()

	// results go to stdout, so logs go to stderr
	logger := ulogger.New(tSettings.ServiceName,
		ulogger.WithLevel(tSettings.LogLevel),
		ulogger.WithLoggerType(tSettings.LoggerType),
		ulogger.WithPrettyLogs(tSettings.PrettyLogs),
		ulogger.WithWriter(os.Stderr),
	)

	if err := tSettings.Validate(); err != nil {
		logger.Errorf("invalid settings: %v", err)
		return 2
	}

	logger.Debugf("VERSION %s (%s)", version, commit)

	if err := tracing.InitTracer(tSettings); err != nil {
		logger.Warnf("could not start tracer: %v", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tracing.ShutdownTracer(shutdownCtx); err != nil {
			logger.Warnf("could not flush traces: %v", err)
		}
	}()

	app := settle.NewApp(logger, tSettings, os.Stdout, version)

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%v", err)

		if errors.IsInvariantViolation(err) {
			return 3
		}

		return 1
	}

	return 0
}
