package ulogger

import (
	"io"
	"os"

	"github.com/ordishs/gocore"
)

type Options struct {
	logLevel   string
	loggerType string
	writer     io.Writer
	skip       int
	pretty     bool
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{
		logLevel:   "INFO",
		loggerType: "zerolog",
		writer:     os.Stdout,
		skip:       0,
		pretty:     gocore.Config().GetBool("PRETTY_LOGS", true),
	}
}

// WithLevel sets the minimum level that will be written, e.g. "DEBUG" or "WARN".
func WithLevel(level string) Option {
	return func(o *Options) {
		o.logLevel = level
	}
}

// WithLoggerType selects the backend: "zerolog" (default) or "gocore".
func WithLoggerType(loggerType string) Option {
	return func(o *Options) {
		o.loggerType = loggerType
	}
}

func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writer = w
	}
}

func WithSkipFrame(skip int) Option {
	return func(o *Options) {
		o.skip = skip
	}
}

// WithPrettyLogs switches between the console format and plain JSON lines.
func WithPrettyLogs(pretty bool) Option {
	return func(o *Options) {
		o.pretty = pretty
	}
}
