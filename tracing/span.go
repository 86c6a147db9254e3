package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/epochsettle/ulogger"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "epochsettle"

type Options func(s *TraceOptions)

type TraceOptions struct {
	ParentStat *gocore.Stat
	Histogram  prometheus.Histogram
	Counter    prometheus.Counter
	Logger     ulogger.Logger
	LogMessage string
	LogArgs    []interface{}
	Tags       map[string]string
}

func WithParentStat(stat *gocore.Stat) Options {
	return func(s *TraceOptions) {
		s.ParentStat = stat
	}
}

// WithHistogram sets the prometheus histogram observed, in seconds, when the span is finished.
func WithHistogram(histogram prometheus.Histogram) Options {
	return func(s *TraceOptions) {
		s.Histogram = histogram
	}
}

// WithCounter sets the prometheus counter incremented when the span is finished.
func WithCounter(counter prometheus.Counter) Options {
	return func(s *TraceOptions) {
		s.Counter = counter
	}
}

// WithLogMessage logs the formatted message at INFO when the span starts, and
// again with the elapsed time when it finishes.
func WithLogMessage(logger ulogger.Logger, format string, args ...interface{}) Options {
	return func(s *TraceOptions) {
		s.Logger = logger
		s.LogMessage = format
		s.LogArgs = args
	}
}

func WithTag(key, value string) Options {
	return func(s *TraceOptions) {
		if s.Tags == nil {
			s.Tags = make(map[string]string)
		}

		s.Tags[key] = value
	}
}

type Span struct {
	Ctx     context.Context
	Stat    *gocore.Stat
	otSpan  trace.Span
	start   time.Time
	options *TraceOptions
}

// Start opens an otel span named name. The returned Span carries the derived
// context; callers must call Finish.
func Start(ctx context.Context, name string, setOptions ...Options) Span {
	options := &TraceOptions{}
	for _, opt := range setOptions {
		opt(options)
	}

	span := Span{
		start:   time.Now(),
		options: options,
	}

	span.Ctx, span.otSpan = otel.Tracer(tracerName).Start(ctx, name)

	if options.ParentStat != nil {
		span.Stat = options.ParentStat.NewStat(name)
	} else {
		span.Stat = gocore.NewStat(name)
	}

	for key, value := range options.Tags {
		span.SetTag(key, value)
	}

	if options.Logger != nil && options.LogMessage != "" {
		options.Logger.Infof(options.LogMessage, options.LogArgs...)
	}

	return span
}

func (s *Span) SetTag(key, value string) {
	s.otSpan.SetAttributes(attribute.String(key, value))
}

func (s *Span) SetInt(key string, value int) {
	s.otSpan.SetAttributes(attribute.Int(key, value))
}

func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}

	s.otSpan.RecordError(err)
	s.otSpan.SetStatus(codes.Error, err.Error())
}

func (s *Span) Finish() {
	s.otSpan.End()
	s.Stat.AddTime(s.start)

	if s.options.Histogram != nil {
		s.options.Histogram.Observe(float64(time.Since(s.start).Microseconds()) / 1_000_000)
	}

	if s.options.Counter != nil {
		s.options.Counter.Inc()
	}

	if s.options.Logger != nil && s.options.LogMessage != "" {
		done := fmt.Sprintf(" DONE in %s", time.Since(s.start))
		s.options.Logger.Infof(s.options.LogMessage+done, s.options.LogArgs...)
	}
}
