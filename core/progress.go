package core

import (
	"encoding/json"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// LogKind classifies a progress message for routing/formatting.
type LogKind int

const (
	LogInfo LogKind = iota
	LogWarning
	LogError
	LogDebug
)

func (k LogKind) String() string {
	switch k {
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	case LogDebug:
		return "debug"
	default:
		return "info"
	}
}

// ProgressSink is the cooperative contract every long-running operation
// accepts: a place to report progress and a poll point for cancellation.
// Checked between evaluations (ex-search rows, flex multi-starts, Pareto
// grid points); cancellation never preempts an evaluation in flight.
type ProgressSink interface {
	Log(kind LogKind, msg string)
	IsCancelled() bool
}

// NullSink discards all progress and never cancels. Useful in tests and
// library callers that don't care about progress.
type NullSink struct{}

func (NullSink) Log(LogKind, string) {}
func (NullSink) IsCancelled() bool   { return false }

// CancelFlag is an atomic cooperative cancellation flag. Set it from a
// signal handler or a UI "stop" button; operations observe it between
// evaluations via ProgressSink.IsCancelled.
type CancelFlag struct {
	flag atomic.Bool
}

func (c *CancelFlag) Cancel()     { c.flag.Store(true) }
func (c *CancelFlag) IsSet() bool { return c.flag.Load() }

// StdoutSink logs through logrus at the matching level and consults a
// shared CancelFlag.
type StdoutSink struct {
	Logger *logrus.Logger
	Cancel *CancelFlag
}

// NewStdoutSink returns a StdoutSink backed by the given logger. If logger
// is nil, logrus's standard logger is used. If cancel is nil, a fresh
// CancelFlag is allocated (never cancelled unless the caller retains it).
func NewStdoutSink(logger *logrus.Logger, cancel *CancelFlag) *StdoutSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cancel == nil {
		cancel = &CancelFlag{}
	}
	return &StdoutSink{Logger: logger, Cancel: cancel}
}

func (s *StdoutSink) Log(kind LogKind, msg string) {
	switch kind {
	case LogWarning:
		s.Logger.Warn(msg)
	case LogError:
		s.Logger.Error(msg)
	case LogDebug:
		s.Logger.Debug(msg)
	default:
		s.Logger.Info(msg)
	}
}

func (s *StdoutSink) IsCancelled() bool {
	if s.Cancel == nil {
		return false
	}
	return s.Cancel.IsSet()
}

// ProgressEvent is one line of a JSONLSink stream: (index, total, rate, eta)
// plus the free-form log message, matching the progress callback contract
// from the design (index, total, rate, eta).
type ProgressEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Kind      string        `json:"kind"`
	Message   string        `json:"message"`
	Index     int           `json:"index,omitempty"`
	Total     int           `json:"total,omitempty"`
	Rate      float64       `json:"rate,omitempty"`
	ETA       time.Duration `json:"eta_ns,omitempty"`
}

// JSONLSink writes append-only JSON-lines progress events for a GUI or
// launcher process to tail. Index/Total/Rate/ETA are set via
// SetEvalProgress before a Log call that should carry them.
type JSONLSink struct {
	enc    *json.Encoder
	cancel *CancelFlag

	index int
	total int
	start time.Time
}

// NewJSONLSink opens (or creates) path for append and returns a sink
// writing one JSON object per line.
func NewJSONLSink(path string, cancel *CancelFlag) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, Wrap(ErrIO, "open progress sink %s", path)
	}
	return &JSONLSink{enc: json.NewEncoder(f), cancel: cancel, start: time.Now()}, nil
}

// SetEvalProgress records the current (index, total) pair; the next Log
// call computes rate and ETA from it.
func (s *JSONLSink) SetEvalProgress(index, total int) {
	s.index, s.total = index, total
}

func (s *JSONLSink) Log(kind LogKind, msg string) {
	elapsed := time.Since(s.start)
	var rate float64
	var eta time.Duration
	if s.index > 0 && elapsed > 0 {
		rate = float64(s.index) / elapsed.Seconds()
		if rate > 0 && s.total > s.index {
			eta = time.Duration(float64(s.total-s.index)/rate) * time.Second
		}
	}
	_ = s.enc.Encode(ProgressEvent{
		Timestamp: time.Now(),
		Kind:      kind.String(),
		Message:   msg,
		Index:     s.index,
		Total:     s.total,
		Rate:      rate,
		ETA:       eta,
	})
}

func (s *JSONLSink) IsCancelled() bool {
	if s.cancel == nil {
		return false
	}
	return s.cancel.IsSet()
}
