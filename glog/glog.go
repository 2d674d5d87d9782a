// Package glog is the kernel's internal logging facade.
//
// It keeps the shape of the teacher's clog.Clog: a Provider interface with
// Critical/Error/Warn/Debug, an atomic enable switch, and a zero-value
// Logger that discards everything until a Provider is set and logging is
// enabled with LogMode (SetProvider alone does not enable it). The default
// Provider is backed by zap instead of the standard log package, giving
// every caller structured fields for free.
package glog

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Provider is implemented by anything that can take a leveled, structured
// log line keyed by a set of fields.
type Provider interface {
	Critical(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
}

// Logger is the handle every kernel package holds, matching the way
// teacher code embeds a clog.Clog in its connection/server types.
type Logger struct {
	provider Provider
	// has is 1 when logging is enabled, 0 when disabled.
	has uint32
}

// New builds a Logger backed by a production zap.Logger with the given
// name recorded on every line.
func New(name string) Logger {
	z, _ := zap.NewProduction()
	return Logger{provider: &zapProvider{z.Sugar().Named(name).Desugar()}, has: 1}
}

// NewNop returns a Logger that discards everything; useful in tests.
func NewNop() Logger {
	return Logger{provider: &zapProvider{zap.NewNop()}, has: 0}
}

// LogMode enables or disables log output, matching clog.LogMode.
func (l *Logger) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&l.has, 1)
	} else {
		atomic.StoreUint32(&l.has, 0)
	}
}

// SetProvider overrides the backing Provider.
func (l *Logger) SetProvider(p Provider) {
	if p != nil {
		l.provider = p
	}
}

func (l Logger) enabled() bool { return atomic.LoadUint32(&l.has) == 1 }

// Critical logs a CRITICAL level message.
func (l Logger) Critical(msg string, fields ...zap.Field) {
	if l.enabled() && l.provider != nil {
		l.provider.Critical(msg, fields...)
	}
}

// Error logs an ERROR level message.
func (l Logger) Error(msg string, fields ...zap.Field) {
	if l.enabled() && l.provider != nil {
		l.provider.Error(msg, fields...)
	}
}

// Warn logs a WARN level message.
func (l Logger) Warn(msg string, fields ...zap.Field) {
	if l.enabled() && l.provider != nil {
		l.provider.Warn(msg, fields...)
	}
}

// Debug logs a DEBUG level message.
func (l Logger) Debug(msg string, fields ...zap.Field) {
	if l.enabled() && l.provider != nil {
		l.provider.Debug(msg, fields...)
	}
}

type zapProvider struct {
	z *zap.Logger
}

var _ Provider = (*zapProvider)(nil)

func (p *zapProvider) Critical(msg string, fields ...zap.Field) { p.z.Error("[C] "+msg, fields...) }
func (p *zapProvider) Error(msg string, fields ...zap.Field)    { p.z.Error(msg, fields...) }
func (p *zapProvider) Warn(msg string, fields ...zap.Field)     { p.z.Warn(msg, fields...) }
func (p *zapProvider) Debug(msg string, fields ...zap.Field)    { p.z.Debug(msg, fields...) }
