package amqpwire

import "go.uber.org/zap"

// Logger is the minimal sink the connection and channel state machines log
// through. Callers that want structured output pass a ZapLogger wrapping a
// real *zap.Logger; Config.withDefaults falls back to NopLogger.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}

// NopLogger discards everything. It is the zero-value default so a
// Connection never has to nil-check its logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// ZapLogger adapts a *zap.Logger's SugaredLogger to Logger.
type ZapLogger struct {
	sugared *zap.SugaredLogger
}

// NewZapLogger wraps an existing *zap.Logger. A nil logger is replaced by
// zap.NewNop() so callers can pass a possibly-unconfigured logger safely.
func NewZapLogger(l *zap.Logger) ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{sugared: l.Sugar()}
}

func (l ZapLogger) Debugf(template string, args ...any) { l.sugared.Debugf(template, args...) }
func (l ZapLogger) Infof(template string, args ...any)  { l.sugared.Infof(template, args...) }
func (l ZapLogger) Warnf(template string, args ...any)  { l.sugared.Warnf(template, args...) }
func (l ZapLogger) Errorf(template string, args ...any) { l.sugared.Errorf(template, args...) }
