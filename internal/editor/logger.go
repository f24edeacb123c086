package editor

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Warnf(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Warnf(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// CharmLogger adapts a charmbracelet logger, attaching the component as a
// structured field.
type CharmLogger struct{ l *log.Logger }

func NewCharmLogger(l *log.Logger) CharmLogger {
	if l == nil {
		l = log.Default()
	}
	return CharmLogger{l: l}
}

func (c CharmLogger) Infof(component string, format string, args ...interface{}) {
	c.l.Info(fmt.Sprintf(format, args...), "component", component)
}

func (c CharmLogger) Warnf(component string, format string, args ...interface{}) {
	c.l.Warn(fmt.Sprintf(format, args...), "component", component)
}

func (c CharmLogger) Errorf(component string, format string, args ...interface{}) {
	c.l.Error(fmt.Sprintf(format, args...), "component", component)
}

// debugLogger is implemented by loggers that also trace per-event detail,
// such as every drag move.
type debugLogger interface {
	Debugf(component string, format string, args ...interface{})
}

// Debugf is not part of Logger; the editor type-asserts for it.
func (c CharmLogger) Debugf(component string, format string, args ...interface{}) {
	c.l.Debug(fmt.Sprintf(format, args...), "component", component)
}
