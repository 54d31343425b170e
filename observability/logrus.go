package observability

import "github.com/sirupsen/logrus"

// LogrusLogger adapts a logrus entry to the Logger interface. It is the
// backend the command-line tools install; library code stays backend-agnostic.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps the given logrus logger. A nil argument uses the
// logrus standard logger.
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) withFields(fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key()] = f.Value()
	}
	return l.entry.WithFields(data)
}

func (l *LogrusLogger) Debug(msg string, fields ...Field) { l.withFields(fields).Debug(msg) }
func (l *LogrusLogger) Info(msg string, fields ...Field)  { l.withFields(fields).Info(msg) }
func (l *LogrusLogger) Warn(msg string, fields ...Field)  { l.withFields(fields).Warn(msg) }
func (l *LogrusLogger) Error(msg string, fields ...Field) { l.withFields(fields).Error(msg) }

func (l *LogrusLogger) With(fields ...Field) Logger {
	return &LogrusLogger{entry: l.withFields(fields)}
}
