package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/config"
)

// logrusLogger adapts a logrus logger to config.Logger.
type logrusLogger struct {
	entry *log.Entry
}

func (l *logrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

func (l *logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Info(msg)
}

func (l *logrusLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Warn(msg)
}

func (l *logrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Error(msg)
}

func (l *logrusLogger) with(keysAndValues []interface{}) *log.Entry {
	return l.entry.WithFields(toFields(keysAndValues))
}

// toFields pairs up keys and values. A trailing key without a value is kept
// under "!BADKEY".
func toFields(keysAndValues []interface{}) log.Fields {
	fields := make(log.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 >= len(keysAndValues) {
			fields["!BADKEY"] = keysAndValues[i]
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

// newLogger parses the level and sends output to stderr, or to a rotating
// file when logPath is set.
func newLogger(level, logPath string) (config.Logger, func() error, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	logger := log.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: logPath == ""})

	closer := func() error { return nil }
	if logPath != "" && logPath != "console" {
		rotating := &lumberjack.Logger{
			Filename:   filepath.ToSlash(logPath),
			MaxSize:    5, // MB
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		}
		logger.SetOutput(rotating)
		closer = rotating.Close
	} else {
		logger.SetOutput(os.Stderr)
	}

	return &logrusLogger{entry: log.NewEntry(logger).WithField("component", "libinstall")}, closer, nil
}
