// Copyright 2015 FactomProject Authors. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// ledgerlog is a leveled logger with the eight severities of RFC 5424.
// Lines are written through logrus, one logger per subsystem prefix.
package ledgerlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level specifies a level of verbosity. The available levels are the eight
// severities described in RFC 5424 and none.
type Level int8

const (
	None Level = iota - 1
	Emergency
	Alert
	Critical
	Error
	Warning
	Notice
	Info
	Debug
)

// A FLogger represents an active logging object that generates lines of output
// to an io.Writer.
type FLogger struct {
	entry  *logrus.Entry
	level  Level
	shared bool
}

// The shared backend used by subsystem loggers.
var (
	stdMu    sync.RWMutex
	std      = newBackend(os.Stderr)
	stdLevel = Info
)

func newBackend(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	// levels are filtered by FLogger.write
	l.SetLevel(logrus.DebugLevel)
	return l
}

// New returns a standalone logger writing to w.
func New(w io.Writer, level, prefix string) *FLogger {
	return &FLogger{
		entry: newBackend(w).WithField("module", prefix),
		level: levelFromString(level),
	}
}

// NewSubsystem returns a logger on the shared backend. Its output and level
// follow Configure.
func NewSubsystem(prefix string) *FLogger {
	return &FLogger{
		entry:  std.WithField("module", prefix),
		shared: true,
	}
}

// Configure sets the output and level of every subsystem logger.
func Configure(w io.Writer, level string) {
	stdMu.Lock()
	defer stdMu.Unlock()

	std.SetOutput(w)
	stdLevel = levelFromString(level)
}

func (logger *FLogger) currentLevel() Level {
	if !logger.shared {
		return logger.level
	}
	stdMu.RLock()
	defer stdMu.RUnlock()
	return stdLevel
}

// Emergency logs with an emergency level and exits the program.
func (logger *FLogger) Emergency(args ...interface{}) {
	logger.write(Emergency, args...)
}

// Emergencyf logs with an emergency level and exits the program.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Emergencyf(format string, args ...interface{}) {
	logger.write(Emergency, fmt.Sprintf(format, args...))
}

// Alert logs with an alert level and exits the program.
func (logger *FLogger) Alert(args ...interface{}) {
	logger.write(Alert, args...)
}

// Alertf logs with an alert level and exits the program.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Alertf(format string, args ...interface{}) {
	logger.write(Alert, fmt.Sprintf(format, args...))
}

// Critical logs with a critical level and exits the program.
func (logger *FLogger) Critical(args ...interface{}) {
	logger.write(Critical, args...)
}

// Criticalf logs with a critical level and exits the program.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Criticalf(format string, args ...interface{}) {
	logger.write(Critical, fmt.Sprintf(format, args...))
}

// Error logs with an error level.
func (logger *FLogger) Error(args ...interface{}) {
	logger.write(Error, args...)
}

// Errorf logs with an error level.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Errorf(format string, args ...interface{}) {
	logger.write(Error, fmt.Sprintf(format, args...))
}

// Warning logs with a warning level.
func (logger *FLogger) Warning(args ...interface{}) {
	logger.write(Warning, args...)
}

// Warningf logs with a warning level.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Warningf(format string, args ...interface{}) {
	logger.write(Warning, fmt.Sprintf(format, args...))
}

// Notice logs with a notice level.
func (logger *FLogger) Notice(args ...interface{}) {
	logger.write(Notice, args...)
}

// Noticef logs with a notice level.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Noticef(format string, args ...interface{}) {
	logger.write(Notice, fmt.Sprintf(format, args...))
}

// Info logs with an info level.
func (logger *FLogger) Info(args ...interface{}) {
	logger.write(Info, args...)
}

// Infof logs with an info level.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Infof(format string, args ...interface{}) {
	logger.write(Info, fmt.Sprintf(format, args...))
}

// Debug logs with a debug level.
func (logger *FLogger) Debug(args ...interface{}) {
	logger.write(Debug, args...)
}

// Debugf logs with a debug level.
// Arguments are handled in the manner of fmt.Printf.
func (logger *FLogger) Debugf(format string, args ...interface{}) {
	logger.write(Debug, fmt.Sprintf(format, args...))
}

// write hands the line to logrus if level passes the logger's level. Levels
// up to Critical go through Fatal, which exits the program.
func (logger *FLogger) write(level Level, args ...interface{}) {
	if level > logger.currentLevel() {
		return
	}

	l := fmt.Sprint(args...)
	e := logger.entry.WithField("severity", levelPrefix[level])
	switch {
	case level <= Critical:
		e.Fatal(l)
	case level == Error:
		e.Error(l)
	case level == Warning:
		e.Warn(l)
	case level == Debug:
		e.Debug(l)
	default:
		e.Info(l)
	}
}

var levelPrefix = map[Level]string{
	Emergency: "EMERGENCY",
	Alert:     "ALERT",
	Critical:  "CRITICAL",
	Error:     "ERROR",
	Warning:   "WARNING",
	Notice:    "NOTICE",
	Info:      "INFO",
	Debug:     "DEBUG",
}

func levelFromString(levelName string) (level Level) {
	switch levelName {
	case "debug":
		level = Debug
	case "info":
		level = Info
	case "notice":
		level = Notice
	case "warning":
		level = Warning
	case "error":
		level = Error
	case "critical":
		level = Critical
	case "alert":
		level = Alert
	case "emergency":
		level = Emergency
	case "none":
		level = None
	default:
		fmt.Fprintf(os.Stderr, "Invalid level value %q, allowed values are: debug, info, notice, warning, error, critical, alert, emergency and none\n", levelName)
		fmt.Fprintln(os.Stderr, "Using log level of warning")
		level = Warning
	}
	return
}
