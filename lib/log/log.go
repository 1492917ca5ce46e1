// Package log provides the leveled, per-component logging facility used
// throughout the server and rpc layers: named loggers fetched by package,
// each independently leveled, all writing through one formatter.
package log

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity, ordered low to high so a logger configured
// at level L emits everything at L and below.
type Level int

const (
	CRITICAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

// ParseLevel converts a config string ("debug", "info", "warn"/"warning",
// "error", "critical") to a Level. It panics on an unrecognized string, matching the
// strictness of the config layer it's invoked from.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	case "critical":
		return CRITICAL
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error, critical", s))
	}
}

// Logger is a named, independently-leveled sink. The zero value is not
// usable; obtain one via GetLogger.
type Logger interface {
	SetLevel(level Level)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// Factory creates the Logger for a named component, analogous to a
// dependency's pluggable logger-factory hook.
type Factory func(pkgName string) Logger

type stdLogger struct {
	name   string
	level  Level
	logger *log.Logger
}

func (l *stdLogger) SetLevel(level Level) { l.level = level }

func (l *stdLogger) Debugf(format string, args ...interface{}) {
	if l.level >= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *stdLogger) Infof(format string, args ...interface{}) {
	if l.level >= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *stdLogger) Warningf(format string, args ...interface{}) {
	if l.level >= WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *stdLogger) Errorf(format string, args ...interface{}) {
	if l.level >= ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *stdLogger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.log("PANIC", "%s", msg)
	panic(msg)
}

func (l *stdLogger) log(levelStr, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

func defaultFactory(pkgName string) Logger {
	return &stdLogger{
		name:   pkgName,
		level:  INFO,
		logger: log.New(os.Stdout, "", log.Ldate|log.Ltime),
	}
}

var (
	mu        sync.Mutex
	factory   Factory = defaultFactory
	instances         = make(map[string]Logger)
)

// SetFactory overrides how new named loggers are constructed. Existing
// instances are left untouched.
func SetFactory(f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factory = f
}

// GetLogger returns the named logger, creating it on first use.
func GetLogger(pkgName string) Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := instances[pkgName]; ok {
		return l
	}
	l := factory(pkgName)
	instances[pkgName] = l
	return l
}

// componentNames lists every named logger the server and rpc layers
// obtain via GetLogger, kept in one place so InitLoggers can level them
// all from a single config value.
var componentNames = []string{
	"server",
	"keyspace",
	"blocking",
	"lazyfree",
	"store",
	"transport/rpc",
	"rpc",
}

// InitLoggers levels every named component logger from a single config
// string, called once at startup after flags/config are parsed.
func InitLoggers(levelStr string) {
	lvl := ParseLevel(levelStr)
	for _, name := range componentNames {
		GetLogger(name).SetLevel(lvl)
	}
}
