package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"log"
	"os"
	"strings"
)

// --------------------------------------------------------------------------
// Logger names
// --------------------------------------------------------------------------

// Names of the component loggers. Every component fetches its default logger
// with logger.GetLogger(<name>) and accepts an injected logger.ILogger instead.
const (
	LoggerClient = "xpeer/client"
	LoggerPeer   = "xpeer/peer"
	LoggerVPeer  = "xpeer/vpeer"
	LoggerSocket = "xpeer/socket"
	LoggerQueue  = "xpeer/queue"
)

var loggerNames = []string{LoggerClient, LoggerPeer, LoggerVPeer, LoggerSocket, LoggerQueue}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// xPeerLogger implements the ILogger interface with custom formatting
type xPeerLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *xPeerLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *xPeerLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *xPeerLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *xPeerLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *xPeerLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *xPeerLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message
func (l *xPeerLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-13s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger is a logger.Factory writing to stdout
func CreateLogger(pkgName string) logger.ILogger {
	stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	return &xPeerLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: stdLogger,
	}
}

// nopLogger drops every message, Panicf still panics
type nopLogger struct{}

func (nopLogger) SetLevel(logger.LogLevel) {}
func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{}) {}
func (nopLogger) Warningf(format string, args ...interface{}) {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// NopLogger returns a logger that discards everything
func NopLogger() logger.ILogger {
	return nopLogger{}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseLogLevel converts a string level to logger.LogLevel
func parseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the custom logger factory and applies the configured
// level to all component loggers. Must be called before the first client is created.
func InitLoggers(config ClientConfig) error {
	level := config.LogLevel
	if level == "" {
		level = DefaultLogLevel
	}
	lvl, err := parseLogLevel(level)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)

	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
