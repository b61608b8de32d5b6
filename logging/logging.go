package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	debugLogger = newLogger(os.Stderr)
	logFile     *os.File
	mu          sync.Mutex
	isSetup     bool
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: time.RFC3339,
	})
	return l
}

// SetupLogger initializes the run logger with the specified log file.
// With debug enabled, debug entries are written and the log is mirrored to stderr.
func SetupLogger(logFilePath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if debug {
		debugLogger.SetOutput(io.MultiWriter(os.Stderr, logFile))
		debugLogger.SetLevel(logrus.DebugLevel)
	} else {
		debugLogger.SetOutput(logFile)
		debugLogger.SetLevel(logrus.InfoLevel)
	}

	debugLogger.Infof("--- wallsorter log started at %s ---", time.Now().Format(time.RFC3339))

	isSetup = true
	return nil
}

// CloseLogger closes the log file
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		debugLogger.Infof("--- wallsorter log closed at %s ---", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
		debugLogger.SetOutput(os.Stderr)
		debugLogger.SetLevel(logrus.InfoLevel)
		isSetup = false
	}
}

// LogInfo logs an information message. Before SetupLogger it goes to stderr.
func LogInfo(format string, args ...interface{}) {
	debugLogger.Infof(format, args...)
}

// DebugLog logs a message if debug mode is enabled
func DebugLog(format string, args ...interface{}) {
	if !ready() {
		return
	}
	debugLogger.Debugf(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	if !ready() {
		return
	}
	debugLogger.Errorf(format, args...)
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	if !ready() {
		return
	}
	debugLogger.Warnf(format, args...)
}

// LogImageProcessed logs the outcome of one pipeline stage for one image
func LogImageProcessed(path string, stage string, err error) {
	if !ready() {
		return
	}
	entry := debugLogger.WithFields(logrus.Fields{"path": path, "stage": stage})
	if err != nil {
		entry.WithError(err).Warn("FAILED")
		return
	}
	entry.Debug("PROCESSED")
}

func ready() bool {
	mu.Lock()
	defer mu.Unlock()
	return isSetup
}
