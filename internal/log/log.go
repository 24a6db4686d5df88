// Package log sets up the subsystem loggers shared by the daemon.
package log

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter fans out to stdout and the rotator once it is initialized.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	_, _ = os.Stdout.Write(p)
	if logRotator != nil {
		_, _ = logRotator.Write(p)
	}
	return len(p), nil
}

var (
	backendLog = btclog.NewBackend(logWriter{})
	logRotator *rotator.Rotator

	Srv  = backendLog.Logger("SRV")
	Idx  = backendLog.Logger("INDX")
	Rpc  = backendLog.Logger("RPCC")
	Gorm = backendLog.Logger("GORM")
	Api  = backendLog.Logger("API")
)

var subsystemLoggers = map[string]btclog.Logger{
	"SRV":  Srv,
	"INDX": Idx,
	"RPCC": Rpc,
	"GORM": Gorm,
	"API":  Api,
}

// InitLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory. It must be called before the
// package-global log rotater variables are used.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// SetLogLevels sets the level of every subsystem logger.
func SetLogLevels(level string) error {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid log level %q", level)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}
	return nil
}

// Close flushes and closes the rotator, if any.
func Close() {
	if logRotator != nil {
		_ = logRotator.Close()
	}
}
