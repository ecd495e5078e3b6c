package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logTimeFormat = "2006-01-02 15:04:05.000"

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

var (
	logLevel = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger   = newConsoleLogger(zapcore.Lock(os.Stderr))
	exitFunc = os.Exit
)

func logTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(logTimeFormat))
}

// newConsoleLogger builds the diagnostic logger. Result output never goes through it.
func newConsoleLogger(w zapcore.WriteSyncer) *zap.SugaredLogger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = logTimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, logLevel)
	return zap.New(core).Sugar()
}

// SetLogLevel changes the minimum level written by the logger.
func SetLogLevel(level string) error {
	lvl, ok := logLevels[strings.ToLower(level)]
	if !ok {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", level)
	}
	logLevel.SetLevel(lvl)
	return nil
}

// Logger returns the shared diagnostic logger.
func Logger() *zap.SugaredLogger {
	return logger
}

// ReplaceLogger swaps the shared logger and returns a function restoring the previous one.
func ReplaceLogger(l *zap.Logger) func() {
	prev := logger
	logger = l.Sugar()
	return func() { logger = prev }
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	_ = logger.Sync()
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.Errorw(msg, "error", err)
	SyncLogger()
	exitFunc(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	logger.Warnw(msg, "error", err)
}

// LogInfo logs an informational message with structured key-value pairs.
func LogInfo(msg string, keysAndValues ...any) {
	logger.Infow(msg, keysAndValues...)
}

// LogDebug logs a debug message with structured key-value pairs.
func LogDebug(msg string, keysAndValues ...any) {
	logger.Debugw(msg, keysAndValues...)
}
