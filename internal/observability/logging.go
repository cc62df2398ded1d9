// Package observability provides the process-wide loggers used by the
// CLI and the simulator. CLILogger writes human-oriented console output
// on stderr; ServiceLogger emits structured JSON for long-running
// processes.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger for command-line interactions. It defaults to
// a warn-level console logger so commands stay quiet unless something
// goes wrong; Init replaces it with the configured level.
var CLILogger = newConsoleLogger(zapcore.WarnLevel)

// ServiceLogger is the structured logger for server-style processes
// such as the simulator. It defaults to info-level JSON output.
var ServiceLogger = newJSONLogger(zapcore.InfoLevel)

// Init reconfigures both loggers at the given level. Unknown level
// strings fall back to info.
func Init(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	CLILogger = newConsoleLogger(lvl)
	ServiceLogger = newJSONLogger(lvl)
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = CLILogger.Sync()
	_ = ServiceLogger.Sync()
}

func newConsoleLogger(lvl zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core)
}

func newJSONLogger(lvl zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core)
}
