// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global sugared logger. It is a no-op until Initialize
	// runs, so library code can log unconditionally.
	Logger *zap.SugaredLogger
	// JSONOutput records the mode chosen by Initialize.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. JSON output targets machine
// consumers; otherwise a compact console encoder writes to stderr so that
// generated programs on stdout stay clean.
func Initialize(jsonOutput, verbose bool) error {
	JSONOutput = jsonOutput

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	var zapLogger *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		built, err := config.Build()
		if err != nil {
			return err
		}
		zapLogger = built
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = ""
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Base returns the desugared global logger, for APIs that take *zap.Logger.
func Base() *zap.Logger {
	return Logger.Desugar()
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = Logger.Sync()
}
