package common

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the package-level structured logger the disk manager and
// buffer pool manager use to "log, but not propagate" I/O failures
// (write, seek, sync and read failures, at Warn level). A double-free
// in FileDiskManager is logged at Debug, which this Info-level logger
// drops; reads past EOF are zero-filled without logging. It is safe
// for concurrent use, like zap's logger always is.
var Log = NewLogger("")

// NewLogger builds a zap logger. When logFile is non-empty, log records
// are written through a lumberjack.Logger so long-running processes
// don't grow the log file without bound; an empty logFile logs to
// stderr, which is what every test in this module does.
func NewLogger(logFile string) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var sink zapcore.WriteSyncer
	if logFile != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    64, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder, sink, zap.InfoLevel)
	return zap.New(core)
}

// SetLogFile redirects Log to write through a rotating file sink at
// path. No package, test or command in this module calls it.
func SetLogFile(path string) {
	Log = NewLogger(path)
}
