package logger

import "gitlab.com/agfdbk.net/internal/adapter/logging"

var Logger = logging.NewZapLogger()

// Init replaces the process logger, e.g. to enable debug output
func Init(debug bool) {
	Logger = logging.NewZapLogger(debug)
}

func Info(msg string, args ...interface{}) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...interface{}) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	Logger.Warn(msg, args...)
}

func Sync() {
	_ = Logger.Sync()
}
