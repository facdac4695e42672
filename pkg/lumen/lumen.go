package lumen

import (
	"github.com/wayneeseguin/lumen/internal/utils"
	"github.com/wayneeseguin/lumen/pkg/backends"
)

// The functions below act on the default logger of the Default
// environment, which writes to stdout.

// Trace logs at TRACE level on the default logger.
func Trace(args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelTrace, "", args, false)
}

// Tracef logs a formatted message at TRACE level on the default logger.
func Tracef(format string, args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelTrace, format, args, true)
}

// Debug logs at DEBUG level on the default logger.
func Debug(args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelDebug, "", args, false)
}

// Debugf logs a formatted message at DEBUG level on the default logger.
func Debugf(format string, args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelDebug, format, args, true)
}

// Info logs at INFO level on the default logger.
func Info(args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelInfo, "", args, false)
}

// Infof logs a formatted message at INFO level on the default logger.
func Infof(format string, args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelInfo, format, args, true)
}

// Success logs at SUCCESS level on the default logger.
func Success(args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelSuccess, "", args, false)
}

// Successf logs a formatted message at SUCCESS level on the default logger.
func Successf(format string, args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelSuccess, format, args, true)
}

// Warning logs at WARNING level on the default logger.
func Warning(args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelWarning, "", args, false)
}

// Warningf logs a formatted message at WARNING level on the default logger.
func Warningf(format string, args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelWarning, format, args, true)
}

// Error logs at ERROR level on the default logger.
func Error(args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelError, "", args, false)
}

// Errorf logs a formatted message at ERROR level on the default logger.
func Errorf(format string, args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelError, format, args, true)
}

// Critical logs at CRITICAL level on the default logger.
func Critical(args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelCritical, "", args, false)
}

// Criticalf logs a formatted message at CRITICAL level on the default logger.
func Criticalf(format string, args ...interface{}) error {
	return Default().Std().log(utils.CallerPC(1), LevelCritical, format, args, true)
}

// SetLevel sets the minimum level of the default logger.
func SetLevel(level Level) {
	Default().Std().SetLevel(level)
}

// Enable enables modules in the Default environment.
func Enable(modules ...string) {
	Default().Enable(modules...)
}

// Disable disables modules in the Default environment.
func Disable(modules ...string) {
	Default().Disable(modules...)
}

// EnableCaller enables the calling package in the Default environment.
func EnableCaller() {
	Default().Enable(utils.ResolveCallSite(utils.CallerPC(1)).Module)
}

// DisableCaller disables the calling package in the Default environment.
func DisableCaller() {
	Default().Disable(utils.ResolveCallSite(utils.CallerPC(1)).Module)
}

// AddAll registers s with every logger of the Default environment.
func AddAll(s backends.Stream) error {
	return Default().AddAll(s)
}

// AddAllPath registers the file at path with every logger of the Default
// environment.
func AddAllPath(path string) error {
	return Default().AddAllPath(path)
}

// RemoveAll removes a stream from every logger of the Default environment.
func RemoveAll(key string) error {
	return Default().RemoveAll(key)
}

// Go runs fn as a named worker of the Default environment.
func Go(name string, fn func()) <-chan struct{} {
	return Default().Go(name, fn)
}

// Shutdown closes every logger of the Default environment, replaying the
// output buffered by workers.
func Shutdown() error {
	return Default().Reset()
}
