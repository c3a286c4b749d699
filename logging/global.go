package logging

// defaultLogger is the package-level logger used by the global
// convenience functions.
var defaultLogger = NewDefaultLogger()

// SetDefaultLogger replaces the package-level default logger.
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the package-level default logger.
func GetDefaultLogger() *Logger {
	return defaultLogger
}

// IsLevelEnabled reports whether the given level would be emitted.
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	return level.ToSlogLevel() >= l.level
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...interface{}) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message using the default logger.
func Info(msg string, args ...interface{}) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...interface{}) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message using the default logger.
func Error(msg string, args ...interface{}) {
	defaultLogger.Error(msg, args...)
}

// RouteUnmappable logs an unmappable route using the default logger.
func RouteUnmappable(lineID, routeID, reason string) {
	defaultLogger.RouteUnmappable(lineID, routeID, reason)
}
