// Package log provides a logging abstraction for entryship components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Implementations are provided for zerolog and a
// no-op logger for testing.
//
// # Usage
//
// Use the zerolog adapter:
//
//	logger := log.NewZerologAdapter(os.Stderr)
//
// Or wrap a logger you already configured:
//
//	logger := log.NewZerologAdapterWithLogger(zl).WithComponent("loader")
//
// Or discard everything in tests:
//
//	logger := log.NewNoopLogger()
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
