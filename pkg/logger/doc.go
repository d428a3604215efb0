// Package logger provides structured logging for the instaview service.
//
// It wraps the zerolog library behind a small Logger interface with:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output, or JSON when a log file is configured
// - A global logger instance for easy access
// - A TestLogger that captures messages for assertions
//
// Basic usage:
//
//	err := logger.Initialize(logger.Options{Level: "info"})
//
//	logger.GetLogger().Info("server started")
//	logger.GetLogger().WithField("username", "john_doe").Info("profile fetched")
//	logger.GetLogger().WithError(err).Error("upstream call failed")
package logger
