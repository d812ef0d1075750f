// File: internal/logutil/logutil.go
// Package logutil
// Author: momentics <momentics@gmail.com>
//
// Thin zap wrapper shared by all packages. The library stays silent by
// default; embedding applications install their own logger.

package logutil

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// SetLogger installs the process-wide logger. Passing nil restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// GetLogger returns the current process-wide logger.
func GetLogger() *zap.Logger {
	return global.Load()
}

func Debug(msg string, fields ...zap.Field) {
	global.Load().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	global.Load().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	global.Load().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	global.Load().Error(msg, fields...)
}
