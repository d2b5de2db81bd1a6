package service

import "go.uber.org/zap"

var logger = zap.NewNop()

// InitializeLogger sets the logger for the service package. It must be called
// before NewRouter, which hands the logger to the gin middleware.
func InitializeLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}
