// Package logx builds the zap logger shared by the binaries.
package logx

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a development logger for "debug" and a production logger otherwise.
func New(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Must is New for main packages that cannot continue without a logger.
func Must(level string) *zap.Logger {
	l, err := New(level)
	if err != nil {
		panic(err)
	}
	return l
}
