// Package logging builds the engine's zap logger and scrubs secrets from
// values before they are logged.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the root logger. Local environments get the human-readable
// development encoder; everything else logs production JSON.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
