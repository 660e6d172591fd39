package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init installs a global zap logger. Production environments get JSON output.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch env {
	case "production", "prod":
		l, err = zap.NewProduction()
	case "test":
		l = zap.NewNop()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
