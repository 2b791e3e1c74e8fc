package logger

import (
	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/tutoring-admin-api/pkg/config"
)

const (
	levelCritical = "critical"
	levelError    = "error"
)

// NewRollbarHook configures the rollbar client and returns a zap hook that
// forwards error-level entries.
func NewRollbarHook(cfg config.RollbarConfig) func(zapcore.Entry) error {
	rollbar.SetToken(cfg.Token)
	rollbar.SetEnvironment(cfg.Environment)
	if cfg.CodeVersion != "" {
		rollbar.SetCodeVersion(cfg.CodeVersion)
	}
	return rollbarHook(func(level, message string) {
		if level == levelCritical {
			rollbar.Critical(message)
			return
		}
		rollbar.Error(message)
	})
}

// Flush waits for queued rollbar items to be delivered.
func Flush() {
	rollbar.Wait()
}

func rollbarHook(report func(level, message string)) func(zapcore.Entry) error {
	return func(entry zapcore.Entry) error {
		switch {
		case entry.Level >= zapcore.DPanicLevel:
			report(levelCritical, entry.Message)
		case entry.Level == zapcore.ErrorLevel:
			report(levelError, entry.Message)
		}
		return nil
	}
}
