package logger

import (
	"log/slog"

	"github.com/deep-rent/pipeline/internal/di"
)

// Name is the container name under which the logger is bound.
const Name = "logger"

// Bind makes log available to pipes resolved through the injector.
func Bind(in *di.Injector, log *slog.Logger) {
	di.Bind(in, Name, func(*di.Injector) (any, error) {
		return log, nil
	}, di.Singleton())
}
