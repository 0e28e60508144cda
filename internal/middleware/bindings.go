package middleware

import (
	"log/slog"

	"github.com/deep-rent/pipeline/internal/di"
	"github.com/deep-rent/pipeline/internal/logger"
)

// TraceName is the container name of the Trace middleware.
const TraceName = "trace"

// Bind registers the Trace middleware. It resolves its logger from the
// injector.
func Bind(in *di.Injector) {
	di.Bind(in, TraceName, func(in *di.Injector) (any, error) {
		log, err := di.Use[*slog.Logger](in, logger.Name)
		if err != nil {
			return nil, err
		}
		return &Trace{Logger: log}, nil
	}, di.Singleton())
}
