package pipes

import (
	"log/slog"

	"github.com/deep-rent/pipeline/internal/di"
	"github.com/deep-rent/pipeline/internal/logger"
)

// Options parameterizes the pipes that carry configuration.
type Options struct {
	Prefix string
	Suffix string
}

// Bind registers the catalogue under the names trim, upper, lower, reverse,
// prefix, suffix and tap. The tap pipe resolves its logger from the
// injector, so logger.Bind must have been called before it is used.
func Bind(in *di.Injector, opts Options) {
	bind := func(name string, pipe any) {
		di.Bind(in, name, func(*di.Injector) (any, error) {
			return pipe, nil
		}, di.Singleton())
	}

	bind("trim", Trim)
	bind("upper", Upper)
	bind("lower", Lower)
	bind("reverse", Reverse)
	bind("prefix", Affix{Prefix: opts.Prefix})
	bind("suffix", Affix{Suffix: opts.Suffix})

	di.Bind(in, "tap", func(in *di.Injector) (any, error) {
		log, err := di.Use[*slog.Logger](in, logger.Name)
		if err != nil {
			return nil, err
		}
		return &Tap{Logger: log, Label: "tap"}, nil
	}, di.Transient())
}
