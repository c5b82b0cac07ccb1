package fonts

import "github.com/wudi/pagxkit/observability"

type settings struct {
	logger observability.Logger
	tracer observability.Tracer
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a Shaper or an Embedder.
type Option func(*settings)

func WithLogger(l observability.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(s *settings) {
		if t != nil {
			s.tracer = t
		}
	}
}
