package ndk

import "log/slog"

// Option configures a Resolver.
type Option func(*config)

// WithFallback overrides the version returned when nothing is installed.
// An empty version is ignored.
func WithFallback(version string) Option {
	return func(c *config) {
		if version != "" {
			c.fallback = version
		}
	}
}

// WithRanking sets how installed versions are ordered.
func WithRanking(r Ranking) Option {
	return func(c *config) {
		if r != nil {
			c.ranking = r
		}
	}
}

// WithLogger sets the logger used for debug output. nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		c.logger = l
	}
}
