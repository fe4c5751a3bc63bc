package objpool

// Option configures a pool during construction.
//
// Options panic on invalid input rather than returning errors: option values
// are typically compile-time constants, so an invalid value indicates a
// programmer error. The pattern mirrors [regexp.MustCompile] — fail fast
// during initialization instead of returning errors that would be
// universally fatal anyway.
type Option[T any] func(*config[T])

// config collects the optional pool settings.
type config[T any] struct {
	destroy func(*T)
}

// applyOptions folds opts into a fresh config.
func applyOptions[T any](opts []Option[T]) config[T] {
	var cfg config[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDestroyer installs a hook that is called whenever the pool discards a
// value: untracked releases, orphaned releases after Clear(true), values
// removed by Clear, and values destroyed by a bounded pool's Close. The hook
// must not re-enter pool operations on the same pool.
//
// Without a destroyer, discarded values are simply dropped for the garbage
// collector to reclaim.
//
// Panics if destroy is nil.
func WithDestroyer[T any](destroy func(*T)) Option[T] {
	if destroy == nil {
		panic("objpool: destroyer must not be nil")
	}
	return func(c *config[T]) {
		c.destroy = destroy
	}
}
