package store

import "potluck/internal/platform/logger"

// Option configures a Store before any backend is opened
type Option func(*Store) error

// WithLogger routes store and sql trace logs through log
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
