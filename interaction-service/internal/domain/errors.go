package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	// ErrValidation marks a malformed request, rejected before any cache or
	// queue interaction.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an entity absent from both cache and durable store.
	ErrNotFound = errors.New("not found")
	// ErrCacheUnavailable marks a cache command failure. It always fails the
	// request; the write path never falls back to the durable store.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrJobPersistence marks a worker whose durable store call failed. The
	// queue retries it.
	ErrJobPersistence = errors.New("job persistence failure")
	// ErrNotificationDelivery marks an email transport failure.
	ErrNotificationDelivery = errors.New("notification delivery failure")
)

// ValidationError builds an ErrValidation with a message.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError builds an ErrNotFound for an entity kind and id.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

// CacheError wraps a cache command failure.
func CacheError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCacheUnavailable, op, err)
}

// PersistenceError wraps a durable store failure inside a worker.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrJobPersistence, op, err)
}

// DeliveryError wraps an email transport failure.
func DeliveryError(to string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNotificationDelivery, to, err)
}
