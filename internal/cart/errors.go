package cart

import (
	"errors"
	"fmt"

	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/domain"
)

var (
	ErrDisposed = errors.New("cart store is disposed")
	// ErrCorrupt marks stored data that can never be read back. A cart whose
	// load fails with it starts empty; any other load failure is retried.
	ErrCorrupt = errors.New("stored cart is unreadable")
	// ErrUnavailable is returned by Registry.Get while the cart can not be loaded.
	ErrUnavailable = errors.New("cart storage unavailable")
)

// ValidationError is returned when a mutator is called with input that would
// break the cart invariants. The cart is left unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var errQuantityTooLarge = invalid("quantity", fmt.Sprintf("must be at most %d", domain.MaxLineQuantity))

// PersistenceWarning reports that a change was applied in memory but could not
// be written to storage. It is never fatal.
type PersistenceWarning struct {
	Op  string
	Err error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("cart %s not persisted: %v", w.Op, w.Err)
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

// IsWarning reports whether err only signals lost durability.
func IsWarning(err error) bool {
	var w *PersistenceWarning
	return errors.As(err, &w)
}
