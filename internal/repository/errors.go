package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the addressed row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStorage wraps every other driver failure.
	ErrStorage = errors.New("storage unavailable")
)

// wrapDB normalizes gorm errors so callers only need errors.Is against this package.
func wrapDB(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}
