package engine

import (
	"errors"
	"fmt"

	"github.com/oggyb/muzz-matchmaker/internal/repository"
)

var (
	ErrNotRegistered        = errors.New("user is not registered")
	ErrInvalidSelfReference = errors.New("users cannot interact with themselves")
	ErrBlocked              = errors.New("interaction refused: users are blocked")
	ErrInvalidProfile       = errors.New("invalid profile")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

// storeErr translates repository errors. ErrNotFound only ever comes from
// profile lookups, so it reads as an unknown user.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotRegistered
	case errors.Is(err, repository.ErrStorage):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	default:
		return err
	}
}
