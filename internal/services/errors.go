package services

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the discussion service. Handlers branch on
// these with errors.Is so the UI can tell "not logged in" from "already
// removed" from "server trouble". Validation failures are wrapped with
// a detail message, e.g. fmt.Errorf("%w: title is required", ErrValidation).
var (
	ErrUnauthorized    = errors.New("login required")
	ErrValidation      = errors.New("invalid input")
	ErrTargetNotFound  = errors.New("target not found")
	ErrAmbiguousTarget = errors.New("vote target must be exactly one post or comment")
	ErrInvalidParent   = errors.New("parent comment belongs to a different post")
	ErrVoteConflict    = errors.New("vote raced with another request")
	ErrUnavailable     = errors.New("upstream service unavailable")
)

// wrapStorage maps an unexpected database error onto ErrUnavailable,
// the same kind the TMDB client uses for a failing upstream. Known
// failure kinds pass through untouched.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		ErrUnauthorized, ErrValidation, ErrTargetNotFound,
		ErrAmbiguousTarget, ErrInvalidParent, ErrVoteConflict,
		ErrUnavailable,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: storage: %v", ErrUnavailable, err)
}
