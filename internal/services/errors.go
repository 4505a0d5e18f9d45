package services

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected field of a submitted listing or message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	// ErrManagerRequired is returned when a non-manager attempts a moderation decision.
	ErrManagerRequired = errors.New("moderation requires the manager role")

	// ErrNotListingOwner is returned when an agent operates on another agent's listing.
	ErrNotListingOwner = errors.New("listing belongs to another agent")

	// ErrNotInRevision is returned when resubmitting a listing that is not in revision.
	ErrNotInRevision = errors.New("listing is not in revision")

	// ErrNotConversationMember is returned when an agent posts to another agent's thread.
	ErrNotConversationMember = errors.New("not a member of this conversation")
)
