package engine

import (
	"errors"
	"fmt"
)

// ErrCollaboratorUnavailable matches every CollaboratorError via errors.Is.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// Collaborator names used in CollaboratorError.
const (
	CollaboratorMetadata = "metadata"
	CollaboratorFetcher  = "fetcher"
)

// CollaboratorError reports that an external collaborator could not supply
// its input. Nothing has been scanned when it is returned.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is makes every CollaboratorError match ErrCollaboratorUnavailable.
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}
