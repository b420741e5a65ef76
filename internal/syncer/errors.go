package syncer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRoster is matched by every EmptyRosterError.
	ErrEmptyRoster = errors.New("club roster is empty")
	// ErrUnknownEntity is returned by Status for unsupported entity types.
	ErrUnknownEntity = errors.New("unknown entity type")
)

// EmptyRosterError is returned by SyncClub before any write when the roster has no members.
type EmptyRosterError struct {
	ClubID int64
}

func (e *EmptyRosterError) Error() string {
	return fmt.Sprintf("club %d: %s", e.ClubID, ErrEmptyRoster)
}

func (e *EmptyRosterError) Is(target error) bool {
	return target == ErrEmptyRoster
}
