// Package mediaerr defines the error taxonomy shared by the source tree,
// the audio player state machine and the backend adapters.
package mediaerr

import "errors"

var (
	// ErrCannotSeek is returned by Source.Seek when the underlying source
	// does not support random access (most streaming/network sources).
	ErrCannotSeek = errors.New("mediaerr: source cannot seek")

	// ErrFormatMismatch is returned when a source is appended to a
	// SourceGroup, or attached to a player, whose AudioFormat does not
	// match the group's/player's existing format.
	ErrFormatMismatch = errors.New("mediaerr: audio format mismatch")

	// ErrAlreadyAttached is returned by Source.Acquire when the source is
	// already owned by another player; a Source may back only one live
	// player at a time.
	ErrAlreadyAttached = errors.New("mediaerr: source already attached")

	// ErrInvalidState is returned when an operation is attempted in a
	// player state that does not support it (e.g. Clear on a player
	// that is not Paused, Seek on a Playing or Deleted player).
	ErrInvalidState = errors.New("mediaerr: invalid player state for operation")

	// ErrBackendFatal marks an unrecoverable decode or device failure
	// (DecoderSource wraps decoder errors in it). AudioPlayer does not
	// react to it: the player's state is unchanged and it is not moved
	// to Deleted.
	ErrBackendFatal = errors.New("mediaerr: backend fatal error")
)

// MediaError wraps an underlying decode or device error with the sentinel
// that classifies it, so callers can use errors.Is/errors.As against a
// single returned error while the cause is still retrievable.
type MediaError struct {
	Kind  error
	Cause error
}

func (e *MediaError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *MediaError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

// Wrap builds a MediaError classified as kind, carrying cause as the
// underlying error. If cause is nil, Wrap returns kind directly.
func Wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &MediaError{Kind: kind, Cause: cause}
}
