package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionBusy    = errors.New("another user is already controlling playback on this server")
	ErrNotOwner       = errors.New("only the user who started the session can control playback")
	ErrRateLimited    = errors.New("slow down, wait a moment before pressing again")
	ErrNotInSession   = errors.New("no active playback session on this server")
	ErrNothingPlaying = errors.New("nothing is playing right now")
	ErrNotPaused      = errors.New("playback is not paused")
)

// ResolutionError reports a failed lookup against the resolution service.
// The underlying provider error is preserved verbatim for the requester.
type ResolutionError struct {
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %q: %v", e.Query, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SinkError reports that the audio sink failed to start output for a track.
type SinkError struct {
	Title string
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("playback failed for %q: %v", e.Title, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
