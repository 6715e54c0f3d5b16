// Package sources defines where tracks come from. Each source knows how to
// recognize its own URLs and turn them into playable tracks.
package sources

import (
	"context"

	"tunebox/internal/session"
)

type Source interface {
	// Match checks if this source can handle the given input.
	Match(input string) bool

	// IsPlaylist reports whether the input names a multi-track collection.
	IsPlaylist(input string) bool

	// ResolveSingle turns a URL or free-text query into one playable track.
	ResolveSingle(ctx context.Context, input string) (session.Track, error)

	// ResolvePlaylist enumerates a playlist into locator hints.
	ResolvePlaylist(ctx context.Context, url string) ([]session.PlaylistEntry, error)

	// SourceName returns the string identifier ("youtube", etc.)
	SourceName() string
}
