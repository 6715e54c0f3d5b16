package resolver

import (
	"context"
	"errors"
	"strings"

	"tunebox/internal/music/sources"
	"tunebox/internal/music/sources/youtube"
	"tunebox/internal/session"
)

// Resolver routes queries to the registered sources. Free-text queries fall
// through to the YouTube source, URLs are matched against each source in turn.
type Resolver struct {
	Sources map[string]sources.Source
}

func New(youtubeSource *youtube.Source) *Resolver {
	return &Resolver{
		Sources: map[string]sources.Source{
			youtubeSource.SourceName(): youtubeSource,
		},
	}
}

func (r *Resolver) ResolveSingle(ctx context.Context, query string) (session.Track, error) {
	src, err := r.pick(query)
	if err != nil {
		return session.Track{}, err
	}
	return src.ResolveSingle(ctx, query)
}

func (r *Resolver) ResolvePlaylist(ctx context.Context, query string) ([]session.PlaylistEntry, error) {
	src, err := r.pick(query)
	if err != nil {
		return nil, err
	}
	return src.ResolvePlaylist(ctx, query)
}

func (r *Resolver) IsPlaylist(query string) bool {
	src, err := r.pick(query)
	if err != nil {
		return false
	}
	return src.IsPlaylist(query)
}

func (r *Resolver) pick(query string) (sources.Source, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty query")
	}

	if !isURL(query) {
		yt, ok := r.Sources[youtube.SourceYouTube]
		if !ok {
			return nil, errors.New("no source available for title search")
		}
		return yt, nil
	}

	for _, s := range r.Sources {
		if s.Match(query) {
			return s, nil
		}
	}
	return nil, errors.New("no matching source found")
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}
