package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	yt "github.com/kkdai/youtube/v2"
	ytapi "google.golang.org/api/youtube/v3"

	"tunebox/internal/session"
)

const SourceYouTube = "youtube"

// Source resolves YouTube URLs and free-text queries into playable stream
// URLs. Playlists are enumerated through the YouTube Data API when a service
// is provided; without one, playlist requests fail with a clear error.
type Source struct {
	client  *yt.Client
	search  *SearchResolver
	service *ytapi.Service // may be nil
}

func New(service *ytapi.Service) *Source {
	return &Source{
		client:  &yt.Client{},
		search:  NewSearchResolver(),
		service: service,
	}
}

func (s *Source) SourceName() string { return SourceYouTube }

func (s *Source) Match(input string) bool {
	return isYouTubeURL(input)
}

func (s *Source) IsPlaylist(input string) bool {
	return isPlaylistURL(input)
}

func (s *Source) ResolveSingle(ctx context.Context, input string) (session.Track, error) {
	input = strings.TrimSpace(input)

	videoURL := input
	if !isURL(input) {
		found, err := s.search.FirstVideoURL(input)
		if err != nil {
			return session.Track{}, err
		}
		videoURL = found
	} else if !isVideoURL(input) {
		return session.Track{}, errors.New("not a recognizable video URL")
	}

	video, err := s.client.GetVideoContext(ctx, cleanVideoURL(videoURL))
	if err != nil {
		return session.Track{}, fmt.Errorf("failed to get video: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return session.Track{}, errors.New("no audio formats found for video")
	}

	streamURL, err := s.client.GetStreamURLContext(ctx, video, bestAudioFormat(formats))
	if err != nil {
		return session.Track{}, fmt.Errorf("failed to get stream URL: %w", err)
	}

	return session.Track{Locator: streamURL, Title: video.Title}, nil
}

func (s *Source) ResolvePlaylist(ctx context.Context, playlistURL string) ([]session.PlaylistEntry, error) {
	if s.service == nil {
		return nil, errors.New("playlist support requires YOUTUBE_API_KEY")
	}

	id := playlistID(playlistURL)
	if id == "" {
		return nil, errors.New("no playlist identifier in URL")
	}

	var entries []session.PlaylistEntry
	pageToken := ""
	for {
		call := s.service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(id).
			MaxResults(50).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("playlist lookup failed: %w", err)
		}

		for _, item := range resp.Items {
			entries = append(entries, session.PlaylistEntry{
				Locator: "https://www.youtube.com/watch?v=" + item.Snippet.ResourceId.VideoId,
				Title:   item.Snippet.Title,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return entries, nil
}

// bestAudioFormat prefers the highest-bitrate format that carries audio.
func bestAudioFormat(formats yt.FormatList) *yt.Format {
	best := &formats[0]
	for i := range formats {
		if formats[i].Bitrate > best.Bitrate {
			best = &formats[i]
		}
	}
	return best
}
