package youtube

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var (
	videoPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)

	ErrNoVideoMatch = errors.New("no video found for the given query")
)

// SearchResolver finds the first video matching a free-text query by
// scraping the results page, no API key required.
type SearchResolver struct {
	BaseURL string
	Client  *http.Client
}

func NewSearchResolver() *SearchResolver {
	return &SearchResolver{
		BaseURL: "https://www.youtube.com",
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *SearchResolver) FirstVideoURL(query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.BaseURL, url.QueryEscape(query))

	resp, err := r.Client.Get(searchURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search failed with status code %v", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := videoPattern.FindStringSubmatch(string(body))
	if len(matches) > 1 {
		return fmt.Sprintf("%s/watch?v=%s", r.BaseURL, matches[1]), nil
	}

	return "", ErrNoVideoMatch
}
