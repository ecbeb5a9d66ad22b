// Package catalog is the track search collaborator: a small client for the
// Deezer public API. The engine only ever needs two things from the
// catalog — free-text search while players pick their tracks, and a lookup
// by id — and both return the same flattened Track shape.
//
// Every transport or response problem comes back as a *SearchError so the
// presentation layer can show one user-facing "search failed" message
// without caring what went wrong underneath. This is the only collaborator
// whose failures are surfaced at all; retries, if any, are the caller's
// business.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultLimit is the result count used when the caller doesn't ask for a
// specific one.
const DefaultLimit = 20

// Track is the flattened catalog metadata the game stores with a pick.
type Track struct {
	ExternalID string `json:"externalId"` // Deezer's track id
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	PreviewURL string `json:"previewUrl"` // 30-second MP3 preview
	AlbumCover string `json:"albumCover,omitempty"`
}

// SearchError wraps any failure talking to the catalog.
type SearchError struct {
	Op  string // "search" or "track"
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// deezerTrack mirrors the slice of Deezer's track object we care about.
// Deezer nests artist and album; we flatten them into Track.
type deezerTrack struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		CoverMedium string `json:"cover_medium"`
	} `json:"album"`
	Preview string `json:"preview"`
}

func (t deezerTrack) flatten() Track {
	return Track{
		ExternalID: strconv.FormatInt(t.ID, 10),
		Title:      t.Title,
		Artist:     t.Artist.Name,
		PreviewURL: t.Preview,
		AlbumCover: t.Album.CoverMedium,
	}
}

// Client talks to the Deezer API. The zero value is not usable; create one
// with NewClient.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a catalog client for the given API base URL (e.g.
// "https://api.deezer.com"). Pass nil to use a default 10-second-timeout
// HTTP client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Search runs a free-text track search. limit <= 0 falls back to
// DefaultLimit. An empty result list is not an error — players search for
// some strange things.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	u := fmt.Sprintf("%s/search?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), limit)

	var payload struct {
		Data []deezerTrack `json:"data"`
	}
	if err := c.getJSON(ctx, "search", u, &payload); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(payload.Data))
	for _, t := range payload.Data {
		tracks = append(tracks, t.flatten())
	}
	return tracks, nil
}

// TrackByID fetches a single track by Deezer id.
func (c *Client) TrackByID(ctx context.Context, id string) (*Track, error) {
	var payload deezerTrack
	if err := c.getJSON(ctx, "track", c.baseURL+"/track/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}
	track := payload.flatten()
	return &track, nil
}

func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &SearchError{Op: op, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &SearchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &SearchError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SearchError{Op: op, Err: err}
	}
	return nil
}
