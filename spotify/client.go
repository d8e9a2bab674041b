package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/beatsync"
)

// requestCeiling bounds requests whose context carries no deadline
const requestCeiling = 60 * time.Second

// APIError is a non-2xx response other than an expired credential
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify api %d: %s", e.Status, e.Message)
}

// Client talks to the Web API player and audio-analysis endpoints
type Client struct {
	baseURL string
	http    *http.Client
	token   *Token
	log     *zap.Logger
}

// NewClient creates a client against baseURL, e.g. https://api.spotify.com/v1
func NewClient(baseURL string, token *Token, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestCeiling},
		token:   token,
		log:     log.Named("spotify"),
	}
}

type playerResponse struct {
	ProgressMs int64 `json:"progress_ms"`
	IsPlaying  bool  `json:"is_playing"`
	Item       *struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		DurationMs int64  `json:"duration_ms"`
		Artists    []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"item"`
}

type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// PollPlayback returns nil, nil when nothing (or nothing with a track) is playing
func (c *Client) PollPlayback(ctx context.Context) (*beatsync.Playback, error) {
	var resp playerResponse
	ok, err := c.get(ctx, "/me/player", &resp)
	if err != nil || !ok || resp.Item == nil {
		return nil, err
	}

	pb := &beatsync.Playback{
		TrackID:    resp.Item.ID,
		Name:       resp.Item.Name,
		ProgressMs: resp.ProgressMs,
		DurationMs: resp.Item.DurationMs,
		IsPlaying:  resp.IsPlaying,
	}
	if len(resp.Item.Artists) > 0 {
		pb.Artist = resp.Item.Artists[0].Name
	}
	return pb, nil
}

// FetchAnalysis returns the audio analysis of trackID
func (c *Client) FetchAnalysis(ctx context.Context, trackID string) (*beatsync.Analysis, error) {
	var a beatsync.Analysis
	ok, err := c.get(ctx, "/audio-analysis/"+url.PathEscape(trackID), &a)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("empty analysis for %s", trackID)
	}
	return &a, nil
}

// get decodes a JSON body into out, false when the response carried no content
func (c *Client) get(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token.Value())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.token.Invalidate()
		c.log.Error("token rejected", zap.String("path", path))
		return false, fmt.Errorf("GET %s: %w", path, beatsync.ErrCredentialExpired)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, apiError(resp.StatusCode, body)
	case resp.StatusCode == http.StatusNoContent || len(body) == 0:
		return false, nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func apiError(status int, body []byte) *APIError {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return &APIError{Status: status, Message: e.Error.Message}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}
