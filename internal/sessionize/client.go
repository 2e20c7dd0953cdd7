package sessionize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client fetches schedule data from the Sessionize public API.
type Client struct {
	httpClient   *http.Client
	scheduleURL  string
	speakersURL  string
	imageBaseURL string
	logger       *zap.Logger
}

// NewClient creates a Sessionize client.
func NewClient(scheduleURL, speakersURL, imageBaseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		scheduleURL:  scheduleURL,
		speakersURL:  speakersURL,
		imageBaseURL: imageBaseURL,
		logger:       logger,
	}
}

// FetchSchedule pulls the GridSmart schedule.
func (c *Client) FetchSchedule(ctx context.Context) (GridResponse, error) {
	var grid GridResponse
	if err := c.getJSON(ctx, c.scheduleURL, &grid); err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	return grid, nil
}

// FetchSpeakers pulls the speaker list.
func (c *Client) FetchSpeakers(ctx context.Context) ([]Speaker, error) {
	var speakers []Speaker
	if err := c.getJSON(ctx, c.speakersURL, &speakers); err != nil {
		return nil, fmt.Errorf("fetch speakers: %w", err)
	}
	return speakers, nil
}

// FetchImage streams a speaker image by upstream id. The caller must close
// the returned body.
func (c *Client) FetchImage(ctx context.Context, imageID string) (io.ReadCloser, string, error) {
	url := c.imageBaseURL + "/" + imageID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image %s: %w", imageID, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetch image %s: upstream status %d", imageID, resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
