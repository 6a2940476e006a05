// Package store is the HTTP client for the ReplyStack backend: review sync,
// extraction task discovery, location listing and profile lookup. The backend
// owns persistence, quota accounting and reconciliation; this side only ships
// JSON over a bearer-token boundary.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mounirl1/replystack-sub000/pkg/logger"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

// TokenSource supplies the current bearer token; it is read per request so a
// refreshed token in the kv store takes effect without rebuilding the client.
type TokenSource func(ctx context.Context) string

type Client struct {
	base  string
	hc    *http.Client
	token TokenSource
	rl    *rate.Limiter
}

func New(base string, token TokenSource, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:  base,
		hc:    &http.Client{Timeout: 20 * time.Second},
		token: token,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}
}

type syncRequest struct {
	LocationID string                   `json:"location_id"`
	Platform   models.Platform          `json:"platform"`
	Reviews    []models.ExtractedReview `json:"reviews"`
}

// SyncReviews uploads extracted reviews for reconciliation. An empty batch
// short-circuits locally: no network call, zero counts.
func (c *Client) SyncReviews(ctx context.Context, locationID string, platform models.Platform, reviews []models.ExtractedReview) (models.SyncResult, error) {
	if len(reviews) == 0 {
		return models.SyncResult{}, nil
	}

	var result models.SyncResult
	err := c.do(ctx, http.MethodPost, "/reviews/sync", syncRequest{
		LocationID: locationID,
		Platform:   platform,
		Reviews:    reviews,
	}, &result)
	return result, err
}

type taskListing struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	Platforms    []struct {
		Platform      models.Platform `json:"platform"`
		ManagementURL string          `json:"management_url"`
		LastFetchedAt *time.Time      `json:"last_fetched_at"`
	} `json:"platforms"`
}

// ExtractionTasks lists pending work, flattened to one task per platform.
func (c *Client) ExtractionTasks(ctx context.Context) ([]models.ExtractionTask, error) {
	var listings []taskListing
	if err := c.do(ctx, http.MethodGet, "/locations/extraction-tasks", nil, &listings); err != nil {
		return nil, err
	}

	var tasks []models.ExtractionTask
	for _, l := range listings {
		for _, p := range l.Platforms {
			tasks = append(tasks, models.ExtractionTask{
				LocationID:    l.LocationID,
				LocationName:  l.LocationName,
				Platform:      p.Platform,
				ManagementURL: p.ManagementURL,
				LastFetchedAt: p.LastFetchedAt,
			})
		}
	}
	return tasks, nil
}

func (c *Client) Locations(ctx context.Context) ([]models.CachedLocation, error) {
	var locations []models.CachedLocation
	err := c.do(ctx, http.MethodGet, "/locations", nil, &locations)
	return locations, err
}

// TouchLocation records a successful fetch. Best effort: failures are logged
// and swallowed, the next run simply sees a staler timestamp.
func (c *Client) TouchLocation(ctx context.Context, locationID string, platform models.Platform) {
	path := fmt.Sprintf("/locations/%s/sync", locationID)
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"platform": platform}, nil); err != nil {
		logger.Log.Debug().Err(err).Str("location", locationID).Msg("touch location failed")
	}
}

func (c *Client) Profile(ctx context.Context) (models.UserProfile, error) {
	var profile models.UserProfile
	err := c.do(ctx, http.MethodGet, "/me", nil, &profile)
	return profile, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("store: %s %s returned %d: %s", method, path, resp.StatusCode, string(b))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
