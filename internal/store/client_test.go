package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mounirl1/replystack-sub000/pkg/models"
)

func staticToken(tok string) TokenSource {
	return func(context.Context) string { return tok }
}

func TestSyncReviews_EmptyBatchShortCircuits(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), 10)
	result, err := c.SyncReviews(context.Background(), "loc-1", models.PlatformGoogle, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 0 || result.Updated != 0 || result.Unchanged != 0 {
		t.Errorf("expected zero counts, got %+v", result)
	}
	if calls != 0 {
		t.Errorf("expected no network call, got %d", calls)
	}
}

func TestSyncReviews_UploadsAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews/sync" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header: %q", got)
		}
		var body struct {
			LocationID string                   `json:"location_id"`
			Platform   models.Platform          `json:"platform"`
			Reviews    []models.ExtractedReview `json:"reviews"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.LocationID != "loc-1" || len(body.Reviews) != 1 {
			t.Errorf("unexpected body: %+v", body)
		}
		json.NewEncoder(w).Encode(models.SyncResult{Created: 1})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), 10)
	result, err := c.SyncReviews(context.Background(), "loc-1", models.PlatformGoogle, []models.ExtractedReview{
		{ExternalID: "r1", Rating: 4, Content: "Great stay"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("got %+v", result)
	}
}

func TestSyncReviews_HTTPErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), 10)
	_, err := c.SyncReviews(context.Background(), "loc-1", models.PlatformGoogle, []models.ExtractedReview{{ExternalID: "r1"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractionTasks_FlattensPerPlatform(t *testing.T) {
	fetched := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations/extraction-tasks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"location_id":   "loc-1",
				"location_name": "Hotel Aurora",
				"platforms": []map[string]any{
					{"platform": "google", "management_url": "https://business.google.com/reviews", "last_fetched_at": fetched},
					{"platform": "booking", "management_url": "https://admin.booking.com/x", "last_fetched_at": nil},
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), 10)
	tasks, err := c.ExtractionTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Platform != models.PlatformGoogle || tasks[0].LastFetchedAt == nil {
		t.Errorf("task 0: %+v", tasks[0])
	}
	if tasks[1].Platform != models.PlatformBooking || tasks[1].LastFetchedAt != nil {
		t.Errorf("task 1: %+v", tasks[1])
	}
}

func TestTouchLocation_SwallowsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"), 10)
	// Must not panic or surface the failure.
	c.TouchLocation(context.Background(), "loc-1", models.PlatformGoogle)
}
