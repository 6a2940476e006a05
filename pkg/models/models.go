package models

import "time"

// Platform identifies a review provider whose management pages we scrape.
type Platform string

const (
	PlatformGoogle      Platform = "google"
	PlatformBooking     Platform = "booking"
	PlatformTripAdvisor Platform = "tripadvisor"
	PlatformTrustpilot  Platform = "trustpilot"
)

// ExtractedReview is one review observed on a provider page, provider-agnostic.
// ExternalID is never empty: when the provider exposes no id, a fallback is
// synthesized at extraction time.
type ExtractedReview struct {
	ExternalID   string    `json:"external_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content"`
	Language     string    `json:"language,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	HasResponse  bool      `json:"has_response"`
}

// ExtractionTask is one (location, platform) pair eligible for unattended
// extraction. Materialized fresh on each orchestrator run, never persisted.
type ExtractionTask struct {
	LocationID    string     `json:"location_id"`
	LocationName  string     `json:"location_name"`
	Platform      Platform   `json:"platform"`
	ManagementURL string     `json:"management_url"`
	LastFetchedAt *time.Time `json:"last_fetched_at"`
}

// CachedLocation is a local projection of a business location, used only for
// URL matching. Rebuilt wholesale on every refresh.
type CachedLocation struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	GooglePlaceID    string              `json:"google_place_id,omitempty"`
	BookingHotelID   string              `json:"booking_hotel_id,omitempty"`
	TripAdvisorID    string              `json:"tripadvisor_id,omitempty"`
	TrustpilotDomain string              `json:"trustpilot_domain,omitempty"`
	ManagementURLs   map[Platform]string `json:"management_urls,omitempty"`
}

// SyncResult is the reconciliation outcome of one review upload.
type SyncResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

func (r SyncResult) Total() int {
	return r.Created + r.Updated + r.Unchanged
}

// UserProfile is the cached plan/quota snapshot of the current user.
type UserProfile struct {
	Email       string `json:"email"`
	Plan        string `json:"plan"`
	ReviewQuota int    `json:"review_quota"`
	ReviewsUsed int    `json:"reviews_used"`
}

// ExtractionRequest asks a page context for an immediate, non-debounced
// extraction cycle.
type ExtractionRequest struct {
	Type           string   `json:"type"`
	Platform       Platform `json:"platform"`
	LocationID     string   `json:"location_id"`
	AutoExtraction bool     `json:"auto_extraction"`
}

// ExtractionComplete reports the outcome of an extraction cycle back to the
// requesting context. Gated means the cycle could not run (no credential or
// unknown location), which is distinct from an empty result.
type ExtractionComplete struct {
	Type           string     `json:"type"`
	Result         SyncResult `json:"result"`
	AutoExtraction bool       `json:"auto_extraction"`
	Gated          bool       `json:"gated,omitempty"`
}

const (
	MsgRequestExtraction  = "REQUEST_EXTRACTION"
	MsgExtractionComplete = "EXTRACTION_COMPLETE"
)
