// Package locations maps an arbitrary provider page URL to a known business
// location, using a locally cached projection of the user's locations.
package locations

import (
	"context"
	"regexp"
	"strings"

	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

var (
	googlePlaceIDRe    = regexp.MustCompile(`(?:place_id=|ludocid=|!1s)([A-Za-z0-9_:x-]+)`)
	bookingHotelIDRe   = regexp.MustCompile(`hotel_id=(\d+)`)
	tripadvisorIDRe    = regexp.MustCompile(`-d(\d+)`)
	trustpilotDomainRe = regexp.MustCompile(`(?i)trustpilot\.com/review/([a-z0-9.-]+)`)
)

type Resolver struct {
	kv kvstore.Store
}

func NewResolver(kv kvstore.Store) *Resolver {
	return &Resolver{kv: kv}
}

// Resolve maps a page URL to a cached location id. Heuristics in order:
// management-URL fragment substring, per-platform identifier equality, and
// finally the single cached location as an unconditional default. Not ok means
// "do not sync", never an error.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (string, bool) {
	var cached []models.CachedLocation
	found, err := r.kv.Get(ctx, kvstore.KeyLocations, &cached)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("location cache read failed")
		return "", false
	}
	if !found || len(cached) == 0 {
		return "", false
	}

	lowerURL := strings.ToLower(pageURL)

	// Management-URL fragments: first match wins.
	for _, loc := range cached {
		for _, fragment := range loc.ManagementURLs {
			if fragment == "" {
				continue
			}
			if strings.Contains(lowerURL, strings.ToLower(fragment)) {
				return loc.ID, true
			}
		}
	}

	// Identifier equality.
	if placeID := matchGroup(googlePlaceIDRe, pageURL); placeID != "" {
		for _, loc := range cached {
			if loc.GooglePlaceID != "" && strings.EqualFold(loc.GooglePlaceID, placeID) {
				return loc.ID, true
			}
		}
	}
	if hotelID := matchGroup(bookingHotelIDRe, pageURL); hotelID != "" {
		for _, loc := range cached {
			if loc.BookingHotelID == hotelID {
				return loc.ID, true
			}
		}
	}
	// The -d<id> segment is only meaningful on tripadvisor hosts.
	if strings.Contains(lowerURL, "tripadvisor") {
		if taID := matchGroup(tripadvisorIDRe, pageURL); taID != "" {
			for _, loc := range cached {
				if loc.TripAdvisorID == taID {
					return loc.ID, true
				}
			}
		}
	}
	if domain := matchGroup(trustpilotDomainRe, pageURL); domain != "" {
		for _, loc := range cached {
			if loc.TrustpilotDomain != "" && strings.EqualFold(loc.TrustpilotDomain, domain) {
				return loc.ID, true
			}
		}
	}

	// A single cached location is the only plausible answer.
	if len(cached) == 1 {
		return cached[0].ID, true
	}

	return "", false
}

func matchGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
