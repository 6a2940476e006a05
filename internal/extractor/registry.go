package extractor

import (
	"regexp"

	"github.com/mounirl1/replystack-sub000/pkg/models"
)

// Registry maps platform tags to extractor implementations and page URLs to
// platform tags. New providers are additive entries here; there is no
// inheritance hierarchy to extend.
type Registry struct {
	extractors map[models.Platform]Extractor
}

type platformPattern struct {
	platform models.Platform
	patterns []*regexp.Regexp
}

// Ordered: more specific hosts first.
var platformPatterns = []platformPattern{
	{models.PlatformGoogle, []*regexp.Regexp{
		regexp.MustCompile(`business\.google\.[a-z.]+`),
		regexp.MustCompile(`search\.google\.[a-z.]+/local/reviews`),
		regexp.MustCompile(`google\.[a-z.]+/maps`),
	}},
	{models.PlatformBooking, []*regexp.Regexp{
		regexp.MustCompile(`admin\.booking\.com`),
		regexp.MustCompile(`booking\.com/hotel`),
	}},
	{models.PlatformTripAdvisor, []*regexp.Regexp{
		regexp.MustCompile(`tripadvisor\.[a-z.]+`),
	}},
	{models.PlatformTrustpilot, []*regexp.Regexp{
		regexp.MustCompile(`business\.trustpilot\.com`),
		regexp.MustCompile(`trustpilot\.com/review`),
	}},
}

// Review-management path segments across the locales the consoles render in.
var reviewPagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/reviews?(/|$|\?)`),
	regexp.MustCompile(`(?i)/avis(/|$|\?)`),
	regexp.MustCompile(`(?i)/bewertungen(/|$|\?)`),
	regexp.MustCompile(`(?i)/recensioni(/|$|\?)`),
	regexp.MustCompile(`(?i)/opiniones(/|$|\?)`),
	regexp.MustCompile(`(?i)/beoordelingen(/|$|\?)`),
	regexp.MustCompile(`(?i)/avaliacoes(/|$|\?)`),
	regexp.MustCompile(`(?i)[?&]tab=reviews`),
}

func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[models.Platform]Extractor)}
	r.register(NewGoogleExtractor())
	r.register(NewBookingExtractor())
	r.register(NewTripAdvisorExtractor())
	r.register(NewTrustpilotExtractor())
	return r
}

func (r *Registry) register(e Extractor) {
	r.extractors[e.Platform()] = e
}

// ForPlatform returns the extractor for a tag, or nil for unknown tags.
func (r *Registry) ForPlatform(p models.Platform) Extractor {
	return r.extractors[p]
}

// DetectPlatform maps a page URL to a platform tag, or "" when no pattern
// matches.
func (r *Registry) DetectPlatform(url string) models.Platform {
	for _, pp := range platformPatterns {
		for _, re := range pp.patterns {
			if re.MatchString(url) {
				return pp.platform
			}
		}
	}
	return ""
}

// IsReviewManagementPage reports whether the URL looks like a review
// management page, independent of platform detection.
func (r *Registry) IsReviewManagementPage(url string) bool {
	for _, re := range reviewPagePatterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
