package extractor

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mounirl1/replystack-sub000/pkg/logger"
	"github.com/mounirl1/replystack-sub000/pkg/models"
	"github.com/mounirl1/replystack-sub000/pkg/normalize"
	"github.com/mounirl1/replystack-sub000/pkg/selector"
)

// neutralRating is the default when every rating strategy fails for a review.
const neutralRating = 3

// Extractor extracts reviews from one provider's management page markup.
type Extractor interface {
	Platform() models.Platform
	Containers(doc *goquery.Document) *goquery.Selection
	ExtractAll(doc *goquery.Document) []models.ExtractedReview
}

// fieldSelectors holds the ordered selector candidate sets for one provider.
// Candidates are tried most-specific first; markup drift on the source page
// is expected, so every set carries older variants as fallbacks.
type fieldSelectors struct {
	container       []string
	externalID      []string
	externalIDAttrs []string
	author          []string
	avatar          []string
	rating          []string
	content         []string
	contentPositive []string
	contentNegative []string
	date            []string
	ownerReply      []string
}

// ratingFunc parses one review container's rating; returns 0 when the
// strategy found nothing usable.
type ratingFunc func(container *goquery.Selection) int

// extractReviews runs the shared per-container loop. A panic while reading one
// container drops that review and continues with its siblings.
func extractReviews(doc *goquery.Document, platform models.Platform, sel fieldSelectors, rating ratingFunc, now time.Time) []models.ExtractedReview {
	containers := selector.ResolveAll(doc.Selection, sel.container)
	if containers == nil {
		return nil
	}

	reviews := make([]models.ExtractedReview, 0, containers.Length())
	containers.Each(func(i int, container *goquery.Selection) {
		review, ok := extractOne(platform, container, sel, rating, now)
		if ok {
			reviews = append(reviews, review)
		}
	})
	return reviews
}

func extractOne(platform models.Platform, container *goquery.Selection, sel fieldSelectors, rating ratingFunc, now time.Time) (review models.ExtractedReview, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Warn().Str("platform", string(platform)).Interface("panic", r).Msg("review extraction failed, skipping")
			ok = false
		}
	}()

	review.AuthorName = normalize.CleanText(selector.ResolveText(container, sel.author))
	review.AuthorAvatar = resolveAvatar(container, sel.avatar)

	review.Rating = clampRating(rating(container))

	review.Content = extractContent(container, sel)
	review.Language = normalize.DetectLanguage(review.Content)
	review.PublishedAt = normalize.ParseReviewDate(selector.ResolveText(container, sel.date), now)
	review.HasResponse = selector.ResolveFirst(container, sel.ownerReply) != nil

	review.ExternalID = resolveExternalID(container, sel)
	if review.ExternalID == "" {
		review.ExternalID = normalize.FallbackReviewID(review.AuthorName, review.Rating, review.Content, now)
	}

	return review, true
}

func extractContent(container *goquery.Selection, sel fieldSelectors) string {
	if len(sel.contentPositive) > 0 || len(sel.contentNegative) > 0 {
		positive := normalize.CleanText(selector.ResolveText(container, sel.contentPositive))
		negative := normalize.CleanText(selector.ResolveText(container, sel.contentNegative))
		switch {
		case positive != "" && negative != "":
			return positive + "\n" + negative
		case positive != "":
			return positive
		case negative != "":
			return negative
		}
	}
	return normalize.CleanText(selector.ResolveText(container, sel.content))
}

func resolveExternalID(container *goquery.Selection, sel fieldSelectors) string {
	for _, attr := range sel.externalIDAttrs {
		// The id attribute often sits on the container itself.
		if v, exists := container.Attr(attr); exists && v != "" {
			return v
		}
		if v := selector.ResolveAttr(container, sel.externalID, attr); v != "" {
			return v
		}
	}
	return ""
}

func resolveAvatar(container *goquery.Selection, candidates []string) string {
	for _, attr := range []string{"src", "data-src"} {
		if v := selector.ResolveAttr(container, candidates, attr); v != "" {
			return v
		}
	}
	return ""
}

func clampRating(r int) int {
	if r < 1 || r > 5 {
		return neutralRating
	}
	return r
}
