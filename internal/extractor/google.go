package extractor

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mounirl1/replystack-sub000/pkg/models"
	"github.com/mounirl1/replystack-sub000/pkg/selector"
)

// GoogleExtractor handles Google Business Profile review pages. Ratings are
// encoded in the aria-label of the star row; filled-star counting is the
// fallback. Default on total failure: 3.
type GoogleExtractor struct {
	sel fieldSelectors
}

func NewGoogleExtractor() *GoogleExtractor {
	return &GoogleExtractor{
		sel: fieldSelectors{
			container: []string{
				`div[data-review-id]`,
				`div.jftiEf`,
				`div[jscontroller][data-google-review-count]`,
				`div.review-container`,
			},
			externalIDAttrs: []string{"data-review-id", "data-reviewid", "data-id"},
			externalID:      []string{`[data-review-id]`, `[data-reviewid]`},
			author: []string{
				`div.d4r55`,
				`[class*="author"] span`,
				`a[href*="/maps/contrib/"]`,
				`.review-author`,
			},
			avatar: []string{
				`img.NBa7we`,
				`img[src*="googleusercontent"]`,
				`img[class*="avatar"]`,
			},
			rating: []string{
				`span.kvMYJc[aria-label]`,
				`span[role="img"][aria-label]`,
				`[aria-label*="star"]`,
			},
			content: []string{
				`span.wiI7pd`,
				`div.MyEned span`,
				`[class*="review-text"]`,
				`.review-full-text`,
			},
			date: []string{
				`span.rsqaWe`,
				`[class*="review-date"]`,
				`span.dehysf`,
			},
			ownerReply: []string{
				`div.CDe7pd`,
				`[class*="owner-response"]`,
				`div[data-owner-reply]`,
			},
		},
	}
}

func (e *GoogleExtractor) Platform() models.Platform { return models.PlatformGoogle }

func (e *GoogleExtractor) Containers(doc *goquery.Document) *goquery.Selection {
	return selector.ResolveAll(doc.Selection, e.sel.container)
}

func (e *GoogleExtractor) ExtractAll(doc *goquery.Document) []models.ExtractedReview {
	return extractReviews(doc, e.Platform(), e.sel, e.rating, time.Now())
}

var googleFilledStars = []string{
	`img[src*="ic_star_rate"]`,
	`span.vzX5Ic`,
	`[class*="star-filled"]`,
}

func (e *GoogleExtractor) rating(container *goquery.Selection) int {
	if r := ariaRating(container, e.sel.rating); r > 0 {
		return r
	}
	return countedRating(container, googleFilledStars)
}
