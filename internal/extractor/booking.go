package extractor

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mounirl1/replystack-sub000/pkg/models"
	"github.com/mounirl1/replystack-sub000/pkg/selector"
)

// BookingExtractor handles Booking.com extranet review pages. Booking scores
// on a 10-point scale; the score is halved and rounded into [1,5]. Review text
// is bifurcated into positive and negative parts. Default on total failure: 3.
type BookingExtractor struct {
	sel fieldSelectors
}

func NewBookingExtractor() *BookingExtractor {
	return &BookingExtractor{
		sel: fieldSelectors{
			container: []string{
				`div[data-review-id]`,
				`li.review_list_new_item_block`,
				`div.c-review-block`,
				`.review_item`,
			},
			externalIDAttrs: []string{"data-review-id", "data-id"},
			externalID:      []string{`[data-review-id]`},
			author: []string{
				`span.bui-avatar-block__title`,
				`.c-guest-name`,
				`p.reviewer_name`,
				`[class*="guest-name"]`,
			},
			avatar: []string{
				`img.bui-avatar__image`,
				`.reviewer_photo img`,
			},
			rating: []string{
				`div.bui-review-score__badge`,
				`.review-score-badge`,
				`span.review_score_value`,
			},
			contentPositive: []string{
				`div.c-review__row--positive span.c-review__body`,
				`p.review_pos`,
				`[class*="review-positive"]`,
			},
			contentNegative: []string{
				`div.c-review__row--negative span.c-review__body`,
				`p.review_neg`,
				`[class*="review-negative"]`,
			},
			content: []string{
				`span.c-review__body`,
				`.review_item_review_content`,
			},
			date: []string{
				`span.c-review-block__date`,
				`.review_item_date`,
				`[class*="review-date"]`,
			},
			ownerReply: []string{
				`div.c-review-block__response`,
				`.review_item_response`,
				`[class*="property-response"]`,
			},
		},
	}
}

func (e *BookingExtractor) Platform() models.Platform { return models.PlatformBooking }

func (e *BookingExtractor) Containers(doc *goquery.Document) *goquery.Selection {
	return selector.ResolveAll(doc.Selection, e.sel.container)
}

func (e *BookingExtractor) ExtractAll(doc *goquery.Document) []models.ExtractedReview {
	return extractReviews(doc, e.Platform(), e.sel, e.rating, time.Now())
}

func (e *BookingExtractor) rating(container *goquery.Selection) int {
	score := parseRatingNumber(selector.ResolveText(container, e.sel.rating))
	if r := halvedRating(score); r > 0 {
		return r
	}
	return ariaRating(container, e.sel.rating)
}
