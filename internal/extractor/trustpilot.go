package extractor

import (
	"math"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mounirl1/replystack-sub000/pkg/models"
	"github.com/mounirl1/replystack-sub000/pkg/selector"
)

// TrustpilotExtractor handles Trustpilot business review pages. Ratings come
// from a data attribute on the star image, with img alt text as fallback.
// Default on total failure: 3.
type TrustpilotExtractor struct {
	sel fieldSelectors
}

func NewTrustpilotExtractor() *TrustpilotExtractor {
	return &TrustpilotExtractor{
		sel: fieldSelectors{
			container: []string{
				`article[data-service-review-card-paper]`,
				`article[class*="reviewCard"]`,
				`div.review-card`,
			},
			externalIDAttrs: []string{"data-service-review-id", "data-review-id", "id"},
			externalID:      []string{`[data-service-review-id]`},
			author: []string{
				`span[data-consumer-name-typography]`,
				`a[name="consumer-profile"] span`,
				`div.consumer-information__name`,
			},
			avatar: []string{
				`img[data-consumer-avatar-image]`,
				`div.consumer-information img`,
			},
			rating: []string{
				`div[data-service-review-rating]`,
				`div.star-rating img`,
				`img[alt*="Rated"]`,
			},
			content: []string{
				`p[data-service-review-text-typography]`,
				`div.review-content__text`,
				`section[class*="contentSection"] p`,
			},
			date: []string{
				`time[data-service-review-date-time-ago]`,
				`div.review-content-header__dates`,
				`time`,
			},
			ownerReply: []string{
				`div[data-service-review-business-reply]`,
				`div.brand-company-reply`,
				`[class*="replyInfo"]`,
			},
		},
	}
}

func (e *TrustpilotExtractor) Platform() models.Platform { return models.PlatformTrustpilot }

func (e *TrustpilotExtractor) Containers(doc *goquery.Document) *goquery.Selection {
	return selector.ResolveAll(doc.Selection, e.sel.container)
}

func (e *TrustpilotExtractor) ExtractAll(doc *goquery.Document) []models.ExtractedReview {
	return extractReviews(doc, e.Platform(), e.sel, e.rating, time.Now())
}

func (e *TrustpilotExtractor) rating(container *goquery.Selection) int {
	if v := selector.ResolveAttr(container, e.sel.rating, "data-service-review-rating"); v != "" {
		return int(math.Round(parseRatingNumber(v)))
	}
	el := selector.ResolveFirst(container, []string{`img[alt*="Rated"]`, `div.star-rating img`})
	if el != nil {
		if alt, exists := el.Attr("alt"); exists {
			return int(math.Round(parseRatingNumber(alt)))
		}
	}
	return 0
}
