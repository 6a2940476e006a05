package extractor

import (
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mounirl1/replystack-sub000/pkg/models"
	"github.com/mounirl1/replystack-sub000/pkg/selector"
)

// TripAdvisorExtractor handles TripAdvisor management center review pages.
// The rating is encoded in a CSS class (bubble_40 = 4 stars); aria-label
// parsing is the fallback. Default on total failure: 3.
type TripAdvisorExtractor struct {
	sel fieldSelectors
}

var bubbleClassRe = regexp.MustCompile(`bubble_(\d{1,2})`)

func NewTripAdvisorExtractor() *TripAdvisorExtractor {
	return &TripAdvisorExtractor{
		sel: fieldSelectors{
			container: []string{
				`div[data-reviewid]`,
				`div[data-automation="reviewCard"]`,
				`div.review-container`,
				`div.reviewSelector`,
			},
			externalIDAttrs: []string{"data-reviewid", "data-review-id", "id"},
			externalID:      []string{`[data-reviewid]`},
			author: []string{
				`span.info_text div`,
				`a.ui_header_link`,
				`[class*="memberInfo"] span`,
				`div.username`,
			},
			avatar: []string{
				`img.ui_avatar`,
				`div.avatar img`,
				`img[class*="avatar"]`,
			},
			rating: []string{
				`span.ui_bubble_rating`,
				`div[class*="rating"] span[class*="bubble"]`,
				`svg[aria-label*="bubble"]`,
			},
			content: []string{
				`q.XllAv span`,
				`p.partial_entry`,
				`div.entry p`,
				`[data-automation="reviewText"]`,
			},
			date: []string{
				`span.ratingDate`,
				`div[class*="ratingDate"]`,
				`[data-automation="reviewDate"]`,
			},
			ownerReply: []string{
				`div.mgrRspnInline`,
				`[data-automation="ownerResponse"]`,
				`[class*="mgmt-response"]`,
			},
		},
	}
}

func (e *TripAdvisorExtractor) Platform() models.Platform { return models.PlatformTripAdvisor }

func (e *TripAdvisorExtractor) Containers(doc *goquery.Document) *goquery.Selection {
	return selector.ResolveAll(doc.Selection, e.sel.container)
}

func (e *TripAdvisorExtractor) ExtractAll(doc *goquery.Document) []models.ExtractedReview {
	return extractReviews(doc, e.Platform(), e.sel, e.rating, time.Now())
}

func (e *TripAdvisorExtractor) rating(container *goquery.Selection) int {
	el := selector.ResolveFirst(container, e.sel.rating)
	if el != nil {
		if class, exists := el.Attr("class"); exists {
			if m := bubbleClassRe.FindStringSubmatch(class); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					return n / 10
				}
			}
		}
	}
	return ariaRating(container, e.sel.rating)
}
