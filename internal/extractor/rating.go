package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mounirl1/replystack-sub000/pkg/selector"
)

var ratingNumberRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)

// parseRatingNumber pulls the first decimal number out of free text like
// "4 stars", "Rated 4.0 out of 5" or "8,7". Returns 0 when none is found.
func parseRatingNumber(text string) float64 {
	m := ratingNumberRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// ariaRating reads a numeric rating from the aria-label of the first matching
// candidate, e.g. <span aria-label="4 stars">.
func ariaRating(container *goquery.Selection, candidates []string) int {
	label := selector.ResolveAttr(container, candidates, "aria-label")
	if label == "" {
		return 0
	}
	return int(math.Round(parseRatingNumber(label)))
}

// countedRating counts filled rating icons matched by the first candidate with
// any hits.
func countedRating(container *goquery.Selection, candidates []string) int {
	icons := selector.ResolveAll(container, candidates)
	if icons == nil {
		return 0
	}
	return icons.Length()
}

// halvedRating converts a 10-point score to the 5-point scale: halved,
// rounded, floored at 1.
func halvedRating(score float64) int {
	if score <= 0 {
		return 0
	}
	r := int(math.Round(score / 2))
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return r
}
