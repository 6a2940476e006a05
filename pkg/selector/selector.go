package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// ResolveFirst tries candidates in order and returns the first single element
// that any of them matches. Invalid selectors are skipped. Returns nil when no
// candidate matches.
func ResolveFirst(root *goquery.Selection, candidates []string) *goquery.Selection {
	for _, candidate := range candidates {
		m, err := cascadia.Compile(candidate)
		if err != nil {
			continue
		}
		found := root.FindMatcher(m)
		if found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// ResolveAll tries candidates in order and returns everything the first
// matching candidate selects. Candidates are ordered by specificity, so a
// narrower higher-priority match wins over a broader later one; results are
// never merged across candidates. Returns nil when no candidate matches.
func ResolveAll(root *goquery.Selection, candidates []string) *goquery.Selection {
	for _, candidate := range candidates {
		m, err := cascadia.Compile(candidate)
		if err != nil {
			continue
		}
		found := root.FindMatcher(m)
		if found.Length() > 0 {
			return found
		}
	}
	return nil
}

// ResolveText returns the trimmed text of the first matching candidate, or "".
func ResolveText(root *goquery.Selection, candidates []string) string {
	found := ResolveFirst(root, candidates)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text())
}

// ResolveAttr returns the named attribute of the first matching candidate, or "".
func ResolveAttr(root *goquery.Selection, candidates []string, attr string) string {
	found := ResolveFirst(root, candidates)
	if found == nil {
		return ""
	}
	val, _ := found.Attr(attr)
	return strings.TrimSpace(val)
}
