package selector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestResolveFirst_OrderWins(t *testing.T) {
	doc := mustDoc(t, `<div class="new">a</div><div class="old">b</div>`)

	got := ResolveFirst(doc.Selection, []string{".new", ".old"})
	if got == nil {
		t.Fatal("expected a match")
	}
	if text := got.Text(); text != "a" {
		t.Errorf("expected first candidate to win, got %q", text)
	}
}

func TestResolveFirst_FallsThrough(t *testing.T) {
	doc := mustDoc(t, `<span class="legacy">x</span>`)

	got := ResolveFirst(doc.Selection, []string{".modern", ".legacy"})
	if got == nil {
		t.Fatal("expected fallback candidate to match")
	}
	if text := got.Text(); text != "x" {
		t.Errorf("got %q", text)
	}
}

func TestResolveFirst_InvalidSelectorSkipped(t *testing.T) {
	doc := mustDoc(t, `<p class="ok">hello</p>`)

	got := ResolveFirst(doc.Selection, []string{"div[", ":::bad:::", ".ok"})
	if got == nil {
		t.Fatal("invalid candidates should be skipped, not abort")
	}
	if text := got.Text(); text != "hello" {
		t.Errorf("got %q", text)
	}
}

func TestResolveFirst_NoMatch(t *testing.T) {
	doc := mustDoc(t, `<p>hello</p>`)

	if got := ResolveFirst(doc.Selection, []string{".missing", "div["}); got != nil {
		t.Errorf("expected nil, got %d nodes", got.Length())
	}
}

func TestResolveAll_FirstCandidateNotUnion(t *testing.T) {
	doc := mustDoc(t, `
		<div class="narrow">1</div>
		<div class="wide">2</div>
		<div class="wide">3</div>
		<div class="wide">4</div>`)

	got := ResolveAll(doc.Selection, []string{".narrow", ".wide"})
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Length() != 1 {
		t.Errorf("expected the narrower first candidate only, got %d nodes", got.Length())
	}
}

func TestResolveAll_AllOfFirstMatchingCandidate(t *testing.T) {
	doc := mustDoc(t, `<li>a</li><li>b</li><li>c</li>`)

	got := ResolveAll(doc.Selection, []string{".none", "li"})
	if got == nil || got.Length() != 3 {
		t.Fatalf("expected 3 nodes, got %v", got)
	}
}

func TestResolveText_Trimmed(t *testing.T) {
	doc := mustDoc(t, `<h1>  Great stay  </h1>`)

	if got := ResolveText(doc.Selection, []string{"h1"}); got != "Great stay" {
		t.Errorf("got %q", got)
	}
}

func TestResolveAttr_Missing(t *testing.T) {
	doc := mustDoc(t, `<img class="avatar">`)

	if got := ResolveAttr(doc.Selection, []string{".avatar"}, "src"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
