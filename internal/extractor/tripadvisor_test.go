package extractor

import "testing"

func TestTripAdvisorExtractor_BubbleClass(t *testing.T) {
	doc := docFrom(t, `
		<div data-reviewid="ta-55">
			<a class="ui_header_link">traveler42</a>
			<span class="ui_bubble_rating bubble_40"></span>
			<p class="partial_entry">Amazing location near the beach</p>
			<span class="ratingDate">March 12, 2024</span>
		</div>`)

	reviews := NewTripAdvisorExtractor().ExtractAll(doc)
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}

	r := reviews[0]
	if r.Rating != 4 {
		t.Errorf("rating: got %d, want 4 from bubble_40", r.Rating)
	}
	if r.ExternalID != "ta-55" {
		t.Errorf("external id: got %q", r.ExternalID)
	}
	if r.AuthorName != "traveler42" {
		t.Errorf("author: got %q", r.AuthorName)
	}
	if r.PublishedAt.Year() != 2024 {
		t.Errorf("published at: got %v", r.PublishedAt)
	}
}

func TestTripAdvisorExtractor_BrokenSiblingSkipped(t *testing.T) {
	// The second container has no usable fields at all; it must still yield a
	// review with defaults rather than aborting the first one.
	doc := docFrom(t, `
		<div data-reviewid="ta-1">
			<span class="ui_bubble_rating bubble_50"></span>
			<p class="partial_entry">Five bubbles</p>
		</div>
		<div data-reviewid="ta-2"></div>`)

	reviews := NewTripAdvisorExtractor().ExtractAll(doc)
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	if reviews[0].Rating != 5 {
		t.Errorf("first rating: got %d", reviews[0].Rating)
	}
	if reviews[1].Rating != 3 {
		t.Errorf("second rating: got %d, want neutral default", reviews[1].Rating)
	}
}

func TestTrustpilotExtractor_DataAttribute(t *testing.T) {
	doc := docFrom(t, `
		<article data-service-review-card-paper data-service-review-id="tp-88">
			<span data-consumer-name-typography>Maria</span>
			<div data-service-review-rating="5"></div>
			<p data-service-review-text-typography>Excellent support team</p>
			<time data-service-review-date-time-ago>3 days ago</time>
		</article>`)

	reviews := NewTrustpilotExtractor().ExtractAll(doc)
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}
	if reviews[0].Rating != 5 {
		t.Errorf("rating: got %d, want 5", reviews[0].Rating)
	}
	if reviews[0].ExternalID != "tp-88" {
		t.Errorf("external id: got %q", reviews[0].ExternalID)
	}
}

func TestTrustpilotExtractor_AltTextFallback(t *testing.T) {
	doc := docFrom(t, `
		<article data-service-review-card-paper data-service-review-id="tp-2">
			<div class="star-rating"><img alt="Rated 4 out of 5 stars"></div>
			<p data-service-review-text-typography>Good overall</p>
		</article>`)

	reviews := NewTrustpilotExtractor().ExtractAll(doc)
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}
	if reviews[0].Rating != 4 {
		t.Errorf("rating: got %d, want 4 from alt text", reviews[0].Rating)
	}
}
