package normalize

import (
	"testing"
	"time"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  hello   world  ", "hello world"},
		{"line\none\n\nline two", "line one line two"},
		{"tabs\t\tand\x00control\x07chars", "tabs andcontrolchars"},
		{"already clean", "already clean"},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Errorf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	once := CleanText("  a \n b\t c ")
	if twice := CleanText(once); twice != once {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestParseReviewDate_Relative(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2 hours ago", now.Add(-2 * time.Hour)},
		{"3 days ago", now.AddDate(0, 0, -3)},
		{"2 weeks ago", now.AddDate(0, 0, -14)},
		{"a month ago", now.AddDate(0, -1, 0)},
		{"2 years ago", now.AddDate(-2, 0, 0)},
		{"il y a 3 jours", now.AddDate(0, 0, -3)},
		{"il y a un mois", now.AddDate(0, -1, 0)},
		{"vor 2 Wochen", now.AddDate(0, 0, -14)},
		{"vor einem Jahr", now.AddDate(-1, 0, 0)},
		{"hace 5 días", now.AddDate(0, 0, -5)},
		{"4 giorni fa", now.AddDate(0, 0, -4)},
		{"3 maanden geleden", now.AddDate(0, -3, 0)},
		{"há 2 anos", now.AddDate(-2, 0, 0)},
	}
	for _, c := range cases {
		if got := ParseReviewDate(c.in, now); !got.Equal(c.want) {
			t.Errorf("ParseReviewDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

// Month arithmetic must be calendar aware, not a fixed 30 days.
func TestParseReviewDate_CalendarMonths(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	got := ParseReviewDate("1 month ago", now)
	want := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseReviewDate_TodayYesterday(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	if got := ParseReviewDate("Today", now); !got.Equal(now) {
		t.Errorf("today: got %v", got)
	}
	if got := ParseReviewDate("gestern", now); !got.Equal(now.AddDate(0, 0, -1)) {
		t.Errorf("gestern: got %v", got)
	}
	if got := ParseReviewDate("ayer", now); !got.Equal(now.AddDate(0, 0, -1)) {
		t.Errorf("ayer: got %v", got)
	}
}

func TestParseReviewDate_Absolute(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := ParseReviewDate("March 12, 2024", now)
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 12 {
		t.Errorf("got %v", got)
	}
}

// Garbage, empty input, anything: the result is always a valid timestamp.
func TestParseReviewDate_NeverInvalid(t *testing.T) {
	now := time.Now()
	inputs := []string{"", "   ", "garbage text", "££%%@@", "yesterday tomorrow maybe"}
	for _, in := range inputs {
		got := ParseReviewDate(in, now)
		if got.IsZero() {
			t.Errorf("ParseReviewDate(%q) returned zero time", in)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"The staff was very friendly and the room was great", "en"},
		{"Le personnel était très agréable et la chambre était bien", "fr"},
		{"Das Zimmer war sehr sauber und das Personal sehr nett", "de"},
		{"La habitación estaba muy limpia y el personal muy amable", "es"},
		{"short", ""},
		{"12345 67890 !!!", ""},
	}
	for _, c := range cases {
		if got := DetectLanguage(c.in); got != c.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFallbackReviewID(t *testing.T) {
	now := time.Now()
	id := FallbackReviewID("Jane Doe", 5, "Wonderful experience, will come back", now)
	if id == "" {
		t.Fatal("fallback id must never be empty")
	}
	if len(id) > fallbackIDLength {
		t.Errorf("id too long: %d", len(id))
	}

	// Time salting means a later extraction yields a different id.
	other := FallbackReviewID("Jane Doe", 5, "Wonderful experience, will come back", now.Add(time.Second))
	if id == other {
		t.Error("expected time-salted ids to differ")
	}
}

func TestFallbackReviewID_EmptyInputs(t *testing.T) {
	if id := FallbackReviewID("", 0, "", time.Now()); id == "" {
		t.Fatal("fallback id must never be empty")
	}
}
