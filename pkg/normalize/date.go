package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"time"

	"github.com/araddon/dateparse"
)

type relUnit int

const (
	unitSecond relUnit = iota
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

type relPattern struct {
	re   *regexp.Regexp
	unit relUnit
}

// Relative-time phrasings across the locales the providers render their
// management consoles in. Each pattern captures the amount as group 1; "a"/"an"
// style articles are handled separately.
var relPatterns = []relPattern{
	// English: "3 days ago"
	{regexp.MustCompile(`(?i)(\d+)\s+seconds?\s+ago`), unitSecond},
	{regexp.MustCompile(`(?i)(\d+)\s+minutes?\s+ago`), unitMinute},
	{regexp.MustCompile(`(?i)(\d+)\s+hours?\s+ago`), unitHour},
	{regexp.MustCompile(`(?i)(\d+)\s+days?\s+ago`), unitDay},
	{regexp.MustCompile(`(?i)(\d+)\s+weeks?\s+ago`), unitWeek},
	{regexp.MustCompile(`(?i)(\d+)\s+months?\s+ago`), unitMonth},
	{regexp.MustCompile(`(?i)(\d+)\s+years?\s+ago`), unitYear},
	// French: "il y a 3 jours"
	{regexp.MustCompile(`(?i)il y a\s+(\d+)\s+seconde`), unitSecond},
	{regexp.MustCompile(`(?i)il y a\s+(\d+)\s+minute`), unitMinute},
	{regexp.MustCompile(`(?i)il y a\s+(\d+)\s+heure`), unitHour},
	{regexp.MustCompile(`(?i)il y a\s+(\d+)\s+jour`), unitDay},
	{regexp.MustCompile(`(?i)il y a\s+(\d+)\s+semaine`), unitWeek},
	{regexp.MustCompile(`(?i)il y a\s+(\d+)\s+mois`), unitMonth},
	{regexp.MustCompile(`(?i)il y a\s+(\d+)\s+an`), unitYear},
	// German: "vor 3 Tagen"
	{regexp.MustCompile(`(?i)vor\s+(\d+)\s+sekunde`), unitSecond},
	{regexp.MustCompile(`(?i)vor\s+(\d+)\s+minute`), unitMinute},
	{regexp.MustCompile(`(?i)vor\s+(\d+)\s+stunde`), unitHour},
	{regexp.MustCompile(`(?i)vor\s+(\d+)\s+tag`), unitDay},
	{regexp.MustCompile(`(?i)vor\s+(\d+)\s+woche`), unitWeek},
	{regexp.MustCompile(`(?i)vor\s+(\d+)\s+monat`), unitMonth},
	{regexp.MustCompile(`(?i)vor\s+(\d+)\s+jahr`), unitYear},
	// Spanish: "hace 3 días"
	{regexp.MustCompile(`(?i)hace\s+(\d+)\s+segundo`), unitSecond},
	{regexp.MustCompile(`(?i)hace\s+(\d+)\s+minuto`), unitMinute},
	{regexp.MustCompile(`(?i)hace\s+(\d+)\s+hora`), unitHour},
	{regexp.MustCompile(`(?i)hace\s+(\d+)\s+d[ií]a`), unitDay},
	{regexp.MustCompile(`(?i)hace\s+(\d+)\s+semana`), unitWeek},
	{regexp.MustCompile(`(?i)hace\s+(\d+)\s+mes`), unitMonth},
	{regexp.MustCompile(`(?i)hace\s+(\d+)\s+año`), unitYear},
	// Italian: "3 giorni fa"
	{regexp.MustCompile(`(?i)(\d+)\s+second[oi]\s+fa`), unitSecond},
	{regexp.MustCompile(`(?i)(\d+)\s+minut[oi]\s+fa`), unitMinute},
	{regexp.MustCompile(`(?i)(\d+)\s+or[ae]\s+fa`), unitHour},
	{regexp.MustCompile(`(?i)(\d+)\s+giorn[oi]\s+fa`), unitDay},
	{regexp.MustCompile(`(?i)(\d+)\s+settiman[ae]\s+fa`), unitWeek},
	{regexp.MustCompile(`(?i)(\d+)\s+mes[ie]\s+fa`), unitMonth},
	{regexp.MustCompile(`(?i)(\d+)\s+ann[oi]\s+fa`), unitYear},
	// Dutch: "3 dagen geleden"
	{regexp.MustCompile(`(?i)(\d+)\s+seconden?\s+geleden`), unitSecond},
	{regexp.MustCompile(`(?i)(\d+)\s+minuten?\s+geleden`), unitMinute},
	{regexp.MustCompile(`(?i)(\d+)\s+uur\s+geleden`), unitHour},
	{regexp.MustCompile(`(?i)(\d+)\s+dag(?:en)?\s+geleden`), unitDay},
	{regexp.MustCompile(`(?i)(\d+)\s+we(?:ek|ken)\s+geleden`), unitWeek},
	{regexp.MustCompile(`(?i)(\d+)\s+maand(?:en)?\s+geleden`), unitMonth},
	{regexp.MustCompile(`(?i)(\d+)\s+ja(?:ar|ren)\s+geleden`), unitYear},
	// Portuguese: "há 3 dias"
	{regexp.MustCompile(`(?i)h[áa]\s+(\d+)\s+segundo`), unitSecond},
	{regexp.MustCompile(`(?i)h[áa]\s+(\d+)\s+minuto`), unitMinute},
	{regexp.MustCompile(`(?i)h[áa]\s+(\d+)\s+hora`), unitHour},
	{regexp.MustCompile(`(?i)h[áa]\s+(\d+)\s+dia`), unitDay},
	{regexp.MustCompile(`(?i)h[áa]\s+(\d+)\s+semana`), unitWeek},
	{regexp.MustCompile(`(?i)h[áa]\s+(\d+)\s+m[eê]s`), unitMonth},
	{regexp.MustCompile(`(?i)h[áa]\s+(\d+)\s+ano`), unitYear},
}

// Article forms like "a month ago", "il y a une heure", "vor einem Jahr".
var relOnePatterns = []relPattern{
	{regexp.MustCompile(`(?i)an?\s+(?:second|moment)\s+ago`), unitSecond},
	{regexp.MustCompile(`(?i)a\s+minute\s+ago`), unitMinute},
	{regexp.MustCompile(`(?i)an\s+hour\s+ago`), unitHour},
	{regexp.MustCompile(`(?i)a\s+day\s+ago`), unitDay},
	{regexp.MustCompile(`(?i)a\s+week\s+ago`), unitWeek},
	{regexp.MustCompile(`(?i)a\s+month\s+ago`), unitMonth},
	{regexp.MustCompile(`(?i)a\s+year\s+ago`), unitYear},
	{regexp.MustCompile(`(?i)il y a\s+une?\s+minute`), unitMinute},
	{regexp.MustCompile(`(?i)il y a\s+une?\s+heure`), unitHour},
	{regexp.MustCompile(`(?i)il y a\s+un\s+jour`), unitDay},
	{regexp.MustCompile(`(?i)il y a\s+une\s+semaine`), unitWeek},
	{regexp.MustCompile(`(?i)il y a\s+un\s+mois`), unitMonth},
	{regexp.MustCompile(`(?i)il y a\s+un\s+an`), unitYear},
	{regexp.MustCompile(`(?i)vor\s+einer?\s+minute`), unitMinute},
	{regexp.MustCompile(`(?i)vor\s+einer?\s+stunde`), unitHour},
	{regexp.MustCompile(`(?i)vor\s+einem\s+tag`), unitDay},
	{regexp.MustCompile(`(?i)vor\s+einer\s+woche`), unitWeek},
	{regexp.MustCompile(`(?i)vor\s+einem\s+monat`), unitMonth},
	{regexp.MustCompile(`(?i)vor\s+einem\s+jahr`), unitYear},
	{regexp.MustCompile(`(?i)hace\s+una?\s+hora`), unitHour},
	{regexp.MustCompile(`(?i)hace\s+un\s+d[ií]a`), unitDay},
	{regexp.MustCompile(`(?i)hace\s+una\s+semana`), unitWeek},
	{regexp.MustCompile(`(?i)hace\s+un\s+mes`), unitMonth},
	{regexp.MustCompile(`(?i)hace\s+un\s+año`), unitYear},
	{regexp.MustCompile(`(?i)un\s+mese\s+fa`), unitMonth},
	{regexp.MustCompile(`(?i)un\s+anno\s+fa`), unitYear},
}

var todayTokens = []string{
	"today", "aujourd'hui", "heute", "hoy", "oggi", "vandaag", "hoje",
}

var yesterdayTokens = []string{
	"yesterday", "hier", "gestern", "ayer", "ieri", "gisteren", "ontem",
}

// ParseReviewDate turns free-text provider dates into an absolute timestamp.
// It tries relative-time phrasings first, then today/yesterday tokens, then
// generic absolute parsing, and finally falls back to now. It never fails.
func ParseReviewDate(raw string, now time.Time) time.Time {
	text := strings.TrimSpace(raw)
	if text == "" {
		return now
	}

	for _, p := range relPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return subtract(now, p.unit, n)
	}

	for _, p := range relOnePatterns {
		if p.re.MatchString(text) {
			return subtract(now, p.unit, 1)
		}
	}

	lower := strings.ToLower(text)
	for _, tok := range todayTokens {
		if strings.Contains(lower, tok) {
			return now
		}
	}
	for _, tok := range yesterdayTokens {
		if strings.Contains(lower, tok) {
			return now.AddDate(0, 0, -1)
		}
	}

	if ts, err := dateparse.ParseAny(text); err == nil {
		return ts
	}

	return now
}

// subtract applies calendar-aware arithmetic: months and years go through
// AddDate rather than a fixed day count.
func subtract(now time.Time, unit relUnit, n int) time.Time {
	switch unit {
	case unitSecond:
		return now.Add(-time.Duration(n) * time.Second)
	case unitMinute:
		return now.Add(-time.Duration(n) * time.Minute)
	case unitHour:
		return now.Add(-time.Duration(n) * time.Hour)
	case unitDay:
		return now.AddDate(0, 0, -n)
	case unitWeek:
		return now.AddDate(0, 0, -7*n)
	case unitMonth:
		return now.AddDate(0, -n, 0)
	case unitYear:
		return now.AddDate(-n, 0, 0)
	}
	return now
}
