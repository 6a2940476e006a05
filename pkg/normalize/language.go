package normalize

import "regexp"

const (
	langMinScore  = 2
	langMinLength = 10
)

// Function-word profiles per language. Coarse on purpose: two hits on a
// reasonably long text is enough to tag a review, anything less stays untagged.
var langProfiles = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"en", regexp.MustCompile(`(?i)\b(the|and|was|were|very|with|great|good|staff|room|stay|would|recommend)\b`)},
	{"fr", regexp.MustCompile(`(?i)\b(le|la|les|est|très|avec|nous|pour|était|bien|séjour|chambre|personnel)\b`)},
	{"de", regexp.MustCompile(`(?i)\b(der|die|das|und|ist|sehr|mit|wir|für|war|gut|zimmer|personal)\b`)},
	{"es", regexp.MustCompile(`(?i)\b(el|la|los|es|muy|con|para|estaba|bien|bueno|habitación|personal|estancia)\b`)},
	{"it", regexp.MustCompile(`(?i)\b(il|la|gli|è|molto|con|per|era|bene|buono|camera|personale|soggiorno)\b`)},
	{"nl", regexp.MustCompile(`(?i)\b(de|het|en|is|zeer|met|wij|voor|was|goed|kamer|personeel|verblijf)\b`)},
	{"pt", regexp.MustCompile(`(?i)\b(o|a|os|é|muito|com|para|estava|bem|bom|quarto|equipe|estadia)\b`)},
}

// DetectLanguage scores text against per-language function-word regexes and
// returns the best ISO-639-1 tag, or "" when nothing scores high enough.
func DetectLanguage(text string) string {
	if len(text) < langMinLength {
		return ""
	}

	best := ""
	bestScore := 0
	for _, p := range langProfiles {
		score := len(p.re.FindAllString(text, -1))
		if score > bestScore {
			best = p.tag
			bestScore = score
		}
	}

	if bestScore < langMinScore {
		return ""
	}
	return best
}
