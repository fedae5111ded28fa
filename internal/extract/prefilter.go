package extract

import (
	"regexp"
	"strings"
)

var signalKeywords = []string{
	"likes", "comments", "followers", "views", "reach", "impressions",
	"engagement", "post", "instagram.com/p/", "analytics", "stats",
}

var signalPatterns = []*regexp.Regexp{
	// number + metric keyword, tolerating the common misspellings
	regexp.MustCompile(`\d+(?:\.\d+)?\s*[km]?\s*(?:likes|liks|comments|coments|followers|views)`),
	// thousands-grouped number like 1,250
	regexp.MustCompile(`\d{1,3}[,\s]\d{3}`),
}

// ContainsSignal reports whether text plausibly carries numeric social-media
// metrics. It is a cheap pre-check that lets the pipeline skip the model call
// entirely when a message clearly has nothing to extract.
func ContainsSignal(text string) bool {
	lowered := strings.ToLower(text)

	for _, kw := range signalKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}

	for _, pattern := range signalPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}

	return false
}
