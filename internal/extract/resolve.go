package extract

import (
	"context"
	"regexp"
	"strings"

	"InfluencerOps/internal/ports"
)

// handlePatterns cover common self-identification phrasing; first match wins.
var handlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my username is @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`(?i)username is @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`(?i)my handle is @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`(?i)handle is @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`(?i)ig: @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`(?i)instagram: @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`(?i)i'm @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`(?i)it's @([a-zA-Z0-9._]+)`),
	regexp.MustCompile(`@([a-zA-Z0-9._]+)`),
}

// Resolver derives a subject handle from message text: pattern matching
// first, then a cheap constrained model call as a fallback.
type Resolver struct {
	completer ports.Completer
}

// NewResolver wires the fallback completer; nil disables the model fallback.
func NewResolver(completer ports.Completer) *Resolver {
	return &Resolver{completer: completer}
}

// Resolve returns the subject handle found in text, or "unknown".
func (r *Resolver) Resolve(ctx context.Context, text string) string {
	for _, pattern := range handlePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}

	if r.completer == nil {
		return "unknown"
	}

	reply, err := r.completer.Complete(ctx, ports.CompletionRequest{
		System:      resolverSystemPrompt,
		Prompt:      "Extract username: " + text,
		Temperature: 0,
		MaxTokens:   20,
	})
	if err != nil {
		return "unknown"
	}

	handle := strings.TrimPrefix(strings.TrimSpace(reply), "@")
	if handle == "" {
		return "unknown"
	}
	return handle
}
