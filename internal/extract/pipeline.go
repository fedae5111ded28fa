package extract

import (
	"context"
	"log/slog"
	"time"

	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/ports"
)

// Request is the immutable input of one pipeline run.
type Request struct {
	Text      string
	SubjectID string
}

// Pipeline runs prefilter, prompted extraction, repair parsing,
// normalization, and scoring as one synchronous pass. It holds no state
// across runs beyond its collaborators.
type Pipeline struct {
	completer ports.Completer
	resolver  *Resolver
	logger    *slog.Logger
	now       func() time.Time
}

// NewPipeline constructs the extraction pipeline with explicit collaborators.
func NewPipeline(completer ports.Completer, resolver *Resolver, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		completer: completer,
		resolver:  resolver,
		logger:    logger,
		now:       time.Now,
	}
}

// Run produces a MetricsRecord for req. The returned record is always
// usable: transient and parse failures come back alongside the empty
// sentinel so callers can log them without surfacing an error to the
// end user.
func (p *Pipeline) Run(ctx context.Context, req Request) (domain.MetricsRecord, error) {
	subject := req.SubjectID
	if subject == "" {
		subject = "unknown"
	}

	if !ContainsSignal(req.Text) {
		p.debug("no metric signal, skipping extraction", "subject", subject)
		return domain.EmptyRecord(subject), nil
	}

	if subject == "unknown" && p.resolver != nil {
		if resolved := p.resolver.Resolve(ctx, req.Text); resolved != "unknown" {
			subject = resolved
			p.debug("resolved subject from text", "subject", subject)
		}
	}

	raw, err := p.completer.Complete(ctx, ports.CompletionRequest{
		System:      extractionSystemPrompt,
		Prompt:      buildMetricsPrompt(req.Text, subject),
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return domain.EmptyRecord(subject), domain.E(domain.KindTransient, "extract metrics", err)
	}

	candidate, err := ParseReply(raw)
	if err != nil {
		return domain.EmptyRecord(subject), domain.E(domain.KindParse, "parse extraction reply", err)
	}

	rec := Normalize(candidate, subject, p.now())
	rec = Score(rec, candidate)
	return rec, nil
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
