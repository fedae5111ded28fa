package intent

import (
	"context"
	"fmt"
	"log/slog"

	"InfluencerOps/internal/extract"
	"InfluencerOps/internal/ports"
)

// Intent enumerates the recognized purposes of an influencer message.
type Intent string

const (
	IntentMetricsProvided    Intent = "metrics_provided"
	IntentMetricsUnavailable Intent = "metrics_unavailable"
	IntentQuestion           Intent = "question"
	IntentConfirmation       Intent = "confirmation"
	IntentDelayNotification  Intent = "delay_notification"
	IntentPaymentInquiry     Intent = "payment_inquiry"
	IntentGeneralChat        Intent = "general_chat"
	IntentBriefResponse      Intent = "brief_response"
)

// ResponseType enumerates how the agency should answer.
type ResponseType string

const (
	RespondAcknowledgeMetrics ResponseType = "acknowledge_metrics"
	RespondRequestClarify     ResponseType = "request_clarification"
	RespondProvideSupport     ResponseType = "provide_support"
	RespondEscalateToHuman    ResponseType = "escalate_to_human"
	RespondSendReminder       ResponseType = "send_reminder"
)

// Classification is the model's read of one inbound message.
type Classification struct {
	Intent           Intent       `json:"message_intent"`
	Sentiment        string       `json:"sentiment"`
	ContainsMetrics  bool         `json:"contains_metrics"`
	RequiresResponse bool         `json:"requires_immediate_response"`
	ResponseType     ResponseType `json:"suggested_response_type"`
	KeyPoints        []string     `json:"key_points"`
	UrgencyLevel     string       `json:"urgency_level"`
	FollowUpNeeded   bool         `json:"follow_up_needed"`
}

// Reply is a generated answer plus routing metadata.
type Reply struct {
	Message          string `json:"response_message"`
	Type             string `json:"response_type"`
	FollowUpRequired bool   `json:"follow_up_required"`
	EscalationNeeded bool   `json:"escalation_needed"`
	InternalNotes    string `json:"internal_notes"`
}

const agencyToneGuidelines = `AGENCY TONE GUIDELINES:
- Professional but personable, like a well-run creative studio
- Warm, appreciative, and concise
- Use one emoji per message max to add tone, never more
- Never robotic, overly formal, or passive-aggressive`

const classifySystem = "You are an expert at analyzing influencer communications for a creative agency. Return only valid JSON."

const respondSystem = "You are a skilled account manager at a creative agency, expert at maintaining warm professional relationships with influencers."

// Classifier reads inbound chat messages and drafts agency-tone replies.
type Classifier struct {
	completer ports.Completer
	logger    *slog.Logger
}

// NewClassifier wires the message classifier.
func NewClassifier(completer ports.Completer, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{completer: completer, logger: logger}
}

// Classify determines the intent of one message. Any model or parse failure
// degrades to a safe general-chat classification rather than an error.
func (c *Classifier) Classify(ctx context.Context, text, username string) Classification {
	prompt := fmt.Sprintf(`Analyze this message from influencer @%s and classify the intent:

Message: %q

%s

Classify the message intent and suggest response approach. Return JSON:
{
    "message_intent": "metrics_provided|metrics_unavailable|question|confirmation|delay_notification|payment_inquiry|general_chat|brief_response",
    "sentiment": "positive|neutral|negative|frustrated",
    "contains_metrics": true/false,
    "requires_immediate_response": true/false,
    "suggested_response_type": "acknowledge_metrics|request_clarification|provide_support|escalate_to_human|send_reminder",
    "key_points": ["list of main points from message"],
    "urgency_level": "low|medium|high",
    "follow_up_needed": true/false
}

Examples:
- Metrics sharing: "metrics_provided" + "acknowledge_metrics"
- "I can't access my analytics": "metrics_unavailable" + "provide_support"
- Questions about brief: "question" + "provide_support"
- Payment concerns: "payment_inquiry" + "escalate_to_human"
- Running late: "delay_notification" + "provide_support"

Return only the JSON:`, username, text, agencyToneGuidelines)

	reply, err := c.completer.Complete(ctx, ports.CompletionRequest{
		System:      classifySystem,
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		c.logger.Error("classify message failed", "username", username, "error", err)
		return fallbackClassification()
	}

	var cls Classification
	if err := extract.DecodeReply(reply, &cls); err != nil {
		c.logger.Error("classification parse failed", "username", username, "error", err)
		return fallbackClassification()
	}
	if cls.Intent == "" {
		cls.Intent = IntentGeneralChat
	}
	if cls.ResponseType == "" {
		cls.ResponseType = RespondProvideSupport
	}

	c.logger.Info("message classified", "username", username, "intent", cls.Intent)
	return cls
}

// Respond drafts an agency-tone answer to the message given its
// classification. Failures degrade to a generic acknowledgment flagged for
// human review.
func (c *Classifier) Respond(ctx context.Context, text, username string, cls Classification) Reply {
	prompt := fmt.Sprintf(`Generate a response to this influencer message following our agency tone guidelines:

INFLUENCER: @%s
MESSAGE: %q
INTENT: %s
SENTIMENT: %s
SUGGESTED RESPONSE TYPE: %s

%s

Generate a response that:
1. Matches our tone (professional, warm, personable)
2. Addresses their specific message
3. Shows appreciation for their communication
4. Provides clear next steps if needed
5. Uses max one emoji to add warmth
6. Keeps it concise and skimmable

Return JSON:
{
    "response_message": "the actual response text",
    "response_type": "acknowledgment|support|clarification|escalation",
    "follow_up_required": true/false,
    "escalation_needed": true/false,
    "internal_notes": "notes for team about this interaction"
}

Return only the JSON:`, username, text, cls.Intent, cls.Sentiment, cls.ResponseType, agencyToneGuidelines)

	raw, err := c.completer.Complete(ctx, ports.CompletionRequest{
		System:      respondSystem,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		c.logger.Error("generate response failed", "username", username, "error", err)
		return fallbackReply(err)
	}

	var rep Reply
	if err := extract.DecodeReply(raw, &rep); err != nil {
		c.logger.Error("response parse failed", "username", username, "error", err)
		return fallbackReply(err)
	}
	if rep.Message == "" {
		return fallbackReply(fmt.Errorf("empty response message"))
	}
	return rep
}

func fallbackClassification() Classification {
	return Classification{
		Intent:       IntentGeneralChat,
		Sentiment:    "neutral",
		ResponseType: RespondProvideSupport,
		UrgencyLevel: "low",
	}
}

func fallbackReply(cause error) Reply {
	return Reply{
		Message:          "Thanks for your message! We'll get back to you shortly 😊",
		Type:             "acknowledgment",
		FollowUpRequired: true,
		EscalationNeeded: true,
		InternalNotes:    fmt.Sprintf("manual review needed: %v", cause),
	}
}
