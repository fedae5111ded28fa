package bot

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/extract"
	"InfluencerOps/internal/intent"
	"InfluencerOps/internal/ports"
)

// Update is an inbound Telegram webhook payload.
type Update struct {
	Message *Message `json:"message"`
}

// Message is the piece of an update the bot acts on.
type Message struct {
	Chat  Chat   `json:"chat"`
	From  User   `json:"from"`
	Text  string `json:"text"`
	Photo []any  `json:"photo"`
}

// Chat identifies where to send replies.
type Chat struct {
	ID int64 `json:"id"`
}

// User is the sender of a message.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// MetricsExtractor runs the metrics extraction pipeline on free-form text.
type MetricsExtractor interface {
	Run(ctx context.Context, req extract.Request) (domain.MetricsRecord, error)
}

// Conversationalist classifies inbound messages and drafts replies.
type Conversationalist interface {
	Classify(ctx context.Context, text, username string) intent.Classification
	Respond(ctx context.Context, text, username string, cls intent.Classification) intent.Reply
}

var (
	handleExpr      = regexp.MustCompile(`@(\w+)`)
	requestKeywords = []string{"request metrics", "get data", "ask for metrics"}
)

// Bot routes Telegram updates: admin commands, metrics requests, and
// free-form influencer replies.
type Bot struct {
	messenger  ports.Messenger
	extractor  MetricsExtractor
	classifier Conversationalist
	warehouse  ports.MetricsWarehouse
	logger     *slog.Logger
	now        func() time.Time
}

// New wires the bot.
func New(messenger ports.Messenger, extractor MetricsExtractor, classifier Conversationalist,
	warehouse ports.MetricsWarehouse, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		messenger:  messenger,
		extractor:  extractor,
		classifier: classifier,
		warehouse:  warehouse,
		logger:     logger,
		now:        time.Now,
	}
}

// HandleUpdate processes one webhook update. Delivery failures are logged
// and never returned; the webhook always acknowledges.
func (b *Bot) HandleUpdate(ctx context.Context, upd Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	b.logger.Info("update received", "username", msg.From.Username, "chat_id", chatID, "has_text", text != "")

	if text == "" {
		if len(msg.Photo) > 0 {
			b.send(ctx, chatID, screenshotMessage)
		} else {
			b.send(ctx, chatID, fallbackGreeting)
		}
		return
	}

	lowered := strings.ToLower(text)
	switch {
	case lowered == "/start":
		b.send(ctx, chatID, welcomeMessage(msg.From.FirstName))
	case lowered == "/help":
		b.send(ctx, chatID, helpMessage)
	case lowered == "/summary":
		b.handleSummary(ctx, chatID)
	case strings.HasPrefix(lowered, "/recent"):
		b.handleRecent(ctx, chatID, text)
	case containsAny(lowered, requestKeywords):
		b.handleMetricsRequest(ctx, chatID, text)
	default:
		b.handleInfluencerMessage(ctx, chatID, msg.From.Username, text)
	}
}

func (b *Bot) handleSummary(ctx context.Context, chatID int64) {
	sum, err := b.warehouse.Summary(ctx)
	if err != nil {
		b.logger.Error("summary lookup failed", "error", err)
		b.send(ctx, chatID, "We're having trouble retrieving the summary — looking into it! 😊")
		return
	}
	if sum.TotalRecords == 0 {
		b.send(ctx, chatID, emptySummaryMessage)
		return
	}
	b.send(ctx, chatID, summaryMessage(sum))
}

func (b *Bot) handleRecent(ctx context.Context, chatID int64, text string) {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.send(ctx, chatID, "Please specify an influencer:\n/recent @username")
		return
	}
	handle := strings.TrimPrefix(strings.TrimSpace(parts[1]), "@")

	rows, err := b.warehouse.RecentMetrics(ctx, handle, 30)
	if err != nil {
		b.logger.Error("recent metrics lookup failed", "handle", handle, "error", err)
		b.send(ctx, chatID, "Having trouble pulling that data — we'll check what's up! 😊")
		return
	}
	b.send(ctx, chatID, recentMessage(handle, rows))
}

func (b *Bot) handleMetricsRequest(ctx context.Context, chatID int64, text string) {
	m := handleExpr.FindStringSubmatch(text)
	if m == nil {
		b.send(ctx, chatID, missingHandleMessage)
		return
	}
	handle := m[1]

	b.send(ctx, chatID, metricsRequestMessage)
	b.logger.Info("metrics request sent", "handle", handle)
	b.send(ctx, chatID, requestConfirmation(handle))
}

func (b *Bot) handleInfluencerMessage(ctx context.Context, chatID int64, username, text string) {
	if username == "" {
		username = "unknown"
	}

	cls := b.classifier.Classify(ctx, text, username)
	reply := b.classifier.Respond(ctx, text, username, cls)
	b.send(ctx, chatID, reply.Message)

	if reply.EscalationNeeded {
		b.logger.Warn("escalation needed", "username", username, "notes", reply.InternalNotes)
	}

	rec, err := b.extractor.Run(ctx, extract.Request{Text: text, SubjectID: username})
	if err != nil {
		b.logger.Error("metrics extraction failed", "username", username, "error", err)
		if domain.KindOf(err) != domain.KindParse {
			b.send(ctx, chatID, technicalIssueMessage)
			return
		}
		// A parse failure still yields a usable sentinel record.
	}
	if !rec.HasMetrics {
		b.logIntentFollowUp(username, cls, reply)
		return
	}

	b.send(ctx, chatID, processingMessage)

	if err := b.warehouse.InsertMetrics(ctx, rec, b.now()); err != nil {
		b.logger.Error("store metrics failed", "username", username, "error", err)
		b.send(ctx, chatID, storageIssueMessage)
		return
	}
	b.send(ctx, chatID, successMessage(rec))
}

// logIntentFollowUp records intents that need operator attention after the
// reply has gone out.
func (b *Bot) logIntentFollowUp(username string, cls intent.Classification, reply intent.Reply) {
	switch cls.Intent {
	case intent.IntentQuestion:
		if reply.FollowUpRequired {
			b.logger.Info("follow-up required", "username", username)
		}
	case intent.IntentDelayNotification:
		b.logger.Info("delay notification", "username", username)
	case intent.IntentPaymentInquiry:
		b.logger.Info("payment inquiry escalated", "username", username)
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.messenger.Send(ctx, chatID, text); err != nil {
		b.logger.Error("send message failed", "chat_id", chatID, "error", err)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
