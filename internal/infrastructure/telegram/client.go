package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"InfluencerOps/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Client sends messages to Telegram chats via the bot API.
type Client struct {
	botToken string
	apiBase  string
	client   *http.Client
}

var _ ports.Messenger = (*Client)(nil)

// NewClient registers the bot token.
func NewClient(botToken string) *Client {
	return &Client{
		botToken: botToken,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts an HTML-formatted message to the chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if c.botToken == "" || c.client == nil {
		return fmt.Errorf("telegram client misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.botToken)
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
