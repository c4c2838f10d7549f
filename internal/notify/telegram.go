// Package notify delivers rendered reports. Delivery is best-effort:
// callers log failures and move on, the next scheduled pass retries.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lmercier/dcawatch/pkg/config"
	"github.com/lmercier/dcawatch/pkg/httputil"
	"github.com/lmercier/dcawatch/pkg/logger"
)

// TelegramNotifier sends messages through the Telegram bot API.
// Implements contracts.Notifier.
type TelegramNotifier struct {
	httpClient *httputil.Client
	baseURL    string
	token      string
	chatID     string
	logger     *logger.Logger
}

// NewTelegramNotifier builds a notifier from config.
func NewTelegramNotifier(cfg *config.Config, log *logger.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		httpClient: httputil.New(log),
		baseURL:    strings.TrimRight(cfg.Telegram.BaseURL, "/"),
		token:      cfg.Telegram.Token,
		chatID:     cfg.Telegram.ChatID,
		logger:     log,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Send posts the text to the configured chat. Reports are monospace
// tables, so they go out inside a pre block.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)

	payload := sendMessageRequest{
		ChatID:    n.chatID,
		Text:      "<pre>" + text + "</pre>",
		ParseMode: "HTML",
	}

	resp, err := n.httpClient.PostJSON(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram send failed: status %d: %s", resp.StatusCode, string(body))
	}

	n.logger.WithField("chars", len(text)).Info("Report sent to Telegram")
	return nil
}

// LogNotifier writes the report to the log instead of an external
// channel. Used when Telegram is not configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Send logs the report body.
func (n *LogNotifier) Send(_ context.Context, text string) error {
	n.logger.Info("Report:\n" + text)
	return nil
}
