// Package telegram sends lead notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadgate/internal/lead/models"
	"leadgate/internal/lead/notify"
	"leadgate/pkg/platform/sentinel"
)

const (
	// DefaultAPIBase is the public Bot API endpoint.
	DefaultAPIBase = "https://api.telegram.org"

	maxErrorBody = 64 << 10
)

// Config holds the bot credentials and message settings.
type Config struct {
	BotToken string
	ChatID   string
	APIBase  string
	Title    string
	Timeout  time.Duration
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Sink posts a Markdown message per lead to one chat.
type Sink struct {
	cfg        Config
	httpClient *http.Client
}

var _ notify.Sink = (*Sink)(nil)

// New builds a Telegram sink. Missing credentials are reported on Notify as
// sentinel.ErrNotConfigured so the caller can log and skip.
func New(cfg Config, httpClient *http.Client) *Sink {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = notify.DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Sink{cfg: cfg, httpClient: httpClient}
}

func (s *Sink) Name() string {
	return "telegram"
}

// Notify sends one sendMessage call. Non-2xx answers become errors carrying
// the Bot API description; there are no retries.
func (s *Sink) Notify(ctx context.Context, rec *models.Record) error {
	if strings.TrimSpace(s.cfg.BotToken) == "" || strings.TrimSpace(s.cfg.ChatID) == "" {
		return fmt.Errorf("telegram credentials: %w", sentinel.ErrNotConfigured)
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    s.cfg.ChatID,
		Text:      notify.FormatMessage(s.cfg.Title, rec),
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(s.cfg.APIBase, "/") + "/bot" + s.cfg.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs.
		return fmt.Errorf("send telegram message: %w", redact(err, s.cfg.BotToken))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr struct {
			Description string `json:"description"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Description != "" {
			return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, apiErr.Description)
		}
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return &redactedError{
		msg:   strings.ReplaceAll(err.Error(), token, "<redacted>"),
		cause: err,
	}
}
