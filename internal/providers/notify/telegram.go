package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type TelegramConfig struct {
	BotToken string
	BaseURL  string
}

// TelegramProvider sends messages through the Telegram bot API.
type TelegramProvider struct {
	cfg    TelegramConfig
	client *resty.Client
}

func NewTelegram(cfg TelegramConfig) *TelegramProvider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second)

	return &TelegramProvider{cfg: cfg, client: client}
}

func (p *TelegramProvider) Send(ctx context.Context, target string, text string) error {
	if target == "" {
		return errors.New("telegram chat id is required")
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": target,
			"text":    text,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", p.cfg.BotToken))
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram send: status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
