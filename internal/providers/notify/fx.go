package notify

import (
	"github.com/glucoguard/glucoguard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.notify",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.Telegram.BotToken == "" {
		log.Warn("no telegram bot token configured, direct notifications disabled")
		return &NoOpProvider{}
	}
	return NewTelegram(TelegramConfig{
		BotToken: cfg.Telegram.BotToken,
		BaseURL:  cfg.Telegram.BaseURL,
	})
}
