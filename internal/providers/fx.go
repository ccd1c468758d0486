package providers

import (
	"github.com/glucoguard/glucoguard/internal/providers/email"
	"github.com/glucoguard/glucoguard/internal/providers/notify"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	notify.Module,
	email.Module,
)
