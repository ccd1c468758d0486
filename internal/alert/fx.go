package alert

import (
	"github.com/glucoguard/glucoguard/internal/alert/repository"
	"github.com/glucoguard/glucoguard/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
