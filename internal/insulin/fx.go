package insulin

import (
	"github.com/glucoguard/glucoguard/internal/insulin/repository"
	"github.com/glucoguard/glucoguard/internal/insulin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("insulin",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
