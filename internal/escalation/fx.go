package escalation

import (
	"github.com/glucoguard/glucoguard/internal/escalation/repository"
	"github.com/glucoguard/glucoguard/internal/escalation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("escalation",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
