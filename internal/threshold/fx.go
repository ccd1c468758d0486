package threshold

import (
	"github.com/glucoguard/glucoguard/internal/threshold/repository"
	"github.com/glucoguard/glucoguard/internal/threshold/service"
	"go.uber.org/fx"
)

var Module = fx.Module("threshold",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
