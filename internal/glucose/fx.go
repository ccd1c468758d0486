package glucose

import (
	"github.com/glucoguard/glucoguard/internal/glucose/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("glucose",
	fx.Provide(repository.Provide),
)
