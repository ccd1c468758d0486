package patient

import (
	"github.com/glucoguard/glucoguard/internal/patient/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("patient",
	fx.Provide(repository.Provide),
)
