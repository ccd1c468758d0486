package contact

import (
	"github.com/glucoguard/glucoguard/internal/contact/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("contact",
	fx.Provide(repository.Provide),
)
