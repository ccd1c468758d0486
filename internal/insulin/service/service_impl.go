package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glucoguard/glucoguard/internal/clock"
	insulindomain "github.com/glucoguard/glucoguard/internal/insulin/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  insulindomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  insulindomain.Repository
}

func New(p Params) insulindomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("insulin.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Project sums the remaining activity of every dose delivered within the
// DIA window using linear decay: remaining = units * (1 - age/DIA).
// No doses inside the window means the projection is stale.
func (s *Service) Project(ctx context.Context, patientID snowflake.ID, diaHours float64) (*insulindomain.Projection, error) {
	if diaHours <= 0 {
		diaHours = 4.0
	}

	now := s.clock.Now()
	window := time.Duration(diaHours * float64(time.Hour))

	doses, err := s.repo.ListSince(ctx, s.db, patientID, now.Add(-window))
	if err != nil {
		return nil, err
	}

	if len(doses) == 0 {
		return &insulindomain.Projection{Stale: true, AsOf: now}, nil
	}

	var iob float64
	for i := range doses {
		age := now.Sub(doses[i].DeliveredAt)
		if age < 0 || age >= window {
			continue
		}
		remaining := doses[i].Units * (1 - age.Hours()/diaHours)
		if remaining > 0 {
			iob += remaining
		}
	}

	return &insulindomain.Projection{
		IOB:     iob,
		Stale:   false,
		AsOf:    now,
		DoseCnt: len(doses),
	}, nil
}
