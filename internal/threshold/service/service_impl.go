package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/glucoguard/glucoguard/internal/clock"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
	"github.com/glucoguard/glucoguard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  thresholddomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  thresholddomain.Repository
}

func New(p Params) thresholddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("threshold.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) GetOrCreate(ctx context.Context, patientID snowflake.ID) (*thresholddomain.Thresholds, error) {
	existing, err := s.repo.FindByPatient(ctx, s.db, patientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.clock.Now()
	thresholds := &thresholddomain.Thresholds{
		ID:          s.genID.Generate(),
		PatientID:   patientID,
		UrgentLow:   thresholddomain.DefaultUrgentLow,
		LowWarning:  thresholddomain.DefaultLowWarning,
		HighWarning: thresholddomain.DefaultHighWarning,
		UrgentHigh:  thresholddomain.DefaultUrgentHigh,
		IOBWarning:  thresholddomain.DefaultIOBWarning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, thresholds); err != nil {
		// Concurrent first access: the other writer won, read theirs.
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindByPatient(ctx, s.db, patientID)
		}
		return nil, err
	}

	return thresholds, nil
}

func (s *Service) Update(ctx context.Context, patientID snowflake.ID, req thresholddomain.UpdateRequest) (*thresholddomain.Thresholds, error) {
	thresholds, err := s.GetOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}

	thresholds.UrgentLow = req.UrgentLow
	thresholds.LowWarning = req.LowWarning
	thresholds.HighWarning = req.HighWarning
	thresholds.UrgentHigh = req.UrgentHigh
	thresholds.IOBWarning = req.IOBWarning
	thresholds.UpdatedAt = s.clock.Now()

	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, s.db, thresholds); err != nil {
		return nil, err
	}

	return thresholds, nil
}
