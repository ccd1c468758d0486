package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	"github.com/glucoguard/glucoguard/internal/clock"
	glucosedomain "github.com/glucoguard/glucoguard/internal/glucose/domain"
	insulindomain "github.com/glucoguard/glucoguard/internal/insulin/domain"
	"github.com/glucoguard/glucoguard/internal/observability/metrics"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
	"github.com/glucoguard/glucoguard/internal/providers/notify"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       alertdomain.Repository
	Readings   glucosedomain.Repository
	Patients   patientdomain.Repository
	Thresholds thresholddomain.Service
	Insulin    insulindomain.Service
	Notifier   notify.Provider
	Metrics    *metrics.Metrics `optional:"true"`
	Config     Config           `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       alertdomain.Repository
	readings   glucosedomain.Repository
	patients   patientdomain.Repository
	thresholds thresholddomain.Service
	insulin    insulindomain.Service
	notifier   notify.Provider
	metrics    *metrics.Metrics
	cfg        Config
}

func New(p Params) alertdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("alert.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		readings:   p.Readings,
		patients:   p.Patients,
		thresholds: p.Thresholds,
		insulin:    p.Insulin,
		notifier:   p.Notifier,
		metrics:    p.Metrics,
		cfg:        p.Config.withDefaults(),
	}
}

// Evaluate runs the detection pipeline for one patient: freshness gate,
// trajectory projection, threshold crossing, IoB check, severity
// classification, dedup, persist. Notification of the patient is
// best effort and never fails the evaluation.
func (s *Service) Evaluate(ctx context.Context, patientID snowflake.ID) ([]alertdomain.Alert, error) {
	patient, err := s.patients.FindByID(ctx, s.db, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, patientdomain.ErrNotFound
	}

	now := s.clock.Now()

	reading, err := s.readings.Latest(ctx, s.db, patientID)
	if err != nil {
		return nil, err
	}
	if reading == nil || reading.Age(now) > s.cfg.FreshnessWindow {
		s.log.Debug("skipping evaluation: no fresh reading",
			zap.Int64("patient_id", patientID.Int64()),
		)
		return nil, nil
	}

	thresholds, err := s.thresholds.GetOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}

	iob := s.projectIOB(ctx, patientID, patient.DIAHours)

	trajectory := Project(reading.Value, reading.TrendRate, s.cfg.Horizons)
	candidates := Detect(reading.Value, reading.TrendRate, trajectory, thresholds)

	if iob != nil && *iob >= thresholds.IOBWarning {
		candidates = append(candidates, alertdomain.Candidate{
			Type:         alertdomain.TypeIOBWarning,
			Severity:     alertdomain.SeverityWarning,
			CurrentValue: reading.Value,
			TrendRate:    reading.TrendRate,
			Source:       alertdomain.SourceIOB,
			Message:      fmt.Sprintf("High insulin on board: %.1f U (threshold %.1f U)", *iob, thresholds.IOBWarning),
		})
	}

	created := make([]alertdomain.Alert, 0, len(candidates))
	dedupCutoff := now.Add(-s.cfg.DedupWindow)

	for _, candidate := range candidates {
		existing, err := s.repo.FindRecentUnacknowledged(ctx, s.db, patientID, candidate.Type, dedupCutoff)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.log.Debug("suppressing duplicate alert",
				zap.Int64("patient_id", patientID.Int64()),
				zap.String("alert_type", string(candidate.Type)),
			)
			continue
		}

		alert := alertdomain.Alert{
			ID:                s.genID.Generate(),
			PatientID:         patientID,
			Type:              candidate.Type,
			Severity:          ClassifySeverity(candidate.Type, iob, thresholds.IOBWarning),
			CurrentValue:      candidate.CurrentValue,
			PredictedValue:    candidate.PredictedValue,
			PredictionMinutes: candidate.PredictionMinutes,
			IOBValue:          iob,
			TrendRate:         candidate.TrendRate,
			Source:            candidate.Source,
			Message:           candidate.Message,
			CreatedAt:         now,
			ExpiresAt:         now.Add(s.cfg.ExpiryWindow),
		}

		if err := s.repo.Insert(ctx, s.db, &alert); err != nil {
			return nil, err
		}

		s.log.Info("alert created",
			zap.Int64("alert_id", alert.ID.Int64()),
			zap.Int64("patient_id", patientID.Int64()),
			zap.String("alert_type", string(alert.Type)),
			zap.String("severity", string(alert.Severity)),
		)
		s.metrics.IncAlertCreated(string(alert.Severity))

		created = append(created, alert)
	}

	s.notifyPatient(ctx, patient, created)

	return created, nil
}

// projectIOB resolves the active insulin estimate. A failed or stale
// projection means "no IoB data" and must never read as zero.
func (s *Service) projectIOB(ctx context.Context, patientID snowflake.ID, diaHours float64) *float64 {
	projection, err := s.insulin.Project(ctx, patientID, diaHours)
	if err != nil {
		s.log.Warn("iob projection failed, treating as unavailable",
			zap.Int64("patient_id", patientID.Int64()),
			zap.Error(err),
		)
		return nil
	}
	if projection.Stale {
		return nil
	}
	return &projection.IOB
}

func (s *Service) notifyPatient(ctx context.Context, patient *patientdomain.Patient, alerts []alertdomain.Alert) {
	if patient.TelegramChatID == "" {
		return
	}
	for i := range alerts {
		if err := s.notifier.Send(ctx, patient.TelegramChatID, alerts[i].Message); err != nil {
			s.log.Warn("patient notification failed",
				zap.Int64("alert_id", alerts[i].ID.Int64()),
				zap.Error(err),
			)
			s.metrics.IncNotifyFailure()
		}
	}
}

func (s *Service) Acknowledge(ctx context.Context, patientID, alertID snowflake.ID) (*alertdomain.Alert, error) {
	alert, err := s.repo.FindByID(ctx, s.db, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil || alert.PatientID != patientID {
		return nil, alertdomain.ErrNotFound
	}
	if alert.Acknowledged {
		return nil, alertdomain.ErrAlreadyAcknowledged
	}

	now := s.clock.Now()
	if err := s.repo.Acknowledge(ctx, s.db, patientID, alertID, now); err != nil {
		return nil, err
	}

	alert.Acknowledged = true
	alert.AcknowledgedAt = &now

	s.log.Info("alert acknowledged",
		zap.Int64("alert_id", alertID.Int64()),
		zap.Int64("patient_id", patientID.Int64()),
	)

	return alert, nil
}

func (s *Service) ListActive(ctx context.Context, patientID snowflake.ID) ([]alertdomain.Alert, error) {
	return s.repo.ListActive(ctx, s.db, patientID, s.clock.Now())
}
