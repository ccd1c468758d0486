package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	"github.com/glucoguard/glucoguard/internal/clock"
	escalationdomain "github.com/glucoguard/glucoguard/internal/escalation/domain"
	"github.com/glucoguard/glucoguard/internal/observability/metrics"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

const (
	JobEvaluateAlerts     = "evaluate_alerts"
	JobProcessEscalations = "process_escalations"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Patients      patientdomain.Repository
	AlertSvc      alertdomain.Service
	EscalationSvc escalationdomain.Service
	Metrics       *metrics.Metrics `optional:"true"`
	Config        Config           `optional:"true"`
}

// Scheduler sweeps every patient on a fixed interval, evaluating new
// alerts first so escalation sees them in the same pass.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	patients      patientdomain.Repository
	alertSvc      alertdomain.Service
	escalationSvc escalationdomain.Service
	metrics       *metrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.Patients == nil || p.AlertSvc == nil || p.EscalationSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		patients:      p.Patients,
		alertSvc:      p.AlertSvc,
		escalationSvc: p.EscalationSvc,
		metrics:       p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context, log *zap.Logger) error,
) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(
		zap.String("job", name),
		zap.String("run_id", uuid.NewString()),
	)
	s.metrics.IncJobRun(name)

	err := fn(ctx, log)
	s.metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	// A deadline is a soft timeout: the next tick picks up where this
	// sweep left off.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	s.metrics.IncJobError(name)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{JobEvaluateAlerts, func(ctx context.Context) error {
			return s.runJob(ctx, JobEvaluateAlerts, s.cfg.JobTimeout, s.EvaluateAlertsJob)
		}},
		{JobProcessEscalations, func(ctx context.Context) error {
			return s.runJob(ctx, JobProcessEscalations, s.cfg.JobTimeout, s.ProcessEscalationsJob)
		}},
	}

	for _, job := range jobs {
		if s.isJobEnabled(job.Name) {
			err = errors.Join(err, job.Run(parent))
		}
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// EvaluateAlertsJob runs the detection pipeline for every patient. One
// patient's failure never blocks the rest of the sweep.
func (s *Scheduler) EvaluateAlertsJob(ctx context.Context, log *zap.Logger) error {
	patients, err := s.patients.List(ctx, s.db, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	var errs error
	for i := range patients {
		if ctx.Err() != nil {
			return errors.Join(errs, ctx.Err())
		}
		created, err := s.alertSvc.Evaluate(ctx, patients[i].ID)
		if err != nil {
			log.Warn("evaluation failed",
				zap.Int64("patient_id", patients[i].ID.Int64()),
				zap.Error(err),
			)
			errs = errors.Join(errs, err)
			continue
		}
		if len(created) > 0 {
			log.Info("evaluation produced alerts",
				zap.Int64("patient_id", patients[i].ID.Int64()),
				zap.Int("count", len(created)),
			)
		}
	}
	return errs
}

// ProcessEscalationsJob sweeps unacknowledged critical alerts for every
// patient and fires the tiers that have come due.
func (s *Scheduler) ProcessEscalationsJob(ctx context.Context, log *zap.Logger) error {
	patients, err := s.patients.List(ctx, s.db, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	var errs error
	for i := range patients {
		if ctx.Err() != nil {
			return errors.Join(errs, ctx.Err())
		}
		outcomes, err := s.escalationSvc.ProcessEscalations(ctx, patients[i].ID)
		if err != nil {
			log.Warn("escalation processing failed",
				zap.Int64("patient_id", patients[i].ID.Int64()),
				zap.Error(err),
			)
			errs = errors.Join(errs, err)
			continue
		}
		for j := range outcomes {
			if outcomes[j].Escalated {
				log.Info("escalation processed",
					zap.Int64("alert_id", outcomes[j].AlertID.Int64()),
					zap.String("tier", string(outcomes[j].Tier)),
				)
			}
		}
	}
	return errs
}
