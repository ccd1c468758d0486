package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	"github.com/glucoguard/glucoguard/internal/clock"
	contactdomain "github.com/glucoguard/glucoguard/internal/contact/domain"
	escalationdomain "github.com/glucoguard/glucoguard/internal/escalation/domain"
	"github.com/glucoguard/glucoguard/internal/observability/metrics"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
	"github.com/glucoguard/glucoguard/internal/providers/email"
	"github.com/glucoguard/glucoguard/internal/providers/notify"
	"github.com/glucoguard/glucoguard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     escalationdomain.Repository
	Alerts   alertdomain.Repository
	Patients patientdomain.Repository
	Contacts contactdomain.Repository
	Notifier notify.Provider
	Mailer   email.Provider
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     escalationdomain.Repository
	alerts   alertdomain.Repository
	patients patientdomain.Repository
	contacts contactdomain.Repository
	notifier notify.Provider
	mailer   email.Provider
	metrics  *metrics.Metrics
}

func New(p Params) escalationdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("escalation.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		alerts:   p.Alerts,
		patients: p.Patients,
		contacts: p.Contacts,
		notifier: p.Notifier,
		mailer:   p.Mailer,
		metrics:  p.Metrics,
	}
}

// ProcessEscalations sweeps the patient's unacknowledged critical alerts
// and fires each tier that has come due. The unique (alert_id, tier)
// constraint makes the sweep safe to run concurrently: a lost insert
// race is reported as "already escalated", never as an error.
func (s *Service) ProcessEscalations(ctx context.Context, patientID snowflake.ID) ([]escalationdomain.Outcome, error) {
	patient, err := s.patients.FindByID(ctx, s.db, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, patientdomain.ErrNotFound
	}

	cfg, err := s.GetOrCreateConfig(ctx, patientID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	alerts, err := s.alerts.ListUnacknowledgedCritical(ctx, s.db, patientID, now)
	if err != nil {
		return nil, err
	}

	outcomes := make([]escalationdomain.Outcome, 0, len(alerts))
	for i := range alerts {
		outcome, err := s.processAlert(ctx, patient, cfg, &alerts[i], now)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (s *Service) processAlert(ctx context.Context, patient *patientdomain.Patient, cfg *escalationdomain.Config, alert *alertdomain.Alert, now time.Time) (escalationdomain.Outcome, error) {
	events, err := s.repo.ListEventsByAlert(ctx, s.db, alert.ID)
	if err != nil {
		return escalationdomain.Outcome{}, err
	}

	fired := make(map[escalationdomain.Tier]bool, len(events))
	for i := range events {
		fired[events[i].Tier] = true
	}

	decision := Decide(alert, cfg, fired, now)
	if !decision.Due {
		return escalationdomain.Outcome{
			AlertID: alert.ID,
			Tier:    decision.Tier,
			Reason:  decision.Reason,
		}, nil
	}

	message := tierMessage(decision.Tier, patient, alert)
	status, notified := s.dispatch(ctx, decision.Tier, patient, message)

	event := escalationdomain.Event{
		ID:               s.genID.Generate(),
		AlertID:          alert.ID,
		Tier:             decision.Tier,
		TriggeredAt:      now,
		MessageContent:   message,
		Status:           status,
		ContactsNotified: notified,
		CreatedAt:        now,
	}

	if err := s.repo.InsertEvent(ctx, s.db, &event); err != nil {
		// Another processor fired this tier first. Its event stands.
		if db.IsDuplicateKeyErr(err) {
			return escalationdomain.Outcome{
				AlertID: alert.ID,
				Tier:    decision.Tier,
				Reason:  "already escalated",
			}, nil
		}
		return escalationdomain.Outcome{}, err
	}

	s.log.Info("escalation fired",
		zap.Int64("alert_id", alert.ID.Int64()),
		zap.String("tier", string(decision.Tier)),
		zap.String("status", string(status)),
	)
	s.metrics.IncEscalationFired(string(decision.Tier))

	return escalationdomain.Outcome{
		AlertID:   alert.ID,
		Tier:      decision.Tier,
		Escalated: true,
		Event:     &event,
	}, nil
}

// dispatch delivers the tier message and returns the resulting status
// plus a JSON list of the contact ids that were reached. SENT means at
// least one delivery succeeded; partial failures are logged, not
// surfaced. The reminder goes to the patient, not to an emergency
// contact, so its contact set is always empty.
func (s *Service) dispatch(ctx context.Context, tier escalationdomain.Tier, patient *patientdomain.Patient, message string) (escalationdomain.NotificationStatus, string) {
	var reached []string

	if tier == escalationdomain.TierReminder {
		status := escalationdomain.StatusFailed
		if patient.TelegramChatID != "" {
			if err := s.notifier.Send(ctx, patient.TelegramChatID, message); err != nil {
				s.log.Warn("reminder delivery failed",
					zap.Int64("patient_id", patient.ID.Int64()),
					zap.Error(err),
				)
				s.metrics.IncNotifyFailure()
			} else {
				status = escalationdomain.StatusSent
			}
		}
		return status, marshalNotified(nil)
	}

	var priority *contactdomain.Priority
	if tier == escalationdomain.TierPrimaryContact {
		primary := contactdomain.PriorityPrimary
		priority = &primary
	}

	contacts, err := s.contacts.ListForPatient(ctx, s.db, patient.ID, priority)
	if err != nil {
		s.log.Warn("contact lookup failed",
			zap.Int64("patient_id", patient.ID.Int64()),
			zap.Error(err),
		)
		return escalationdomain.StatusFailed, marshalNotified(nil)
	}

	for i := range contacts {
		if s.notifyContact(ctx, &contacts[i], message) {
			reached = append(reached, contacts[i].ID.String())
		}
	}

	return statusFor(reached), marshalNotified(reached)
}

// notifyContact tries telegram first, then email. Either success counts.
func (s *Service) notifyContact(ctx context.Context, contact *contactdomain.Contact, message string) bool {
	if contact.TelegramChatID != nil && *contact.TelegramChatID != "" {
		err := s.notifier.Send(ctx, *contact.TelegramChatID, message)
		if err == nil {
			return true
		}
		s.log.Warn("contact telegram delivery failed",
			zap.Int64("contact_id", contact.ID.Int64()),
			zap.Error(err),
		)
		s.metrics.IncNotifyFailure()
	}

	if contact.Email != nil && *contact.Email != "" {
		err := s.mailer.Send(ctx, []string{*contact.Email}, "Glucose alert escalation", message)
		if err == nil {
			return true
		}
		s.log.Warn("contact email delivery failed",
			zap.Int64("contact_id", contact.ID.Int64()),
			zap.Error(err),
		)
		s.metrics.IncNotifyFailure()
	}

	return false
}

func statusFor(reached []string) escalationdomain.NotificationStatus {
	if len(reached) > 0 {
		return escalationdomain.StatusSent
	}
	return escalationdomain.StatusFailed
}

func marshalNotified(reached []string) string {
	if len(reached) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(reached)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func (s *Service) Timeline(ctx context.Context, patientID, alertID snowflake.ID) ([]escalationdomain.Event, error) {
	alert, err := s.alerts.FindByID(ctx, s.db, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil || alert.PatientID != patientID {
		return nil, alertdomain.ErrNotFound
	}
	return s.repo.ListEventsByAlert(ctx, s.db, alertID)
}

func (s *Service) GetOrCreateConfig(ctx context.Context, patientID snowflake.ID) (*escalationdomain.Config, error) {
	existing, err := s.repo.FindConfigByPatient(ctx, s.db, patientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.clock.Now()
	cfg := &escalationdomain.Config{
		ID:                         s.genID.Generate(),
		PatientID:                  patientID,
		ReminderDelayMinutes:       escalationdomain.DefaultReminderDelayMinutes,
		PrimaryContactDelayMinutes: escalationdomain.DefaultPrimaryContactDelayMinutes,
		AllContactsDelayMinutes:    escalationdomain.DefaultAllContactsDelayMinutes,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if err := s.repo.InsertConfig(ctx, s.db, cfg); err != nil {
		// Concurrent first access: the other writer won, read theirs.
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindConfigByPatient(ctx, s.db, patientID)
		}
		return nil, err
	}

	return cfg, nil
}

func (s *Service) UpdateConfig(ctx context.Context, patientID snowflake.ID, req escalationdomain.ConfigUpdateRequest) (*escalationdomain.Config, error) {
	cfg, err := s.GetOrCreateConfig(ctx, patientID)
	if err != nil {
		return nil, err
	}

	cfg.ReminderDelayMinutes = req.ReminderDelayMinutes
	cfg.PrimaryContactDelayMinutes = req.PrimaryContactDelayMinutes
	cfg.AllContactsDelayMinutes = req.AllContactsDelayMinutes
	cfg.UpdatedAt = s.clock.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateConfig(ctx, s.db, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
