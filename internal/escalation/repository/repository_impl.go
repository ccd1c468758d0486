package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	escalationdomain "github.com/glucoguard/glucoguard/internal/escalation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() escalationdomain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *escalationdomain.Event) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO escalation_events
		 (id, alert_id, tier, triggered_at, message_content, notification_status, contacts_notified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.AlertID,
		event.Tier,
		event.TriggeredAt,
		event.MessageContent,
		event.Status,
		event.ContactsNotified,
		event.CreatedAt,
	).Error
}

func (r *repo) ListEventsByAlert(ctx context.Context, db *gorm.DB, alertID snowflake.ID) ([]escalationdomain.Event, error) {
	var events []escalationdomain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT id, alert_id, tier, triggered_at, message_content, notification_status, contacts_notified, created_at
		 FROM escalation_events
		 WHERE alert_id = ?
		 ORDER BY triggered_at ASC`,
		alertID,
	).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) InsertConfig(ctx context.Context, db *gorm.DB, config *escalationdomain.Config) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO escalation_configs
		 (id, patient_id, reminder_delay_minutes, primary_contact_delay_minutes, all_contacts_delay_minutes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		config.ID,
		config.PatientID,
		config.ReminderDelayMinutes,
		config.PrimaryContactDelayMinutes,
		config.AllContactsDelayMinutes,
		config.CreatedAt,
		config.UpdatedAt,
	).Error
}

func (r *repo) UpdateConfig(ctx context.Context, db *gorm.DB, config *escalationdomain.Config) error {
	return db.WithContext(ctx).Exec(
		`UPDATE escalation_configs
		 SET reminder_delay_minutes = ?, primary_contact_delay_minutes = ?, all_contacts_delay_minutes = ?, updated_at = ?
		 WHERE patient_id = ?`,
		config.ReminderDelayMinutes,
		config.PrimaryContactDelayMinutes,
		config.AllContactsDelayMinutes,
		config.UpdatedAt,
		config.PatientID,
	).Error
}

func (r *repo) FindConfigByPatient(ctx context.Context, db *gorm.DB, patientID snowflake.ID) (*escalationdomain.Config, error) {
	var config escalationdomain.Config
	err := db.WithContext(ctx).Raw(
		`SELECT id, patient_id, reminder_delay_minutes, primary_contact_delay_minutes, all_contacts_delay_minutes, created_at, updated_at
		 FROM escalation_configs
		 WHERE patient_id = ?`,
		patientID,
	).Scan(&config).Error
	if err != nil {
		return nil, err
	}
	if config.ID == 0 {
		return nil, nil
	}
	return &config, nil
}
