package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Tier is an escalation stage. Tiers are strictly ordered and each tier
// fires at most once per alert.
type Tier string

const (
	TierReminder       Tier = "REMINDER"
	TierPrimaryContact Tier = "PRIMARY_CONTACT"
	TierAllContacts    Tier = "ALL_CONTACTS"
)

// Tiers lists every tier in escalation order.
var Tiers = []Tier{TierReminder, TierPrimaryContact, TierAllContacts}

type NotificationStatus string

const (
	StatusPending NotificationStatus = "PENDING"
	StatusSent    NotificationStatus = "SENT"
	StatusFailed  NotificationStatus = "FAILED"
)

// Defaults applied when a patient has no stored escalation config yet.
const (
	DefaultReminderDelayMinutes       = 5
	DefaultPrimaryContactDelayMinutes = 10
	DefaultAllContactsDelayMinutes    = 20
)

// Config holds the per-patient tier delays, each measured from the
// alert's creation time, not from the previous tier. Delays are
// strictly increasing, validated on every write.
type Config struct {
	ID                         snowflake.ID `json:"id" gorm:"primaryKey"`
	PatientID                  snowflake.ID `json:"patient_id" gorm:"not null;uniqueIndex"`
	ReminderDelayMinutes       int          `json:"reminder_delay_minutes" gorm:"not null"`
	PrimaryContactDelayMinutes int          `json:"primary_contact_delay_minutes" gorm:"not null"`
	AllContactsDelayMinutes    int          `json:"all_contacts_delay_minutes" gorm:"not null"`
	CreatedAt                  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                  time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Config) TableName() string { return "escalation_configs" }

// Validate enforces the strict delay ordering invariant.
func (c *Config) Validate() error {
	if c.ReminderDelayMinutes <= 0 {
		return ErrInvalidDelays
	}
	if c.ReminderDelayMinutes >= c.PrimaryContactDelayMinutes ||
		c.PrimaryContactDelayMinutes >= c.AllContactsDelayMinutes {
		return ErrInvalidDelays
	}
	return nil
}

// Delay returns the tier's offset from alert creation.
func (c *Config) Delay(tier Tier) time.Duration {
	switch tier {
	case TierReminder:
		return time.Duration(c.ReminderDelayMinutes) * time.Minute
	case TierPrimaryContact:
		return time.Duration(c.PrimaryContactDelayMinutes) * time.Minute
	case TierAllContacts:
		return time.Duration(c.AllContactsDelayMinutes) * time.Minute
	}
	return 0
}

// Event records one fired escalation tier. The unique (alert_id, tier)
// index makes insertion the at-most-once gate: concurrent processors
// race on the insert and exactly one wins.
type Event struct {
	ID               snowflake.ID       `json:"id" gorm:"primaryKey"`
	AlertID          snowflake.ID       `json:"alert_id" gorm:"not null;uniqueIndex:ux_escalation_events_alert_tier,priority:1"`
	Tier             Tier               `json:"tier" gorm:"type:text;not null;uniqueIndex:ux_escalation_events_alert_tier,priority:2"`
	TriggeredAt      time.Time          `json:"triggered_at" gorm:"not null"`
	MessageContent   string             `json:"message_content" gorm:"type:text;not null"`
	Status           NotificationStatus `json:"notification_status" gorm:"column:notification_status;type:text;not null"`
	ContactsNotified string             `json:"contacts_notified" gorm:"type:text;not null;default:'[]'"`
	CreatedAt        time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "escalation_events" }

// Decision is the outcome of evaluating one alert against the tier
// ladder, derived entirely from the alert age and the event history.
type Decision struct {
	Tier   Tier
	Due    bool
	Reason string
}

// Outcome reports what escalation processing did for one alert.
type Outcome struct {
	AlertID   snowflake.ID `json:"alert_id"`
	Tier      Tier         `json:"tier,omitempty"`
	Escalated bool         `json:"escalated"`
	Reason    string       `json:"reason,omitempty"`
	Event     *Event       `json:"event,omitempty"`
}

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, event *Event) error
	// ListEventsByAlert returns the alert's events in trigger order.
	ListEventsByAlert(ctx context.Context, db *gorm.DB, alertID snowflake.ID) ([]Event, error)
	InsertConfig(ctx context.Context, db *gorm.DB, config *Config) error
	UpdateConfig(ctx context.Context, db *gorm.DB, config *Config) error
	FindConfigByPatient(ctx context.Context, db *gorm.DB, patientID snowflake.ID) (*Config, error)
}

type ConfigUpdateRequest struct {
	ReminderDelayMinutes       int `json:"reminder_delay_minutes"`
	PrimaryContactDelayMinutes int `json:"primary_contact_delay_minutes"`
	AllContactsDelayMinutes    int `json:"all_contacts_delay_minutes"`
}

type Service interface {
	// ProcessEscalations sweeps the patient's unacknowledged critical
	// alerts and fires every tier that has come due.
	ProcessEscalations(ctx context.Context, patientID snowflake.ID) ([]Outcome, error)
	// Timeline returns the escalation history of one alert.
	Timeline(ctx context.Context, patientID, alertID snowflake.ID) ([]Event, error)
	GetOrCreateConfig(ctx context.Context, patientID snowflake.ID) (*Config, error)
	UpdateConfig(ctx context.Context, patientID snowflake.ID, req ConfigUpdateRequest) (*Config, error)
}

var ErrInvalidDelays = errors.New("escalation_delays_out_of_order")
