package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Type string

const (
	TypeLowUrgent   Type = "LOW_URGENT"
	TypeLowWarning  Type = "LOW_WARNING"
	TypeHighWarning Type = "HIGH_WARNING"
	TypeHighUrgent  Type = "HIGH_URGENT"
	TypeIOBWarning  Type = "IOB_WARNING"
)

// Low reports whether the type is a falling-glucose alert. Only low
// types are eligible for the IoB severity escalation.
func (t Type) Low() bool {
	return t == TypeLowUrgent || t == TypeLowWarning
}

type Severity string

const (
	SeverityInfo      Severity = "INFO"
	SeverityWarning   Severity = "WARNING"
	SeverityUrgent    Severity = "URGENT"
	SeverityEmergency Severity = "EMERGENCY"
)

var severityRank = map[Severity]int{
	SeverityInfo:      0,
	SeverityWarning:   1,
	SeverityUrgent:    2,
	SeverityEmergency: 3,
}

// Critical reports whether the severity warrants contact escalation.
func (s Severity) Critical() bool {
	return severityRank[s] >= severityRank[SeverityUrgent]
}

type Source string

const (
	SourceCurrent    Source = "current"
	SourcePredictive Source = "predictive"
	SourceIOB        Source = "iob"
)

// Alert is a persisted danger condition. Created by the evaluation
// pipeline, mutated only by acknowledgment; expiry is a read-time check
// and rows are never physically deleted.
type Alert struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	PatientID         snowflake.ID `json:"patient_id" gorm:"not null;index:ix_alerts_patient_type_created,priority:1"`
	Type              Type         `json:"alert_type" gorm:"column:alert_type;type:text;not null;index:ix_alerts_patient_type_created,priority:2"`
	Severity          Severity     `json:"severity" gorm:"type:text;not null"`
	CurrentValue      int          `json:"current_value" gorm:"not null"`
	PredictedValue    *float64     `json:"predicted_value"`
	PredictionMinutes *int         `json:"prediction_minutes"`
	IOBValue          *float64     `json:"iob_value" gorm:"column:iob_value"`
	TrendRate         *float64     `json:"trend_rate"`
	Source            Source       `json:"source" gorm:"type:text;not null"`
	Message           string       `json:"message" gorm:"type:text;not null"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;index:ix_alerts_patient_type_created,priority:3"`
	ExpiresAt         time.Time    `json:"expires_at" gorm:"not null"`
	Acknowledged      bool         `json:"acknowledged" gorm:"not null;default:false"`
	AcknowledgedAt    *time.Time   `json:"acknowledged_at"`
}

// TableName sets the database table name.
func (Alert) TableName() string { return "alerts" }

// Expired is the passive 60-minute expiry check.
func (a *Alert) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// Candidate is a detected danger condition before deduplication. The
// detector leaves Severity at the base value; the classifier finalizes it.
type Candidate struct {
	Type              Type
	Severity          Severity
	CurrentValue      int
	PredictedValue    *float64
	PredictionMinutes *int
	IOBValue          *float64
	TrendRate         *float64
	Source            Source
	Message           string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, alert *Alert) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Alert, error)
	// FindRecentUnacknowledged returns the newest unacknowledged alert of
	// the given type created after the cutoff, or nil.
	FindRecentUnacknowledged(ctx context.Context, db *gorm.DB, patientID snowflake.ID, alertType Type, cutoff time.Time) (*Alert, error)
	// ListActive returns unacknowledged, unexpired alerts, newest first.
	ListActive(ctx context.Context, db *gorm.DB, patientID snowflake.ID, now time.Time) ([]Alert, error)
	// ListUnacknowledgedCritical returns the active alerts eligible for
	// escalation (severity URGENT or EMERGENCY), oldest first.
	ListUnacknowledgedCritical(ctx context.Context, db *gorm.DB, patientID snowflake.ID, now time.Time) ([]Alert, error)
	Acknowledge(ctx context.Context, db *gorm.DB, patientID, alertID snowflake.ID, at time.Time) error
}

type Service interface {
	// Evaluate runs the full detection pipeline for a patient and returns
	// the alerts it created. A stale or missing reading yields an empty
	// result with no side effects.
	Evaluate(ctx context.Context, patientID snowflake.ID) ([]Alert, error)
	Acknowledge(ctx context.Context, patientID, alertID snowflake.ID) (*Alert, error)
	ListActive(ctx context.Context, patientID snowflake.ID) ([]Alert, error)
}

var (
	ErrNotFound            = errors.New("alert_not_found")
	ErrAlreadyAcknowledged = errors.New("alert_already_acknowledged")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
