package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Reading is a single CGM sample. The alert engine treats the most
// recent reading as the source of truth for current state and never
// mutates readings.
type Reading struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	PatientID  snowflake.ID `json:"patient_id" gorm:"not null;index:ix_glucose_readings_patient_recorded,priority:1"`
	Value      int          `json:"value" gorm:"not null"`
	TrendRate  *float64     `json:"trend_rate"`
	RecordedAt time.Time    `json:"recorded_at" gorm:"not null;index:ix_glucose_readings_patient_recorded,priority:2"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Reading) TableName() string { return "glucose_readings" }

// Age reports how long ago the sample was taken.
func (r *Reading) Age(now time.Time) time.Duration {
	return now.Sub(r.RecordedAt)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *Reading) error
	Latest(ctx context.Context, db *gorm.DB, patientID snowflake.ID) (*Reading, error)
}
