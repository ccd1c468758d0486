package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Defaults applied when a patient has no stored thresholds yet.
const (
	DefaultUrgentLow   = 55
	DefaultLowWarning  = 70
	DefaultHighWarning = 180
	DefaultUrgentHigh  = 250
	DefaultIOBWarning  = 3.0
)

// Thresholds are the per-patient alert boundaries. The four glucose
// boundaries are strictly ordered: urgent_low < low_warning <
// high_warning < urgent_high. Ordering is validated on every write, so
// readers may assume it holds.
type Thresholds struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	PatientID   snowflake.ID `json:"patient_id" gorm:"not null;uniqueIndex"`
	UrgentLow   int          `json:"urgent_low" gorm:"not null"`
	LowWarning  int          `json:"low_warning" gorm:"not null"`
	HighWarning int          `json:"high_warning" gorm:"not null"`
	UrgentHigh  int          `json:"urgent_high" gorm:"not null"`
	IOBWarning  float64      `json:"iob_warning" gorm:"column:iob_warning;not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Thresholds) TableName() string { return "alert_thresholds" }

// Validate enforces the strict ordering invariant.
func (t *Thresholds) Validate() error {
	if t.UrgentLow >= t.LowWarning || t.LowWarning >= t.HighWarning || t.HighWarning >= t.UrgentHigh {
		return ErrOutOfOrder
	}
	if t.IOBWarning <= 0 {
		return ErrInvalidIOBWarning
	}
	return nil
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, thresholds *Thresholds) error
	Update(ctx context.Context, db *gorm.DB, thresholds *Thresholds) error
	FindByPatient(ctx context.Context, db *gorm.DB, patientID snowflake.ID) (*Thresholds, error)
}

type UpdateRequest struct {
	UrgentLow   int     `json:"urgent_low"`
	LowWarning  int     `json:"low_warning"`
	HighWarning int     `json:"high_warning"`
	UrgentHigh  int     `json:"urgent_high"`
	IOBWarning  float64 `json:"iob_warning"`
}

type Service interface {
	// GetOrCreate returns the patient's thresholds, storing defaults on
	// first access.
	GetOrCreate(ctx context.Context, patientID snowflake.ID) (*Thresholds, error)
	Update(ctx context.Context, patientID snowflake.ID, req UpdateRequest) (*Thresholds, error)
}

var (
	ErrOutOfOrder        = errors.New("thresholds_out_of_order")
	ErrInvalidIOBWarning = errors.New("invalid_iob_warning")
)
