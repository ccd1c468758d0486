package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Dose is a delivered insulin bolus, the input of the IoB projection.
type Dose struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	PatientID   snowflake.ID `json:"patient_id" gorm:"not null;index:ix_insulin_doses_patient_delivered,priority:1"`
	Units       float64      `json:"units" gorm:"not null"`
	DeliveredAt time.Time    `json:"delivered_at" gorm:"not null;index:ix_insulin_doses_patient_delivered,priority:2"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Dose) TableName() string { return "insulin_doses" }

// Projection is the estimated insulin still active for a patient.
// A stale projection must be treated as "no IoB data", never as zero.
type Projection struct {
	IOB     float64 `json:"iob"`
	Stale   bool    `json:"stale"`
	AsOf    time.Time
	DoseCnt int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, dose *Dose) error
	ListSince(ctx context.Context, db *gorm.DB, patientID snowflake.ID, since time.Time) ([]Dose, error)
}

type Service interface {
	// Project estimates insulin on board for the patient over the given
	// duration-of-insulin-action window (hours).
	Project(ctx context.Context, patientID snowflake.ID, diaHours float64) (*Projection, error)
}
