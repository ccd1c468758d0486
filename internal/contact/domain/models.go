package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityPrimary   Priority = "PRIMARY"
	PrioritySecondary Priority = "SECONDARY"
)

// Contact is an emergency contact reachable during escalation. A contact
// may carry a telegram handle, an email address, or both. CRUD is owned
// by the API layer; the escalation engine only reads.
type Contact struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	PatientID      snowflake.ID `json:"patient_id" gorm:"not null;index:ix_emergency_contacts_patient_position,priority:1"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	TelegramChatID *string      `json:"telegram_chat_id"`
	Email          *string      `json:"email"`
	Priority       Priority     `json:"priority" gorm:"type:text;not null"`
	Position       int          `json:"position" gorm:"not null;default:0;index:ix_emergency_contacts_patient_position,priority:2"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Contact) TableName() string { return "emergency_contacts" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contact *Contact) error
	// ListForPatient returns contacts ordered by position. A nil priority
	// filter returns every contact.
	ListForPatient(ctx context.Context, db *gorm.DB, patientID snowflake.ID, priority *Priority) ([]Contact, error)
}
