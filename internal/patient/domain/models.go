package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Patient owns readings, thresholds, and contacts. The alert engine only
// needs the identity, the direct-notification handle, and the insulin
// action window used by the IoB projection.
type Patient struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	FullName       string       `json:"full_name" gorm:"type:text;not null"`
	TelegramChatID string       `json:"telegram_chat_id" gorm:"type:text;not null;default:''"`
	DIAHours       float64      `json:"dia_hours" gorm:"column:dia_hours;not null;default:4.0"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Patient) TableName() string { return "patients" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, patient *Patient) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Patient, error)
	List(ctx context.Context, db *gorm.DB, limit int) ([]Patient, error)
}

var ErrNotFound = errors.New("patient_not_found")

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
