package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/glucoguard/glucoguard/internal/contact/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() contactdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *contactdomain.Contact) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO emergency_contacts (id, patient_id, name, telegram_chat_id, email, priority, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.PatientID,
		c.Name,
		c.TelegramChatID,
		c.Email,
		c.Priority,
		c.Position,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) ListForPatient(ctx context.Context, db *gorm.DB, patientID snowflake.ID, priority *contactdomain.Priority) ([]contactdomain.Contact, error) {
	var contacts []contactdomain.Contact

	query := `SELECT id, patient_id, name, telegram_chat_id, email, priority, position, created_at, updated_at
		 FROM emergency_contacts WHERE patient_id = ?`
	args := []any{patientID}

	if priority != nil {
		query += ` AND priority = ?`
		args = append(args, *priority)
	}
	query += ` ORDER BY position ASC, id ASC`

	err := db.WithContext(ctx).Raw(query, args...).Scan(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}
