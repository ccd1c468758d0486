package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() patientdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *patientdomain.Patient) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO patients (id, full_name, telegram_chat_id, dia_hours, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.FullName,
		p.TelegramChatID,
		p.DIAHours,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*patientdomain.Patient, error) {
	var patient patientdomain.Patient
	err := db.WithContext(ctx).Raw(
		`SELECT id, full_name, telegram_chat_id, dia_hours, created_at, updated_at
		 FROM patients WHERE id = ?`,
		id,
	).Scan(&patient).Error
	if err != nil {
		return nil, err
	}
	if patient.ID == 0 {
		return nil, nil
	}
	return &patient, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]patientdomain.Patient, error) {
	var patients []patientdomain.Patient
	err := db.WithContext(ctx).Raw(
		`SELECT id, full_name, telegram_chat_id, dia_hours, created_at, updated_at
		 FROM patients ORDER BY id LIMIT ?`,
		limit,
	).Scan(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}
