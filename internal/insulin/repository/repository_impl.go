package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	insulindomain "github.com/glucoguard/glucoguard/internal/insulin/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() insulindomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, dose *insulindomain.Dose) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO insulin_doses (id, patient_id, units, delivered_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		dose.ID,
		dose.PatientID,
		dose.Units,
		dose.DeliveredAt,
		dose.CreatedAt,
	).Error
}

func (r *repo) ListSince(ctx context.Context, db *gorm.DB, patientID snowflake.ID, since time.Time) ([]insulindomain.Dose, error) {
	var doses []insulindomain.Dose
	err := db.WithContext(ctx).Raw(
		`SELECT id, patient_id, units, delivered_at, created_at
		 FROM insulin_doses
		 WHERE patient_id = ? AND delivered_at > ?
		 ORDER BY delivered_at ASC`,
		patientID,
		since,
	).Scan(&doses).Error
	if err != nil {
		return nil, err
	}
	return doses, nil
}
