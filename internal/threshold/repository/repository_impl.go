package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() thresholddomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *thresholddomain.Thresholds) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO alert_thresholds (id, patient_id, urgent_low, low_warning, high_warning, urgent_high, iob_warning, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.PatientID,
		t.UrgentLow,
		t.LowWarning,
		t.HighWarning,
		t.UrgentHigh,
		t.IOBWarning,
		t.CreatedAt,
		t.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, t *thresholddomain.Thresholds) error {
	return db.WithContext(ctx).Exec(
		`UPDATE alert_thresholds
		 SET urgent_low = ?, low_warning = ?, high_warning = ?, urgent_high = ?, iob_warning = ?, updated_at = ?
		 WHERE patient_id = ?`,
		t.UrgentLow,
		t.LowWarning,
		t.HighWarning,
		t.UrgentHigh,
		t.IOBWarning,
		t.UpdatedAt,
		t.PatientID,
	).Error
}

func (r *repo) FindByPatient(ctx context.Context, db *gorm.DB, patientID snowflake.ID) (*thresholddomain.Thresholds, error) {
	var thresholds thresholddomain.Thresholds
	err := db.WithContext(ctx).Raw(
		`SELECT id, patient_id, urgent_low, low_warning, high_warning, urgent_high, iob_warning, created_at, updated_at
		 FROM alert_thresholds WHERE patient_id = ?`,
		patientID,
	).Scan(&thresholds).Error
	if err != nil {
		return nil, err
	}
	if thresholds.ID == 0 {
		return nil, nil
	}
	return &thresholds, nil
}
