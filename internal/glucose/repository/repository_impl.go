package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	glucosedomain "github.com/glucoguard/glucoguard/internal/glucose/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() glucosedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *glucosedomain.Reading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO glucose_readings (id, patient_id, value, trend_rate, recorded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.PatientID,
		reading.Value,
		reading.TrendRate,
		reading.RecordedAt,
		reading.CreatedAt,
	).Error
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB, patientID snowflake.ID) (*glucosedomain.Reading, error) {
	var reading glucosedomain.Reading
	err := db.WithContext(ctx).Raw(
		`SELECT id, patient_id, value, trend_rate, recorded_at, created_at
		 FROM glucose_readings
		 WHERE patient_id = ?
		 ORDER BY recorded_at DESC
		 LIMIT 1`,
		patientID,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}
