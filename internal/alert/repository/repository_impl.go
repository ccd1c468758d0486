package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	"gorm.io/gorm"
)

const alertColumns = `id, patient_id, alert_type, severity, current_value, predicted_value, prediction_minutes,
		iob_value, trend_rate, source, message, created_at, expires_at, acknowledged, acknowledged_at`

type repo struct{}

func Provide() alertdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, a *alertdomain.Alert) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO alerts (`+alertColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.PatientID,
		a.Type,
		a.Severity,
		a.CurrentValue,
		a.PredictedValue,
		a.PredictionMinutes,
		a.IOBValue,
		a.TrendRate,
		a.Source,
		a.Message,
		a.CreatedAt,
		a.ExpiresAt,
		a.Acknowledged,
		a.AcknowledgedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*alertdomain.Alert, error) {
	var alert alertdomain.Alert
	err := db.WithContext(ctx).Raw(
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`,
		id,
	).Scan(&alert).Error
	if err != nil {
		return nil, err
	}
	if alert.ID == 0 {
		return nil, nil
	}
	return &alert, nil
}

func (r *repo) FindRecentUnacknowledged(ctx context.Context, db *gorm.DB, patientID snowflake.ID, alertType alertdomain.Type, cutoff time.Time) (*alertdomain.Alert, error) {
	var alert alertdomain.Alert
	err := db.WithContext(ctx).Raw(
		`SELECT `+alertColumns+`
		 FROM alerts
		 WHERE patient_id = ? AND alert_type = ? AND acknowledged = ? AND created_at > ?
		 ORDER BY created_at DESC
		 LIMIT 1`,
		patientID,
		alertType,
		false,
		cutoff,
	).Scan(&alert).Error
	if err != nil {
		return nil, err
	}
	if alert.ID == 0 {
		return nil, nil
	}
	return &alert, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, patientID snowflake.ID, now time.Time) ([]alertdomain.Alert, error) {
	var alerts []alertdomain.Alert
	err := db.WithContext(ctx).Raw(
		`SELECT `+alertColumns+`
		 FROM alerts
		 WHERE patient_id = ? AND acknowledged = ? AND expires_at > ?
		 ORDER BY created_at DESC`,
		patientID,
		false,
		now,
	).Scan(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) ListUnacknowledgedCritical(ctx context.Context, db *gorm.DB, patientID snowflake.ID, now time.Time) ([]alertdomain.Alert, error) {
	var alerts []alertdomain.Alert
	err := db.WithContext(ctx).Raw(
		`SELECT `+alertColumns+`
		 FROM alerts
		 WHERE patient_id = ? AND acknowledged = ? AND expires_at > ? AND severity IN (?, ?)
		 ORDER BY created_at ASC`,
		patientID,
		false,
		now,
		alertdomain.SeverityUrgent,
		alertdomain.SeverityEmergency,
	).Scan(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) Acknowledge(ctx context.Context, db *gorm.DB, patientID, alertID snowflake.ID, at time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE alerts
		 SET acknowledged = ?, acknowledged_at = ?
		 WHERE id = ? AND patient_id = ? AND acknowledged = ?`,
		true,
		at,
		alertID,
		patientID,
		false,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return alertdomain.ErrNotFound
	}
	return nil
}
