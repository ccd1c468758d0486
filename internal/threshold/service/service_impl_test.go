package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/glucoguard/glucoguard/internal/clock"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
	"github.com/glucoguard/glucoguard/internal/threshold/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (thresholddomain.Service, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE alert_thresholds (
		id INTEGER PRIMARY KEY,
		patient_id INTEGER NOT NULL UNIQUE,
		urgent_low INTEGER NOT NULL,
		low_warning INTEGER NOT NULL,
		high_warning INTEGER NOT NULL,
		urgent_high INTEGER NOT NULL,
		iob_warning REAL NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})

	return svc, node.Generate()
}

func TestGetOrCreateStoresDefaults(t *testing.T) {
	svc, patientID := setupService(t)

	thresholds, err := svc.GetOrCreate(context.Background(), patientID)
	require.NoError(t, err)

	assert.Equal(t, thresholddomain.DefaultUrgentLow, thresholds.UrgentLow)
	assert.Equal(t, thresholddomain.DefaultLowWarning, thresholds.LowWarning)
	assert.Equal(t, thresholddomain.DefaultHighWarning, thresholds.HighWarning)
	assert.Equal(t, thresholddomain.DefaultUrgentHigh, thresholds.UrgentHigh)
	assert.Equal(t, thresholddomain.DefaultIOBWarning, thresholds.IOBWarning)

	again, err := svc.GetOrCreate(context.Background(), patientID)
	require.NoError(t, err)
	assert.Equal(t, thresholds.ID, again.ID)
}

func TestUpdateRejectsOutOfOrder(t *testing.T) {
	svc, patientID := setupService(t)

	_, err := svc.Update(context.Background(), patientID, thresholddomain.UpdateRequest{
		UrgentLow:   80,
		LowWarning:  70,
		HighWarning: 180,
		UrgentHigh:  250,
		IOBWarning:  3.0,
	})
	assert.ErrorIs(t, err, thresholddomain.ErrOutOfOrder)
}

func TestUpdateRejectsInvalidIOBWarning(t *testing.T) {
	svc, patientID := setupService(t)

	_, err := svc.Update(context.Background(), patientID, thresholddomain.UpdateRequest{
		UrgentLow:   55,
		LowWarning:  70,
		HighWarning: 180,
		UrgentHigh:  250,
		IOBWarning:  0,
	})
	assert.ErrorIs(t, err, thresholddomain.ErrInvalidIOBWarning)
}

func TestUpdatePersists(t *testing.T) {
	svc, patientID := setupService(t)

	updated, err := svc.Update(context.Background(), patientID, thresholddomain.UpdateRequest{
		UrgentLow:   50,
		LowWarning:  65,
		HighWarning: 170,
		UrgentHigh:  240,
		IOBWarning:  2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.UrgentLow)

	stored, err := svc.GetOrCreate(context.Background(), patientID)
	require.NoError(t, err)
	assert.Equal(t, 65, stored.LowWarning)
	assert.Equal(t, 2.5, stored.IOBWarning)
}
