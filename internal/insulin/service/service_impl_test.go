package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/glucoguard/glucoguard/internal/clock"
	insulindomain "github.com/glucoguard/glucoguard/internal/insulin/domain"
	"github.com/glucoguard/glucoguard/internal/insulin/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	svc       insulindomain.Service
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.FakeClock
	patientID snowflake.ID
	doses     insulindomain.Repository
}

func setup(t *testing.T) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE insulin_doses (
		id INTEGER PRIMARY KEY,
		patient_id INTEGER NOT NULL,
		units REAL NOT NULL,
		delivered_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	doses := repository.Provide()

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  doses,
	})

	return &harness{
		svc:       svc,
		db:        db,
		node:      node,
		clock:     fakeClock,
		patientID: node.Generate(),
		doses:     doses,
	}
}

func (h *harness) addDose(t *testing.T, units float64, age time.Duration) {
	t.Helper()
	require.NoError(t, h.doses.Insert(context.Background(), h.db, &insulindomain.Dose{
		ID:          h.node.Generate(),
		PatientID:   h.patientID,
		Units:       units,
		DeliveredAt: h.clock.Now().Add(-age),
		CreatedAt:   h.clock.Now(),
	}))
}

func TestProjectLinearDecay(t *testing.T) {
	h := setup(t)
	h.addDose(t, 4.0, 2*time.Hour)

	projection, err := h.svc.Project(context.Background(), h.patientID, 4)
	require.NoError(t, err)

	assert.False(t, projection.Stale)
	assert.InDelta(t, 2.0, projection.IOB, 1e-9)
	assert.Equal(t, 1, projection.DoseCnt)
}

func TestProjectSumsOverlappingDoses(t *testing.T) {
	h := setup(t)
	h.addDose(t, 4.0, 2*time.Hour)
	h.addDose(t, 2.0, time.Hour)

	projection, err := h.svc.Project(context.Background(), h.patientID, 4)
	require.NoError(t, err)

	// 4*(1-2/4) + 2*(1-1/4) = 2.0 + 1.5
	assert.InDelta(t, 3.5, projection.IOB, 1e-9)
}

func TestProjectIgnoresDosesOutsideWindow(t *testing.T) {
	h := setup(t)
	h.addDose(t, 6.0, 5*time.Hour)
	h.addDose(t, 2.0, time.Hour)

	projection, err := h.svc.Project(context.Background(), h.patientID, 4)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, projection.IOB, 1e-9)
	assert.Equal(t, 1, projection.DoseCnt)
}

func TestProjectNoDosesIsStale(t *testing.T) {
	h := setup(t)

	projection, err := h.svc.Project(context.Background(), h.patientID, 4)
	require.NoError(t, err)

	assert.True(t, projection.Stale)
	assert.Equal(t, 0.0, projection.IOB)
}
