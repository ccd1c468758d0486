package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	alertrepository "github.com/glucoguard/glucoguard/internal/alert/repository"
	"github.com/glucoguard/glucoguard/internal/clock"
	glucosedomain "github.com/glucoguard/glucoguard/internal/glucose/domain"
	insulindomain "github.com/glucoguard/glucoguard/internal/insulin/domain"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// -- Stubs --

type patientRepoStub struct {
	patient *patientdomain.Patient
}

func (s *patientRepoStub) Insert(ctx context.Context, db *gorm.DB, patient *patientdomain.Patient) error {
	return nil
}

func (s *patientRepoStub) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*patientdomain.Patient, error) {
	if s.patient != nil && s.patient.ID == id {
		return s.patient, nil
	}
	return nil, nil
}

func (s *patientRepoStub) List(ctx context.Context, db *gorm.DB, limit int) ([]patientdomain.Patient, error) {
	if s.patient == nil {
		return nil, nil
	}
	return []patientdomain.Patient{*s.patient}, nil
}

type readingRepoStub struct {
	reading *glucosedomain.Reading
}

func (s *readingRepoStub) Insert(ctx context.Context, db *gorm.DB, reading *glucosedomain.Reading) error {
	return nil
}

func (s *readingRepoStub) Latest(ctx context.Context, db *gorm.DB, patientID snowflake.ID) (*glucosedomain.Reading, error) {
	return s.reading, nil
}

type thresholdSvcStub struct {
	thresholds *thresholddomain.Thresholds
}

func (s *thresholdSvcStub) GetOrCreate(ctx context.Context, patientID snowflake.ID) (*thresholddomain.Thresholds, error) {
	return s.thresholds, nil
}

func (s *thresholdSvcStub) Update(ctx context.Context, patientID snowflake.ID, req thresholddomain.UpdateRequest) (*thresholddomain.Thresholds, error) {
	return s.thresholds, nil
}

type insulinSvcStub struct {
	projection *insulindomain.Projection
	err        error
}

func (s *insulinSvcStub) Project(ctx context.Context, patientID snowflake.ID, diaHours float64) (*insulindomain.Projection, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.projection != nil {
		return s.projection, nil
	}
	return &insulindomain.Projection{Stale: true}, nil
}

type notifyRecorder struct {
	mu      sync.Mutex
	targets []string
	texts   []string
	err     error
}

func (r *notifyRecorder) Send(ctx context.Context, target string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.targets = append(r.targets, target)
	r.texts = append(r.texts, text)
	return nil
}

func (r *notifyRecorder) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}

// -- Fixture --

type fixture struct {
	svc      alertdomain.Service
	db       *gorm.DB
	clock    *clock.FakeClock
	patient  *patientdomain.Patient
	readings *readingRepoStub
	insulin  *insulinSvcStub
	notifier *notifyRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE alerts (
		id INTEGER PRIMARY KEY,
		patient_id INTEGER NOT NULL,
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		current_value INTEGER NOT NULL,
		predicted_value REAL,
		prediction_minutes INTEGER,
		iob_value REAL,
		trend_rate REAL,
		source TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
		acknowledged_at DATETIME
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	patient := &patientdomain.Patient{
		ID:             node.Generate(),
		FullName:       "Ada Martin",
		TelegramChatID: "chat-100",
		DIAHours:       4,
	}

	readings := &readingRepoStub{}
	insulin := &insulinSvcStub{}
	notifier := &notifyRecorder{}

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fakeClock,
		Repo:     alertrepository.Provide(),
		Readings: readings,
		Patients: &patientRepoStub{patient: patient},
		Thresholds: &thresholdSvcStub{thresholds: &thresholddomain.Thresholds{
			PatientID:   patient.ID,
			UrgentLow:   55,
			LowWarning:  70,
			HighWarning: 180,
			UrgentHigh:  250,
			IOBWarning:  3.0,
		}},
		Insulin:  insulin,
		Notifier: notifier,
	})

	return &fixture{
		svc:      svc,
		db:       db,
		clock:    fakeClock,
		patient:  patient,
		readings: readings,
		insulin:  insulin,
		notifier: notifier,
	}
}

func (f *fixture) setReading(value int, trendRate *float64, age time.Duration) {
	f.readings.reading = &glucosedomain.Reading{
		ID:         1,
		PatientID:  f.patient.ID,
		Value:      value,
		TrendRate:  trendRate,
		RecordedAt: f.clock.Now().Add(-age),
	}
}

func countAlerts(t *testing.T, db *gorm.DB) int {
	t.Helper()
	var count int
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM alerts`).Scan(&count).Error)
	return count
}

// -- Tests --

func TestEvaluateCreatesUrgentLowAlert(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, time.Minute)

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.TypeLowUrgent, created[0].Type)
	assert.Equal(t, alertdomain.SeverityUrgent, created[0].Severity)
	assert.Equal(t, alertdomain.SourceCurrent, created[0].Source)
	assert.Equal(t, f.clock.Now().Add(time.Hour), created[0].ExpiresAt)
	assert.Equal(t, 1, f.notifier.Sent())
}

func TestEvaluateSkipsStaleReading(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, 15*time.Minute)

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	assert.Empty(t, created)
	assert.Equal(t, 0, countAlerts(t, f.db))
	assert.Equal(t, 0, f.notifier.Sent())
}

func TestEvaluateSkipsMissingReading(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	assert.Empty(t, created)
	assert.Equal(t, 0, countAlerts(t, f.db))
}

func TestEvaluateDedupWindow(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, time.Minute)

	first, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Same condition five minutes later is suppressed.
	f.clock.Advance(5 * time.Minute)
	f.setReading(48, nil, time.Minute)
	second, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, second)

	// Past the dedup window the condition alerts again.
	f.clock.Advance(26 * time.Minute)
	f.setReading(47, nil, time.Minute)
	third, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, third, 1)

	assert.Equal(t, 2, countAlerts(t, f.db))
}

func TestEvaluateIOBEscalatesLowSeverity(t *testing.T) {
	f := newFixture(t)
	f.setReading(65, nil, time.Minute)
	f.insulin.projection = &insulindomain.Projection{IOB: 2.5}

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.TypeLowWarning, created[0].Type)
	assert.Equal(t, alertdomain.SeverityUrgent, created[0].Severity)
	require.NotNil(t, created[0].IOBValue)
	assert.Equal(t, 2.5, *created[0].IOBValue)
}

func TestEvaluateStaleIOBTreatedAsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.setReading(65, nil, time.Minute)
	f.insulin.projection = &insulindomain.Projection{IOB: 5.0, Stale: true}

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.SeverityWarning, created[0].Severity)
	assert.Nil(t, created[0].IOBValue)
}

func TestEvaluateIOBProjectionErrorDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.setReading(65, nil, time.Minute)
	f.insulin.err = errors.New("projection unavailable")

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.SeverityWarning, created[0].Severity)
}

func TestEvaluateCreatesIOBWarning(t *testing.T) {
	f := newFixture(t)
	f.setReading(110, nil, time.Minute)
	f.insulin.projection = &insulindomain.Projection{IOB: 3.5}

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.TypeIOBWarning, created[0].Type)
	assert.Equal(t, alertdomain.SeverityWarning, created[0].Severity)
	assert.Equal(t, alertdomain.SourceIOB, created[0].Source)
}

func TestEvaluateNotificationFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, time.Minute)
	f.notifier.err = errors.New("telegram down")

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)

	assert.Len(t, created, 1)
	assert.Equal(t, 1, countAlerts(t, f.db))
}

func TestEvaluateUnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Evaluate(context.Background(), snowflake.ID(99999))
	assert.ErrorIs(t, err, patientdomain.ErrNotFound)
}

func TestAcknowledge(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, time.Minute)

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	acked, err := f.svc.Acknowledge(context.Background(), f.patient.ID, created[0].ID)
	require.NoError(t, err)
	assert.True(t, acked.Acknowledged)
	require.NotNil(t, acked.AcknowledgedAt)

	_, err = f.svc.Acknowledge(context.Background(), f.patient.ID, created[0].ID)
	assert.ErrorIs(t, err, alertdomain.ErrAlreadyAcknowledged)
}

func TestAcknowledgeWrongPatient(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, time.Minute)

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	_, err = f.svc.Acknowledge(context.Background(), snowflake.ID(424242), created[0].ID)
	assert.ErrorIs(t, err, alertdomain.ErrNotFound)
}

func TestAcknowledgedAlertStopsDedupAndListing(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, time.Minute)

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	_, err = f.svc.Acknowledge(context.Background(), f.patient.ID, created[0].ID)
	require.NoError(t, err)

	active, err := f.svc.ListActive(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Acknowledgment silences the dedup window going forward.
	f.clock.Advance(2 * time.Minute)
	f.setReading(49, nil, time.Minute)
	again, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestListActiveExcludesExpired(t *testing.T) {
	f := newFixture(t)
	f.setReading(50, nil, time.Minute)

	created, err := f.svc.Evaluate(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	f.clock.Advance(61 * time.Minute)
	active, err := f.svc.ListActive(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}
