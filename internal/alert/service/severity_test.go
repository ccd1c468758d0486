package service

import (
	"testing"

	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifySeverityBaseMapping(t *testing.T) {
	cases := map[alertdomain.Type]alertdomain.Severity{
		alertdomain.TypeLowUrgent:   alertdomain.SeverityUrgent,
		alertdomain.TypeLowWarning:  alertdomain.SeverityWarning,
		alertdomain.TypeHighWarning: alertdomain.SeverityWarning,
		alertdomain.TypeHighUrgent:  alertdomain.SeverityUrgent,
		alertdomain.TypeIOBWarning:  alertdomain.SeverityWarning,
	}

	for alertType, want := range cases {
		assert.Equal(t, want, ClassifySeverity(alertType, nil, 3.0), "type %s", alertType)
	}
}

func TestClassifySeverityEscalatesLowTypesWithHighIOB(t *testing.T) {
	iob := 2.4 // exactly 0.8 * 3.0

	assert.Equal(t, alertdomain.SeverityUrgent, ClassifySeverity(alertdomain.TypeLowWarning, &iob, 3.0))
	assert.Equal(t, alertdomain.SeverityEmergency, ClassifySeverity(alertdomain.TypeLowUrgent, &iob, 3.0))
}

func TestClassifySeverityBelowFactorKeepsBase(t *testing.T) {
	iob := 2.3

	assert.Equal(t, alertdomain.SeverityWarning, ClassifySeverity(alertdomain.TypeLowWarning, &iob, 3.0))
	assert.Equal(t, alertdomain.SeverityUrgent, ClassifySeverity(alertdomain.TypeLowUrgent, &iob, 3.0))
}

func TestClassifySeverityNeverEscalatesHighTypes(t *testing.T) {
	iob := 10.0

	assert.Equal(t, alertdomain.SeverityWarning, ClassifySeverity(alertdomain.TypeHighWarning, &iob, 3.0))
	assert.Equal(t, alertdomain.SeverityUrgent, ClassifySeverity(alertdomain.TypeHighUrgent, &iob, 3.0))
	assert.Equal(t, alertdomain.SeverityWarning, ClassifySeverity(alertdomain.TypeIOBWarning, &iob, 3.0))
}

func TestClassifySeveritySingleStepOnly(t *testing.T) {
	iob := 100.0

	// A warning with extreme IoB still lands on URGENT, never EMERGENCY.
	assert.Equal(t, alertdomain.SeverityUrgent, ClassifySeverity(alertdomain.TypeLowWarning, &iob, 3.0))
}

func TestClassifySeverityInvalidThresholdKeepsBase(t *testing.T) {
	iob := 5.0

	assert.Equal(t, alertdomain.SeverityWarning, ClassifySeverity(alertdomain.TypeLowWarning, &iob, 0))
}
