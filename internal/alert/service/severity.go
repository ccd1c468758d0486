package service

import (
	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
)

// iobEscalationFactor is the fraction of the IoB warning threshold at
// which falling-glucose alerts get bumped one severity step: the
// correction margin is already committed as active insulin.
const iobEscalationFactor = 0.8

var baseSeverity = map[alertdomain.Type]alertdomain.Severity{
	alertdomain.TypeLowUrgent:   alertdomain.SeverityUrgent,
	alertdomain.TypeLowWarning:  alertdomain.SeverityWarning,
	alertdomain.TypeHighWarning: alertdomain.SeverityWarning,
	alertdomain.TypeHighUrgent:  alertdomain.SeverityUrgent,
	alertdomain.TypeIOBWarning:  alertdomain.SeverityWarning,
}

// severityStep encodes the single-step escalation lattice. Absent keys
// (INFO, EMERGENCY) have no outgoing edge, so a bump can never skip a
// level or overflow.
var severityStep = map[alertdomain.Severity]alertdomain.Severity{
	alertdomain.SeverityWarning: alertdomain.SeverityUrgent,
	alertdomain.SeverityUrgent:  alertdomain.SeverityEmergency,
}

// ClassifySeverity maps an alert type to its final severity. Only LOW_*
// types escalate, and only when substantial insulin is still active.
func ClassifySeverity(alertType alertdomain.Type, iob *float64, iobThreshold float64) alertdomain.Severity {
	severity := baseSeverity[alertType]

	if !alertType.Low() {
		return severity
	}
	if iob == nil || iobThreshold <= 0 {
		return severity
	}
	if *iob < iobThreshold*iobEscalationFactor {
		return severity
	}

	if next, ok := severityStep[severity]; ok {
		return next
	}
	return severity
}
