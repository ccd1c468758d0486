package service

import (
	"fmt"

	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	escalationdomain "github.com/glucoguard/glucoguard/internal/escalation/domain"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
)

// tierMessage renders the outbound text for a tier. The reminder speaks
// to the patient; contact tiers speak about the patient and carry
// enough context to act on without opening the app.
func tierMessage(tier escalationdomain.Tier, patient *patientdomain.Patient, alert *alertdomain.Alert) string {
	switch tier {
	case escalationdomain.TierReminder:
		return fmt.Sprintf("Reminder: you have an unacknowledged %s alert. %s Please acknowledge it.",
			alert.Severity, alert.Message)
	case escalationdomain.TierPrimaryContact:
		return fmt.Sprintf("%s has an unacknowledged %s alert and has not responded. %s Current glucose: %d mg/dL.",
			patient.FullName, alert.Severity, alert.Message, alert.CurrentValue)
	case escalationdomain.TierAllContacts:
		return fmt.Sprintf("%s has an unacknowledged %s alert. Neither the patient nor the primary contact has responded. %s Current glucose: %d mg/dL.",
			patient.FullName, alert.Severity, alert.Message, alert.CurrentValue)
	}
	return alert.Message
}
