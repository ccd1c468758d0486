package service

import (
	"fmt"
	"time"

	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	escalationdomain "github.com/glucoguard/glucoguard/internal/escalation/domain"
)

// Decide picks the next tier for an alert. Tier state is never stored:
// the next tier is always the first one absent from the event history,
// and it is due once the alert's age reaches that tier's delay. This
// stays correct after crashes, restarts, and config changes mid-flight.
func Decide(alert *alertdomain.Alert, cfg *escalationdomain.Config, fired map[escalationdomain.Tier]bool, now time.Time) escalationdomain.Decision {
	var next escalationdomain.Tier
	found := false
	for _, tier := range escalationdomain.Tiers {
		if !fired[tier] {
			next = tier
			found = true
			break
		}
	}
	if !found {
		return escalationdomain.Decision{Reason: "all tiers already triggered"}
	}

	age := now.Sub(alert.CreatedAt)
	delay := cfg.Delay(next)
	if age >= delay {
		return escalationdomain.Decision{Tier: next, Due: true}
	}

	return escalationdomain.Decision{
		Tier: next,
		Reason: fmt.Sprintf("tier %s not due: %.0f of %.0f minutes elapsed",
			next, age.Minutes(), delay.Minutes()),
	}
}
