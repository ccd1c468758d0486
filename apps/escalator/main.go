package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/glucoguard/glucoguard/internal/alert"
	"github.com/glucoguard/glucoguard/internal/clock"
	"github.com/glucoguard/glucoguard/internal/config"
	"github.com/glucoguard/glucoguard/internal/contact"
	"github.com/glucoguard/glucoguard/internal/escalation"
	"github.com/glucoguard/glucoguard/internal/glucose"
	"github.com/glucoguard/glucoguard/internal/insulin"
	"github.com/glucoguard/glucoguard/internal/logger"
	"github.com/glucoguard/glucoguard/internal/observability/metrics"
	"github.com/glucoguard/glucoguard/internal/patient"
	"github.com/glucoguard/glucoguard/internal/providers"
	"github.com/glucoguard/glucoguard/internal/scheduler"
	"github.com/glucoguard/glucoguard/internal/threshold"
	"github.com/glucoguard/glucoguard/pkg/db"
	"go.uber.org/fx"
)

// Escalator runs only the background sweeps. Set
// SCHEDULER_ENABLED_JOBS=process_escalations to split escalation from
// evaluation across deployments.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		providers.Module,

		// Domain services required by the scheduler
		patient.Module,
		glucose.Module,
		insulin.Module,
		threshold.Module,
		contact.Module,
		alert.Module,
		escalation.Module,

		// No server module!
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
