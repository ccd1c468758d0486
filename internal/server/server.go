package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	"github.com/glucoguard/glucoguard/internal/clock"
	"github.com/glucoguard/glucoguard/internal/config"
	contactdomain "github.com/glucoguard/glucoguard/internal/contact/domain"
	escalationdomain "github.com/glucoguard/glucoguard/internal/escalation/domain"
	glucosedomain "github.com/glucoguard/glucoguard/internal/glucose/domain"
	insulindomain "github.com/glucoguard/glucoguard/internal/insulin/domain"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewEngine(registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

type Params struct {
	fx.In

	Engine        *gin.Engine
	Config        config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Patients      patientdomain.Repository
	Readings      glucosedomain.Repository
	Doses         insulindomain.Repository
	Contacts      contactdomain.Repository
	ThresholdSvc  thresholddomain.Service
	InsulinSvc    insulindomain.Service
	AlertSvc      alertdomain.Service
	EscalationSvc escalationdomain.Service
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	patients      patientdomain.Repository
	readings      glucosedomain.Repository
	doses         insulindomain.Repository
	contacts      contactdomain.Repository
	thresholdSvc  thresholddomain.Service
	insulinSvc    insulindomain.Service
	alertSvc      alertdomain.Service
	escalationSvc escalationdomain.Service
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:        p.Engine,
		cfg:           p.Config,
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		genID:         p.GenID,
		clock:         p.Clock,
		patients:      p.Patients,
		readings:      p.Readings,
		doses:         p.Doses,
		contacts:      p.Contacts,
		thresholdSvc:  p.ThresholdSvc,
		insulinSvc:    p.InsulinSvc,
		alertSvc:      p.AlertSvc,
		escalationSvc: p.EscalationSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/patients", s.CreatePatient)
	v1.GET("/patients/:id", s.GetPatient)

	v1.POST("/patients/:id/readings", s.IngestReading)
	v1.POST("/patients/:id/doses", s.IngestDose)
	v1.GET("/patients/:id/iob", s.GetIOB)

	v1.GET("/patients/:id/thresholds", s.GetThresholds)
	v1.PUT("/patients/:id/thresholds", s.UpdateThresholds)
	v1.GET("/patients/:id/escalation-config", s.GetEscalationConfig)
	v1.PUT("/patients/:id/escalation-config", s.UpdateEscalationConfig)

	v1.POST("/patients/:id/contacts", s.CreateContact)
	v1.GET("/patients/:id/contacts", s.ListContacts)

	v1.POST("/patients/:id/evaluate", s.EvaluateAlerts)
	v1.GET("/patients/:id/alerts", s.ListActiveAlerts)
	v1.POST("/patients/:id/alerts/:alert_id/acknowledge", s.AcknowledgeAlert)
	v1.GET("/patients/:id/alerts/:alert_id/timeline", s.AlertTimeline)
	v1.POST("/patients/:id/escalations/process", s.ProcessEscalations)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)
