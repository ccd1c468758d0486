package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/glucoguard/glucoguard/internal/alert/domain"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
)

func (s *Server) EvaluateAlerts(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	created, err := s.alertSvc.Evaluate(c.Request.Context(), patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": created})
}

func (s *Server) ListActiveAlerts(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	alerts, err := s.alertSvc.ListActive(c.Request.Context(), patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

func (s *Server) AcknowledgeAlert(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}
	alertID, err := alertdomain.ParseID(c.Param("alert_id"))
	if err != nil {
		AbortWithError(c, newValidationError("alert_id", "invalid_alert_id", "invalid alert id"))
		return
	}

	alert, err := s.alertSvc.Acknowledge(c.Request.Context(), patientID, alertID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert})
}

func (s *Server) AlertTimeline(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}
	alertID, err := alertdomain.ParseID(c.Param("alert_id"))
	if err != nil {
		AbortWithError(c, newValidationError("alert_id", "invalid_alert_id", "invalid alert id"))
		return
	}

	events, err := s.escalationSvc.Timeline(c.Request.Context(), patientID, alertID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (s *Server) ProcessEscalations(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	outcomes, err := s.escalationSvc.ProcessEscalations(c.Request.Context(), patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": outcomes})
}
