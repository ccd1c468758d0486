package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	escalationdomain "github.com/glucoguard/glucoguard/internal/escalation/domain"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
	thresholddomain "github.com/glucoguard/glucoguard/internal/threshold/domain"
)

func (s *Server) GetThresholds(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	thresholds, err := s.thresholdSvc.GetOrCreate(c.Request.Context(), patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": thresholds})
}

func (s *Server) UpdateThresholds(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	var req thresholddomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	thresholds, err := s.thresholdSvc.Update(c.Request.Context(), patientID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": thresholds})
}

func (s *Server) GetEscalationConfig(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	cfg, err := s.escalationSvc.GetOrCreateConfig(c.Request.Context(), patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

func (s *Server) UpdateEscalationConfig(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	var req escalationdomain.ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	cfg, err := s.escalationSvc.UpdateConfig(c.Request.Context(), patientID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}
