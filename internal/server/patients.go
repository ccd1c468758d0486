package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	contactdomain "github.com/glucoguard/glucoguard/internal/contact/domain"
	glucosedomain "github.com/glucoguard/glucoguard/internal/glucose/domain"
	insulindomain "github.com/glucoguard/glucoguard/internal/insulin/domain"
	patientdomain "github.com/glucoguard/glucoguard/internal/patient/domain"
)

type createPatientRequest struct {
	FullName       string  `json:"full_name"`
	TelegramChatID string  `json:"telegram_chat_id"`
	DIAHours       float64 `json:"dia_hours"`
}

func (s *Server) CreatePatient(c *gin.Context) {
	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		AbortWithError(c, newValidationError("full_name", "invalid_full_name", "full name is required"))
		return
	}
	if req.DIAHours <= 0 {
		req.DIAHours = 4.0
	}

	now := s.clock.Now()
	patient := &patientdomain.Patient{
		ID:             s.genID.Generate(),
		FullName:       strings.TrimSpace(req.FullName),
		TelegramChatID: strings.TrimSpace(req.TelegramChatID),
		DIAHours:       req.DIAHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.patients.Insert(c.Request.Context(), s.db, patient); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": patient})
}

func (s *Server) GetPatient(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	patient, err := s.patients.FindByID(c.Request.Context(), s.db, patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if patient == nil {
		AbortWithError(c, patientdomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": patient})
}

type ingestReadingRequest struct {
	Value      int        `json:"value"`
	TrendRate  *float64   `json:"trend_rate"`
	RecordedAt *time.Time `json:"recorded_at"`
}

func (s *Server) IngestReading(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	var req ingestReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if req.Value <= 0 {
		AbortWithError(c, newValidationError("value", "invalid_value", "glucose value must be positive"))
		return
	}

	now := s.clock.Now()
	recordedAt := now
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	reading := &glucosedomain.Reading{
		ID:         s.genID.Generate(),
		PatientID:  patientID,
		Value:      req.Value,
		TrendRate:  req.TrendRate,
		RecordedAt: recordedAt,
		CreatedAt:  now,
	}

	if err := s.readings.Insert(c.Request.Context(), s.db, reading); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": reading})
}

type ingestDoseRequest struct {
	Units       float64    `json:"units"`
	DeliveredAt *time.Time `json:"delivered_at"`
}

func (s *Server) IngestDose(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	var req ingestDoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if req.Units <= 0 {
		AbortWithError(c, newValidationError("units", "invalid_units", "dose units must be positive"))
		return
	}

	now := s.clock.Now()
	deliveredAt := now
	if req.DeliveredAt != nil {
		deliveredAt = *req.DeliveredAt
	}

	dose := &insulindomain.Dose{
		ID:          s.genID.Generate(),
		PatientID:   patientID,
		Units:       req.Units,
		DeliveredAt: deliveredAt,
		CreatedAt:   now,
	}

	if err := s.doses.Insert(c.Request.Context(), s.db, dose); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dose})
}

func (s *Server) GetIOB(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	patient, err := s.patients.FindByID(c.Request.Context(), s.db, patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if patient == nil {
		AbortWithError(c, patientdomain.ErrNotFound)
		return
	}

	projection, err := s.insulinSvc.Project(c.Request.Context(), patientID, patient.DIAHours)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": projection})
}

type createContactRequest struct {
	Name           string  `json:"name"`
	TelegramChatID *string `json:"telegram_chat_id"`
	Email          *string `json:"email"`
	Priority       string  `json:"priority"`
	Position       int     `json:"position"`
}

func (s *Server) CreateContact(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "contact name is required"))
		return
	}

	priority := contactdomain.Priority(strings.ToUpper(strings.TrimSpace(req.Priority)))
	if priority != contactdomain.PriorityPrimary && priority != contactdomain.PrioritySecondary {
		AbortWithError(c, newValidationError("priority", "invalid_priority", "priority must be PRIMARY or SECONDARY"))
		return
	}

	now := s.clock.Now()
	contact := &contactdomain.Contact{
		ID:             s.genID.Generate(),
		PatientID:      patientID,
		Name:           strings.TrimSpace(req.Name),
		TelegramChatID: req.TelegramChatID,
		Email:          req.Email,
		Priority:       priority,
		Position:       req.Position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.contacts.Insert(c.Request.Context(), s.db, contact); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": contact})
}

func (s *Server) ListContacts(c *gin.Context) {
	patientID, err := patientdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_patient_id", "invalid patient id"))
		return
	}

	contacts, err := s.contacts.ListForPatient(c.Request.Context(), s.db, patientID, nil)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contacts})
}
