package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peopleops/hris-core/internal/application/service"
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/routing"
	"github.com/peopleops/hris-core/internal/export"
)

// actorHeader carries the acting user's directory id. Authentication is
// upstream's job; this layer only threads the identity through.
const actorHeader = "X-Actor-ID"

const actorKey = "actorID"

// Handlers contains all HTTP request handlers
type Handlers struct {
	caseService service.CaseService
	dirService  service.DirectoryService
	exporter    *export.RegisterExporter
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	caseService service.CaseService,
	dirService service.DirectoryService,
	exporter *export.RegisterExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		caseService: caseService,
		dirService:  dirService,
		exporter:    exporter,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmitCaseRequest is the submission payload
type SubmitCaseRequest struct {
	Resource          string   `json:"resource" binding:"required"`
	SubjectEmployeeID string   `json:"subject_employee_id" binding:"required"`
	BusinessUnitID    string   `json:"business_unit_id"`
	ApproverUserIDs   []string `json:"approver_user_ids" binding:"required"`
}

// DecideCaseRequest is the decision payload
type DecideCaseRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

// ResubmitCaseRequest is the resubmission payload. Leaving the approvers
// empty reuses the previous cycle's routing.
type ResubmitCaseRequest struct {
	ApproverUserIDs []string `json:"approver_user_ids"`
}

// RequireActor rejects requests that carry no actor identity
func (h *Handlers) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(actorHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   fmt.Sprintf("missing %s header", actorHeader),
			})
			return
		}
		c.Set(actorKey, actorID)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(actorKey)
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// SubmitCase handles POST /api/cases
func (h *Handlers) SubmitCase(c *gin.Context) {
	var req SubmitCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid submission payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.caseService.Submit(c.Request.Context(), actorID(c), service.SubmitRequest{
		Resource:          authz.Resource(req.Resource),
		SubjectEmployeeID: req.SubjectEmployeeID,
		BusinessUnitID:    req.BusinessUnitID,
		ApproverUserIDs:   req.ApproverUserIDs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// ListCases handles GET /api/cases
func (h *Handlers) ListCases(c *gin.Context) {
	resource := authz.Resource(c.Query("resource"))
	if resource == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "resource query parameter is required"})
		return
	}

	cases, err := h.caseService.ListCases(c.Request.Context(), actorID(c), resource)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: cases})
}

// GetCase handles GET /api/cases/:id
func (h *Handlers) GetCase(c *gin.Context) {
	id, ok := h.caseIDParam(c)
	if !ok {
		return
	}

	result, err := h.caseService.GetCase(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// DecideCase handles POST /api/cases/:id/decision
func (h *Handlers) DecideCase(c *gin.Context) {
	id, ok := h.caseIDParam(c)
	if !ok {
		return
	}

	var req DecideCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid decision payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.caseService.Decide(c.Request.Context(), actorID(c), id, routing.Decision(req.Decision), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ResubmitCase handles POST /api/cases/:id/resubmit
func (h *Handlers) ResubmitCase(c *gin.Context) {
	id, ok := h.caseIDParam(c)
	if !ok {
		return
	}

	var req ResubmitCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid resubmission payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.caseService.Resubmit(c.Request.Context(), actorID(c), id, req.ApproverUserIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// AcknowledgeCase handles POST /api/cases/:id/acknowledge
func (h *Handlers) AcknowledgeCase(c *gin.Context) {
	id, ok := h.caseIDParam(c)
	if !ok {
		return
	}

	result, err := h.caseService.Acknowledge(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CloseCase handles POST /api/cases/:id/close
func (h *Handlers) CloseCase(c *gin.Context) {
	id, ok := h.caseIDParam(c)
	if !ok {
		return
	}

	result, err := h.caseService.Close(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// VisibleEmployees handles GET /api/employees/visible
func (h *Handlers) VisibleEmployees(c *gin.Context) {
	ids, err := h.caseService.VisibleEmployees(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: ids})
}

// EligibleApprovers handles GET /api/approvers
func (h *Handlers) EligibleApprovers(c *gin.Context) {
	resource := authz.Resource(c.Query("resource"))
	subjectID := c.Query("subject_id")
	if resource == "" || subjectID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "resource and subject_id query parameters are required"})
		return
	}

	approvers, err := h.caseService.EligibleApprovers(c.Request.Context(), actorID(c), resource, subjectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: approvers})
}

// ExportCases handles GET /api/cases/export, streaming the case register
// workbook for the cases the actor can see.
func (h *Handlers) ExportCases(c *gin.Context) {
	resource := authz.Resource(c.Query("resource"))
	if resource == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "resource query parameter is required"})
		return
	}

	cases, err := h.caseService.ListCases(c.Request.Context(), actorID(c), resource)
	if err != nil {
		h.respondError(c, err)
		return
	}

	snap, err := h.dirService.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	workbook, err := h.exporter.Build(cases, snap)
	if err != nil {
		h.logger.Error("Failed to build case register", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to build export"})
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("case-register-%s-%s.xlsx", resource, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream case register", "error", err)
	}
}

func (h *Handlers) caseIDParam(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid case id"})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case routing.IsValidation(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, routing.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "not authorized"})
	case errors.Is(err, routing.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	case errors.Is(err, routing.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "the case was modified concurrently, retry"})
	case errors.Is(err, routing.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
