package v1

import (
	"net/http"
	"strconv"

	"hospital-recruitment-backend/internal/delivery/http/middleware"
	"hospital-recruitment-backend/internal/delivery/http/response"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// IntakeHandler serves the raw records of one origin table
type IntakeHandler struct {
	intakeUC domain.IntakeUsecase
}

// NewIntakeHandler registers the five record routes under path
func NewIntakeHandler(protected *gin.RouterGroup, path string, intakeUC domain.IntakeUsecase, submitLimit gin.HandlerFunc) {
	handler := &IntakeHandler{intakeUC: intakeUC}

	records := protected.Group(path)
	{
		records.GET("", handler.List)
		records.GET("/:id", handler.Get)
		records.POST("", submitLimit, handler.Submit)
		records.PUT("/:id", handler.Replace)
		records.PATCH("/:id/status", middleware.RequireAdmin(), handler.UpdateStatus)
	}
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListRecords godoc
// @Summary      List intake records
// @Description  Raw records of one intake form. Applicants only see their own; department admins their department.
// @Tags         intake
// @Produce      json
// @Param        id          query  string  false  "Record id"
// @Param        userId      query  string  false  "Submitting user id"
// @Param        lineId      query  string  false  "LINE id"
// @Param        email       query  string  false  "Applicant email"
// @Param        department  query  string  false  "Department"
// @Param        admin       query  bool    false  "Unscoped admin listing"
// @Param        limit       query  int     false  "Admin listing cap"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /resume-deposits [get]
// @Router       /application-forms [get]
// @Security     BearerAuth
func (h *IntakeHandler) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}

	records, err := h.intakeUC.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.List(c, http.StatusOK, "Records retrieved", records, len(records), filter.Limit)
}

// GetRecord godoc
// @Summary      Get an intake record
// @Tags         intake
// @Produce      json
// @Param        id   path      string  true  "Record id"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resume-deposits/{id} [get]
// @Router       /application-forms/{id} [get]
// @Security     BearerAuth
func (h *IntakeHandler) Get(c *gin.Context) {
	record, err := h.intakeUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Record retrieved", record)
}

// SubmitRecord godoc
// @Summary      Submit an intake form
// @Description  Stores a new submission, notifies HR and publishes a created event.
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        record  body      object  true  "Submitted document"
// @Success      201     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      429     {object}  response.Response
// @Router       /resume-deposits [post]
// @Router       /application-forms [post]
// @Security     BearerAuth
func (h *IntakeHandler) Submit(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		c.Error(err)
		return
	}

	created, err := h.intakeUC.Submit(c.Request.Context(), doc)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Record submitted", created)
}

// ReplaceRecord godoc
// @Summary      Replace an intake record
// @Description  Full-document update. Returns the stored record.
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        id      path      string  true  "Record id"
// @Param        record  body      object  true  "Full document"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /resume-deposits/{id} [put]
// @Router       /application-forms/{id} [put]
// @Security     BearerAuth
func (h *IntakeHandler) Replace(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		c.Error(err)
		return
	}

	updated, err := h.intakeUC.Replace(c.Request.Context(), c.Param("id"), doc)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Record saved", updated)
}

// UpdateRecordStatus godoc
// @Summary      Change the review status of a record (Admin only)
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        id      path      string         true  "Record id"
// @Param        status  body      StatusRequest  true  "pending, approved, rejected or hired"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Router       /resume-deposits/{id}/status [patch]
// @Router       /application-forms/{id}/status [patch]
// @Security     BearerAuth
func (h *IntakeHandler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("status is required"))
		return
	}

	updated, err := h.intakeUC.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status updated", updated)
}

func bindDocument(c *gin.Context) (domain.RawApplicantRecord, error) {
	var doc domain.RawApplicantRecord
	if err := c.ShouldBindJSON(&doc); err != nil || doc == nil {
		return nil, apperror.BadRequest("Request body must be a JSON object")
	}
	return doc, nil
}

// filterFromQuery reads the listing hints of the query string
func filterFromQuery(c *gin.Context) (domain.IntakeFilter, error) {
	limit, err := parseLimit(c)
	if err != nil {
		return domain.IntakeFilter{}, err
	}
	hints := domain.IdentityHints{
		ID:         c.Query("id"),
		UserID:     c.Query("userId"),
		LineID:     c.Query("lineId"),
		Email:      c.Query("email"),
		Department: c.Query("department"),
		Admin:      c.Query("admin") == "true",
	}
	return hints.Filter(limit), nil
}

func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperror.BadRequest("limit must be a positive number")
	}
	return limit, nil
}
