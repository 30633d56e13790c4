package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hospital-recruitment-backend/internal/delivery/http/middleware"
	"hospital-recruitment-backend/internal/delivery/http/response"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/pkg/apperror"
	"hospital-recruitment-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const sseHeartbeat = 25 * time.Second

type ApplicantHandler struct {
	applicantUC  domain.ApplicantUsecase
	events       domain.EventSubscriber
	dedupDefault bool
}

func NewApplicantHandler(protected *gin.RouterGroup, applicantUC domain.ApplicantUsecase, events domain.EventSubscriber, dedupDefault bool) {
	handler := &ApplicantHandler{applicantUC: applicantUC, events: events, dedupDefault: dedupDefault}

	applicants := protected.Group("/applicants")
	{
		applicants.GET("", handler.List)
		applicants.GET("/events", middleware.RequireAdmin(), handler.Events)
	}
}

// ListApplicants godoc
// @Summary      Reconciled applicant listing
// @Description  Resume deposits and application forms merged into one normalized shape.
// @Description  Applicants get their own records; admins get the capped listing or a department.
// @Tags         applicants
// @Produce      json
// @Param        id          query  string  false  "Record id (admins)"
// @Param        department  query  string  false  "Department (admins)"
// @Param        limit       query  int     false  "Listing cap"
// @Param        dedup       query  bool    false  "Drop repeated record ids"
// @Success      200  {object}  response.Response{data=domain.ReconcileResult}
// @Failure      502  {object}  response.Response
// @Router       /applicants [get]
// @Security     BearerAuth
func (h *ApplicantHandler) List(c *gin.Context) {
	p, ok := domain.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	limit, err := parseLimit(c)
	if err != nil {
		c.Error(err)
		return
	}
	dedup := h.dedupDefault
	if raw := c.Query("dedup"); raw != "" {
		if dedup, err = strconv.ParseBool(raw); err != nil {
			c.Error(apperror.BadRequest("dedup must be true or false"))
			return
		}
	}

	hints := hintsFor(p, c.Query("id"), c.Query("department"))
	result, err := h.applicantUC.Reconcile(c.Request.Context(), hints, domain.ReconcileOptions{DedupByID: dedup, Limit: limit})
	if err != nil {
		if errors.Is(err, domain.ErrAllSourcesFailed) {
			c.Error(apperror.BadGateway("failed to load applicants", err))
			return
		}
		c.Error(err)
		return
	}

	if p.Role == domain.RoleDepartmentAdmin {
		result.Applicants = onlyDepartment(result.Applicants, p.Department)
	}

	response.Success(c, http.StatusOK, "Applicants retrieved", result)
}

// hintsFor builds the lookup hints a caller is entitled to.
// Admin hints never carry the session identity; applicants only get it.
func hintsFor(p domain.Principal, id, department string) domain.IdentityHints {
	switch p.Role {
	case domain.RoleAdmin:
		return domain.IdentityHints{ID: id, Department: department, Admin: department == ""}
	case domain.RoleDepartmentAdmin:
		return domain.IdentityHints{ID: id, Department: p.Department}
	default:
		return domain.IdentityHints{UserID: p.UserID, LineID: p.LineID, Email: p.Email, SelfService: true}
	}
}

func onlyDepartment(apps []domain.NormalizedApplicant, department string) []domain.NormalizedApplicant {
	out := make([]domain.NormalizedApplicant, 0, len(apps))
	for _, a := range apps {
		if department != "" && strings.EqualFold(a.Department, department) {
			out = append(out, a)
		}
	}
	return out
}

// ApplicantEvents godoc
// @Summary      Applicant change stream (Admin only)
// @Description  Server-sent events emitted when a record is created, saved or has its status changed.
// @Tags         applicants
// @Produce      text/event-stream
// @Success      200
// @Router       /applicants/events [get]
// @Security     BearerAuth
func (h *ApplicantHandler) Events(c *gin.Context) {
	p, _ := domain.PrincipalFromContext(c.Request.Context())

	events, cancel, err := h.events.Subscribe(c.Request.Context())
	if err != nil {
		c.Error(apperror.New(http.StatusServiceUnavailable, "Event stream unavailable", err))
		return
	}
	defer cancel()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	logger.Log.Debug("Event stream opened", "user_id", p.UserID)
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if p.Role == domain.RoleDepartmentAdmin && !strings.EqualFold(ev.Department, p.Department) {
				return true
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
	logger.Log.Debug("Event stream closed", "user_id", p.UserID)
}
