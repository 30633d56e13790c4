package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/pkg/apperror"
	"hospital-recruitment-backend/pkg/audit"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	user *domain.StaffUser
	err  error
}

func (s stubAuth) GetCurrentUser(_ context.Context, _ string) (*domain.StaffUser, error) {
	return s.user, s.err
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func principalRouter(authUC domain.AuthUsecase) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(nil, "secret", authUC))
	r.GET("/me", func(c *gin.Context) {
		p, _ := domain.PrincipalFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "department": p.Department, "user": p.UserID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("Missing token is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		principalRouter(stubAuth{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Staff role and department come from the database", func(t *testing.T) {
		uc := stubAuth{user: &domain.StaffUser{ID: "d-1", Role: domain.RoleDepartmentAdmin, Department: "ICU"}}
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signHS256(t, "secret", jwt.MapClaims{
			"sub": "d-1", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
		}))
		w := httptest.NewRecorder()

		principalRouter(uc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"role":"department_admin","department":"ICU","user":"d-1"}`, w.Body.String())
	})

	t.Run("Unknown subject becomes an applicant", func(t *testing.T) {
		uc := stubAuth{err: apperror.NotFound("User not found")}
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signHS256(t, "secret", jwt.MapClaims{"sub": "u-1"}))
		w := httptest.NewRecorder()

		principalRouter(uc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"role":"applicant","department":"","user":"u-1"}`, w.Body.String())
	})

	t.Run("Wrong signature is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signHS256(t, "other", jwt.MapClaims{"sub": "u-1"}))
		w := httptest.NewRecorder()

		principalRouter(stubAuth{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"app error keeps its status", apperror.Forbidden("no"), http.StatusForbidden},
		{"not found sentinel", domain.ErrNotFound, http.StatusNotFound},
		{"all sources failed", domain.ErrAllSourcesFailed, http.StatusBadGateway},
		{"anything else is internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestID(), ErrorHandler())
			r.GET("/", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://hr.example.org"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("Allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://hr.example.org")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://hr.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Unknown origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimitInMemory(t *testing.T) {
	cfg := RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:",
		KeyFunc:   func(c *gin.Context) string { return "fixed" },
	}
	r := gin.New()
	r.Use(RateLimitMiddleware(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitAuditsRejections(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := SubmissionRateLimitConfig(audit.NewWithZap(zap.New(core)))
	cfg.Limit = 1
	cfg.KeyPrefix = "rl:test-audit:"

	r := gin.New()
	r.Use(func(c *gin.Context) {
		p := domain.Principal{UserID: "u-42", Role: domain.RoleApplicant}
		c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), p))
		c.Next()
	})
	r.POST("/submit", RateLimitMiddleware(cfg), func(c *gin.Context) { c.Status(http.StatusCreated) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/submit", nil))
	}

	entries := logs.FilterMessage(string(audit.ActionRateLimited)).All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "u-42", fields["actor_id"])
		assert.Equal(t, domain.RoleApplicant, fields["actor_role"])
	}
}
