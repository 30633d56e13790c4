package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hospital-recruitment-backend/internal/delivery/http/response"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/pkg/apperror"
	"hospital-recruitment-backend/pkg/auth"
	"hospital-recruitment-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the bearer token and resolves the caller.
// Subjects without a staff_users row are treated as applicants.
func AuthMiddleware(jwksProvider *auth.Provider, jwtSecret string, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				if jwtSecret == "" {
					return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
				}
				return []byte(jwtSecret), nil
			}
			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				return jwksProvider.KeyFunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			logger.Log.Debug("Token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		lineID, _ := claims["line_id"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		principal := domain.Principal{UserID: sub, Email: email, LineID: lineID, Role: domain.RoleApplicant}

		// Role and department come from the database, never from the token
		lookupCtx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
		user, err := authUC.GetCurrentUser(lookupCtx, sub)
		var appErr *apperror.AppError
		switch {
		case err == nil:
			principal.Role = user.Role
			principal.Department = user.Department
			if principal.Email == "" {
				principal.Email = user.Email
			}
			if principal.LineID == "" {
				principal.LineID = user.LineID
			}
		case errors.As(err, &appErr) && appErr.Code == http.StatusNotFound:
			// applicant without a staff account
		default:
			logger.Log.Error("Failed to load staff user", "user_id", sub, "error", err)
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}
		if principal.Role == "" {
			principal.Role = domain.RoleApplicant
		}

		c.Set(string(domain.KeyUserID), principal.UserID)
		c.Set(string(domain.KeyUserEmail), principal.Email)
		c.Set(string(domain.KeyUserRole), principal.Role)
		c.Set(string(domain.KeyLineID), principal.LineID)
		c.Set(string(domain.KeyDepartment), principal.Department)
		c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), principal))

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	// SSE clients (EventSource) cannot set headers
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// RequireAdmin allows admins and department admins only
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := domain.PrincipalFromContext(c.Request.Context())
		if !ok || !p.IsAdmin() {
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
