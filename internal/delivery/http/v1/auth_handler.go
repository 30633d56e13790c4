package v1

import (
	"net/http"

	"hospital-recruitment-backend/internal/delivery/http/response"
	"hospital-recruitment-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(protected *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

// Me godoc
// @Summary      Current caller
// @Description  The staff account of the caller, or the applicant identity taken from the token.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	p, _ := domain.PrincipalFromContext(c.Request.Context())

	if p.Role == domain.RoleApplicant {
		response.Success(c, http.StatusOK, "User details", gin.H{
			"user": domain.StaffUser{ID: p.UserID, Email: p.Email, LineID: p.LineID, Role: p.Role},
		})
		return
	}

	user, err := h.authUC.GetCurrentUser(c.Request.Context(), p.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User details", gin.H{"user": user})
}
