package usecase

import (
	"context"
	"errors"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.StaffUserRepository
}

func NewAuthUsecase(userRepo domain.StaffUserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// GetCurrentUser returns the staff account of the authenticated caller
func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.StaffUser, error) {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if p, found := domain.PrincipalFromContext(ctx); found {
		ctxUserID, ok = p.UserID, true
	}
	if !ok || ctxUserID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if ctxUserID != id {
		return nil, apperror.Forbidden("You can only view your own account")
	}

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
