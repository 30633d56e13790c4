package postgres

import (
	"context"
	"errors"

	"hospital-recruitment-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type staffUserRepo struct {
	db *pgxpool.Pool
}

func NewStaffUserRepository(db *pgxpool.Pool) domain.StaffUserRepository {
	return &staffUserRepo{db: db}
}

const staffUserColumns = `id, email, COALESCE(line_id, ''), role, COALESCE(department, ''), created_at, updated_at`

func (r *staffUserRepo) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	query := `SELECT ` + staffUserColumns + ` FROM staff_users WHERE id = $1`
	var u domain.StaffUser
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.LineID, &u.Role, &u.Department, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByDepartments returns department admins attached to any of departments
func (r *staffUserRepo) ListByDepartments(ctx context.Context, departments []string) ([]domain.StaffUser, error) {
	if len(departments) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + staffUserColumns + `
		FROM staff_users
		WHERE role = $1 AND department = ANY($2)
		ORDER BY email`

	rows, err := r.db.Query(ctx, query, domain.RoleDepartmentAdmin, pq.Array(departments))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.StaffUser
	for rows.Next() {
		var u domain.StaffUser
		if err := rows.Scan(&u.ID, &u.Email, &u.LineID, &u.Role, &u.Department, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
