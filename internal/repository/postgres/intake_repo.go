package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/reconcile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var intakeTables = map[domain.IntakeKind]string{
	domain.IntakeResumeDeposit:   "resume_deposits",
	domain.IntakeApplicationForm: "application_forms",
}

// Keys owned by the table columns; stripped from the stored document and stamped back on read.
var managedKeys = []string{"id", "status", "createdAt", "updatedAt"}

const intakeColumns = `id, status, data, created_at, updated_at`

type intakeRepo struct {
	db    *pgxpool.Pool
	kind  domain.IntakeKind
	table string
}

// NewIntakeRepository creates the repository of one origin table
func NewIntakeRepository(db *pgxpool.Pool, kind domain.IntakeKind) domain.IntakeRepository {
	table, ok := intakeTables[kind]
	if !ok {
		panic(fmt.Sprintf("postgres: unknown intake kind %q", kind))
	}
	return &intakeRepo{db: db, kind: kind, table: table}
}

// List returns records matching filter, newest first
func (r *intakeRepo) List(ctx context.Context, filter domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
	query, args, err := buildListQuery(r.table, filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.RawApplicantRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *intakeRepo) GetByID(ctx context.Context, id string) (domain.RawApplicantRecord, error) {
	query := `SELECT ` + intakeColumns + ` FROM ` + r.table + ` WHERE id = $1`
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// Create inserts a new submission with a fresh id
func (r *intakeRepo) Create(ctx context.Context, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	cols := extractColumns(doc)
	status := doc.String("status")
	if status == "" {
		status = defaultStatus(r.kind)
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO ` + r.table + ` (id, user_id, line_id, email, department, status, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + intakeColumns

	return scanRecord(r.db.QueryRow(ctx, query,
		uuid.NewString(), cols.userID, cols.lineID, cols.email, cols.department,
		status, data, time.Now().UTC(),
	))
}

// Replace overwrites the whole document. The status column is left untouched;
// status changes go through UpdateStatus.
func (r *intakeRepo) Replace(ctx context.Context, id string, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	cols := extractColumns(doc)
	data, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE ` + r.table + `
		SET user_id = $2, line_id = $3, email = $4, department = $5, data = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + intakeColumns

	rec, err := scanRecord(r.db.QueryRow(ctx, query,
		id, cols.userID, cols.lineID, cols.email, cols.department, data, time.Now().UTC(),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

func (r *intakeRepo) UpdateStatus(ctx context.Context, id string, status string) (domain.RawApplicantRecord, error) {
	query := `UPDATE ` + r.table + ` SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + intakeColumns
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id, status, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// buildListQuery turns a filter into SQL against table
func buildListQuery(table string, filter domain.IntakeFilter) (string, []any, error) {
	var where string
	var args []any

	switch filter.Scope {
	case domain.ScopeID:
		where, args = "WHERE id = $1", []any{filter.Value}
	case domain.ScopeUserID:
		where, args = "WHERE user_id = $1", []any{filter.Value}
	case domain.ScopeLineID:
		where, args = "WHERE line_id = $1", []any{filter.Value}
	case domain.ScopeEmail:
		where, args = "WHERE lower(email) = lower($1)", []any{filter.Value}
	case domain.ScopeDepartment:
		where, args = "WHERE department = $1", []any{filter.Value}
	case domain.ScopeAdmin:
	default:
		return "", nil, fmt.Errorf("postgres: unsupported filter scope %q", filter.Scope)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + intakeColumns + ` FROM ` + table)
	if where != "" {
		b.WriteString(" " + where)
	}
	b.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args, nil
}

type indexedColumns struct {
	userID, lineID, email, department *string
}

// extractColumns copies the correlation keys out of the document so listings can filter on them
func extractColumns(doc domain.RawApplicantRecord) indexedColumns {
	kind := reconcile.Classify(doc).Kind()
	return indexedColumns{
		userID:     nullable(doc.String("userId")),
		lineID:     nullable(doc.String("lineId")),
		email:      nullable(strings.ToLower(strings.TrimSpace(doc.String("email")))),
		department: nullable(reconcile.ResolveDepartment(doc, kind)),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func encodeDocument(doc domain.RawApplicantRecord) ([]byte, error) {
	stored := make(map[string]any, len(doc))
	for k, v := range doc {
		stored[k] = v
	}
	for _, k := range managedKeys {
		delete(stored, k)
	}
	return json.Marshal(stored)
}

func scanRecord(row pgx.Row) (domain.RawApplicantRecord, error) {
	var (
		id, status           string
		data                 []byte
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &status, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec := domain.RawApplicantRecord{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("postgres: corrupt document %s: %w", id, err)
		}
	}
	rec["id"] = id
	rec["status"] = status
	rec["createdAt"] = createdAt.Format(time.RFC3339)
	rec["updatedAt"] = updatedAt.Format(time.RFC3339)
	return rec, nil
}

// defaultStatus is the initial status in each table's own vocabulary
func defaultStatus(kind domain.IntakeKind) string {
	if kind == domain.IntakeResumeDeposit {
		return "PENDING"
	}
	return domain.IntakeStatusPending
}
