package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// IssueFilter captures public listing parameters. All predicates are ANDed.
type IssueFilter struct {
	Status *domain.IssueStatus
	Type   *domain.IssueType
	Search *string
}

// IssuePatch carries a partial update; nil fields keep their stored value.
// ExpectedFixDate is applied only when SetExpectedFixDate is true, so the
// date can be cleared back to null.
type IssuePatch struct {
	Title              *string
	Type               *domain.IssueType
	Description        *string
	Impact             *domain.IssueImpact
	Status             *domain.IssueStatus
	ExpectedFixDate    *time.Time
	SetExpectedFixDate bool
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, id string, patch IssuePatch, updatedBy string) (*domain.Issue, error)
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository returns a Postgres-backed implementation.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, title, type, description, impact, status, expected_fix_date,
               created_by, updated_by, created_at, updated_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, type, description, impact, status, expected_fix_date, created_by, updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Type,
		issue.Description,
		issue.Impact,
		issue.Status,
		issue.ExpectedFixDate,
		issue.CreatedBy,
		issue.UpdatedBy,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) Update(ctx context.Context, id string, patch IssuePatch, updatedBy string) (*domain.Issue, error) {
	sets := []string{}
	args := []any{}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title=$%d", len(args)))
	}
	if patch.Type != nil {
		args = append(args, *patch.Type)
		sets = append(sets, fmt.Sprintf("type=$%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if patch.Impact != nil {
		args = append(args, *patch.Impact)
		sets = append(sets, fmt.Sprintf("impact=$%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if patch.SetExpectedFixDate {
		args = append(args, patch.ExpectedFixDate)
		sets = append(sets, fmt.Sprintf("expected_fix_date=$%d", len(args)))
	}

	// Even an empty patch stamps the last writer.
	args = append(args, updatedBy)
	sets = append(sets, fmt.Sprintf("updated_by=$%d", len(args)))
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE issues SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), issueColumns)

	return r.fetchSingle(ctx, query, args...)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id=$1`, issueColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Issue, error) {
	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&issue.ID,
		&issue.Title,
		&issue.Type,
		&issue.Description,
		&issue.Impact,
		&issue.Status,
		&issue.ExpectedFixDate,
		&issue.CreatedBy,
		&issue.UpdatedBy,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+*filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY created_at DESC`,
		issueColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.Title,
			&issue.Type,
			&issue.Description,
			&issue.Impact,
			&issue.Status,
			&issue.ExpectedFixDate,
			&issue.CreatedBy,
			&issue.UpdatedBy,
			&issue.CreatedAt,
			&issue.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
