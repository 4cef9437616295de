package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

func newIssue(title string, status domain.IssueStatus) *domain.Issue {
	actor := "admin-a"
	return &domain.Issue{
		Title:       title,
		Type:        domain.IssueTypeIssue,
		Description: "some description",
		Impact:      domain.IssueImpactMedium,
		Status:      status,
		CreatedBy:   &actor,
		UpdatedBy:   &actor,
	}
}

func TestMemoryIssueCreateAssignsIdentityAndTimestamps(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIssueRepository()

	issue := newIssue("Crash on save", domain.IssueStatusOpen)
	require.NoError(t, repo.Create(ctx, issue))
	require.NotEmpty(t, issue.ID)

	stored, err := repo.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(stored.UpdatedAt))
	require.NotNil(t, stored.CreatedBy)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, *stored.CreatedBy, *stored.UpdatedBy)
}

func TestMemoryIssueGetUnknownReturnsNoRows(t *testing.T) {
	repo := NewMemoryIssueRepository()
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryIssueUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIssueRepository()

	issue := newIssue("Crash on save", domain.IssueStatusOpen)
	require.NoError(t, repo.Create(ctx, issue))
	before := issue.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	closed := domain.IssueStatusClosed
	updated, err := repo.Update(ctx, issue.ID, IssuePatch{Status: &closed}, "admin-b")
	require.NoError(t, err)

	assert.Equal(t, issue.Title, updated.Title)
	assert.Equal(t, issue.Type, updated.Type)
	assert.Equal(t, issue.Description, updated.Description)
	assert.Equal(t, issue.Impact, updated.Impact)
	assert.Equal(t, domain.IssueStatusClosed, updated.Status)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "admin-b", *updated.UpdatedBy)
	assert.True(t, updated.UpdatedAt.After(before))
}

func TestMemoryIssueEmptyPatchStillStampsWriter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIssueRepository()

	issue := newIssue("Crash on save", domain.IssueStatusOpen)
	require.NoError(t, repo.Create(ctx, issue))
	before := issue.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	updated, err := repo.Update(ctx, issue.ID, IssuePatch{}, "admin-b")
	require.NoError(t, err)
	assert.Equal(t, "admin-b", *updated.UpdatedBy)
	assert.True(t, updated.UpdatedAt.After(before))
}

func TestMemoryIssueUpdateClearsExpectedFixDate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIssueRepository()

	fixDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issue := newIssue("Crash on save", domain.IssueStatusOpen)
	issue.ExpectedFixDate = &fixDate
	require.NoError(t, repo.Create(ctx, issue))

	updated, err := repo.Update(ctx, issue.ID, IssuePatch{SetExpectedFixDate: true}, "admin-a")
	require.NoError(t, err)
	assert.Nil(t, updated.ExpectedFixDate)
}

func TestMemoryIssueUpdateUnknownReturnsNoRows(t *testing.T) {
	repo := NewMemoryIssueRepository()
	_, err := repo.Update(context.Background(), "nope", IssuePatch{}, "admin-a")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryIssueListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIssueRepository()

	require.NoError(t, repo.Create(ctx, newIssue("Login bug", domain.IssueStatusOpen)))
	require.NoError(t, repo.Create(ctx, newIssue("Dark mode", domain.IssueStatusClosed)))
	bug := newIssue("Another BUG here", domain.IssueStatusAssigned)
	bug.Type = domain.IssueTypeFeatureRequest
	require.NoError(t, repo.Create(ctx, bug))

	open := domain.IssueStatusOpen
	byStatus, err := repo.List(ctx, IssueFilter{Status: &open})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Login bug", byStatus[0].Title)

	feature := domain.IssueTypeFeatureRequest
	byType, err := repo.List(ctx, IssueFilter{Type: &feature})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Another BUG here", byType[0].Title)

	search := "bug"
	bySearch, err := repo.List(ctx, IssueFilter{Search: &search})
	require.NoError(t, err)
	require.Len(t, bySearch, 2)
	for _, issue := range bySearch {
		assert.Contains(t, []string{"Login bug", "Another BUG here"}, issue.Title)
	}
}

func TestMemoryIssueListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIssueRepository()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, newIssue(title, domain.IssueStatusOpen)))
	}

	all, err := repo.List(ctx, IssueFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)
	assert.Equal(t, "first", all[2].Title)
}

func TestMemoryIssueDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryIssueRepository()

	issue := newIssue("Crash on save", domain.IssueStatusOpen)
	require.NoError(t, repo.Create(ctx, issue))

	existed, err := repo.Delete(ctx, issue.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.Delete(ctx, issue.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &domain.User{
		Email:        "admin@test.com",
		PasswordHash: "hashed",
		Role:         domain.RoleAdmin,
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "admin@test.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "Admin@Test.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows, "email lookup is case-sensitive as stored")

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@test.com", byID.Email)
}
