package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/sheets"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// IssueService coordinates issue workflows: store writes first, then the
// synchronous best-effort spreadsheet mirror within the same request.
type IssueService struct {
	issues     repository.IssueRepository
	mirror     *sheets.Mirror
	cache      *listCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	Mirror      *sheets.Mirror
	RedisClient *redis.Client
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// IssueCreateInput describes issue creation payload.
type IssueCreateInput struct {
	Title           string
	Type            domain.IssueType
	Description     string
	Impact          domain.IssueImpact
	Status          domain.IssueStatus
	ExpectedFixDate *time.Time
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		mirror:     deps.Mirror,
		cache:      newListCache(deps.RedisClient, deps.Logger),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// List returns issues matching all provided predicates, newest first.
func (s *IssueService) List(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	if cached, ok := s.cache.get(ctx, filter); ok {
		return cached, nil
	}

	issues, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.set(ctx, filter, issues)
	return issues, nil
}

// Get returns a single issue by id.
func (s *IssueService) Get(ctx context.Context, id string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return issue, nil
}

// Create validates required fields, stores the issue stamped with the actor,
// then mirrors the new row. A mirror failure surfaces to the caller but the
// stored issue stands.
func (s *IssueService) Create(ctx context.Context, input IssueCreateInput, actorID string) (*domain.Issue, error) {
	if missing := missingFields(input); len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	issue := &domain.Issue{
		Title:           input.Title,
		Type:            input.Type,
		Description:     input.Description,
		Impact:          input.Impact,
		Status:          input.Status,
		ExpectedFixDate: input.ExpectedFixDate,
		CreatedBy:       &actorID,
		UpdatedBy:       &actorID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.invalidate(ctx)
	s.publish(ctx, events.EventIssueCreated, issue, actorID, events.IssueCreatedPayload{
		Title:  issue.Title,
		Type:   issue.Type,
		Impact: issue.Impact,
		Status: issue.Status,
	})

	if err := s.mirror.SyncIssue(ctx, issue, sheets.ActionCreate); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return issue, nil
}

// Update merges the patch onto the stored record; untouched fields keep
// their values and the last writer is stamped even for an empty patch.
func (s *IssueService) Update(ctx context.Context, id string, patch repository.IssuePatch, actorID string) (*domain.Issue, error) {
	issue, err := s.issues.Update(ctx, id, patch, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", nil)
		}
		return nil, apperrors.MapError(err)
	}
	s.cache.invalidate(ctx)
	s.publish(ctx, events.EventIssueUpdated, issue, actorID, events.IssueUpdatedPayload{
		Title:  issue.Title,
		Status: issue.Status,
	})

	if err := s.mirror.SyncIssue(ctx, issue, sheets.ActionUpdate); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return issue, nil
}

// Delete removes the record, then its mirrored row.
func (s *IssueService) Delete(ctx context.Context, id string, actorID string) error {
	// The mirror needs the title after the row is gone from the store.
	issue, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	existed, err := s.issues.Delete(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !existed {
		return apperrors.NewNotFound("issue", nil)
	}
	s.cache.invalidate(ctx)
	s.publish(ctx, events.EventIssueDeleted, issue, actorID, events.IssueDeletedPayload{
		Title: issue.Title,
	})

	if err := s.mirror.SyncIssue(ctx, issue, sheets.ActionDelete); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *IssueService) publish(ctx context.Context, eventType events.EventType, issue *domain.Issue, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		IssueID:   issue.ID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func missingFields(input IssueCreateInput) []string {
	missing := []string{}
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if input.Type == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "description")
	}
	if input.Impact == "" {
		missing = append(missing, "impact")
	}
	if input.Status == "" {
		missing = append(missing, "status")
	}
	return missing
}
