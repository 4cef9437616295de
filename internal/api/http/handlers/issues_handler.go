package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// IssuesHandler serves the public browse endpoints and the authenticated
// mutation endpoints.
type IssuesHandler struct {
	service  *service.IssueService
	validate *validator.Validate
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService, validate: NewValidator()}
}

// ListIssues GET /api/issues. Public; actor fields are stripped.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	filter := parseIssueQuery(c)
	issues, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.PublicIssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, dto.NewPublicIssueResponse(&issues[i]))
	}
	return c.JSON(items)
}

// GetIssue GET /api/issues/:id. Public; actor fields are stripped.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	issue, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPublicIssueResponse(issue))
}

// CreateIssue POST /api/issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	fixDate, err := parseDate(req.ExpectedFixDate)
	if err != nil {
		return apperrors.NewValidationError("invalid expectedFixDate", map[string]any{"fields": []string{"expectedFixDate"}})
	}

	issue, err := h.service.Create(c.Context(), service.IssueCreateInput{
		Title:           req.Title,
		Type:            domain.IssueType(req.Type),
		Description:     req.Description,
		Impact:          domain.IssueImpact(req.Impact),
		Status:          domain.IssueStatus(req.Status),
		ExpectedFixDate: fixDate,
	}, principal.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewIssueResponse(issue))
}

// UpdateIssue PUT /api/issues/:id. Partial replace: absent fields keep
// their stored values.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	patch, err := buildPatch(req)
	if err != nil {
		return apperrors.NewValidationError("invalid expectedFixDate", map[string]any{"fields": []string{"expectedFixDate"}})
	}

	issue, err := h.service.Update(c.Context(), c.Params("id"), patch, principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueResponse(issue))
}

// DeleteIssue DELETE /api/issues/:id.
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("access token required")
	}

	if err := h.service.Delete(c.Context(), c.Params("id"), principal.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseIssueQuery(c *fiber.Ctx) repository.IssueFilter {
	filter := repository.IssueFilter{}
	if status := c.Query("status"); status != "" {
		s := domain.IssueStatus(status)
		filter.Status = &s
	}
	if typ := c.Query("type"); typ != "" {
		t := domain.IssueType(typ)
		filter.Type = &t
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	return filter
}

func buildPatch(req dto.UpdateIssueRequest) (repository.IssuePatch, error) {
	patch := repository.IssuePatch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Type != nil {
		t := domain.IssueType(*req.Type)
		patch.Type = &t
	}
	if req.Impact != nil {
		i := domain.IssueImpact(*req.Impact)
		patch.Impact = &i
	}
	if req.Status != nil {
		s := domain.IssueStatus(*req.Status)
		patch.Status = &s
	}
	if req.ExpectedFixDate != nil {
		patch.SetExpectedFixDate = true
		if *req.ExpectedFixDate != "" {
			fixDate, err := parseDate(req.ExpectedFixDate)
			if err != nil {
				return repository.IssuePatch{}, err
			}
			patch.ExpectedFixDate = fixDate
		}
	}
	return patch, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339; nil or empty means no date.
func parseDate(val *string) (*time.Time, error) {
	if val == nil || *val == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", *val); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, *val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
