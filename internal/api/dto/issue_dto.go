package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateIssueRequest payload. Dates accept YYYY-MM-DD or RFC3339.
type CreateIssueRequest struct {
	Title           string  `json:"title" validate:"required"`
	Type            string  `json:"type" validate:"required,oneof=issue feature-request"`
	Description     string  `json:"description" validate:"required"`
	Impact          string  `json:"impact" validate:"required,oneof=Low Medium High Critical"`
	Status          string  `json:"status" validate:"required,oneof=open assigned closed"`
	ExpectedFixDate *string `json:"expectedFixDate"`
}

// UpdateIssueRequest carries a partial update; absent fields keep their
// stored values. An empty expectedFixDate clears the date.
type UpdateIssueRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1"`
	Type            *string `json:"type" validate:"omitempty,oneof=issue feature-request"`
	Description     *string `json:"description" validate:"omitempty,min=1"`
	Impact          *string `json:"impact" validate:"omitempty,oneof=Low Medium High Critical"`
	Status          *string `json:"status" validate:"omitempty,oneof=open assigned closed"`
	ExpectedFixDate *string `json:"expectedFixDate"`
}

// IssueResponse is the full record returned to authenticated admins.
type IssueResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Type            string     `json:"type"`
	Description     string     `json:"description"`
	Impact          string     `json:"impact"`
	Status          string     `json:"status"`
	ExpectedFixDate *time.Time `json:"expectedFixDate"`
	CreatedBy       *string    `json:"createdBy"`
	UpdatedBy       *string    `json:"updatedBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// PublicIssueResponse strips the actor references for unauthenticated
// readers.
type PublicIssueResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Type            string     `json:"type"`
	Description     string     `json:"description"`
	Impact          string     `json:"impact"`
	Status          string     `json:"status"`
	ExpectedFixDate *time.Time `json:"expectedFixDate"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewIssueResponse maps a domain issue to the full response.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:              issue.ID,
		Title:           issue.Title,
		Type:            string(issue.Type),
		Description:     issue.Description,
		Impact:          string(issue.Impact),
		Status:          string(issue.Status),
		ExpectedFixDate: issue.ExpectedFixDate,
		CreatedBy:       issue.CreatedBy,
		UpdatedBy:       issue.UpdatedBy,
		CreatedAt:       issue.CreatedAt,
		UpdatedAt:       issue.UpdatedAt,
	}
}

// NewPublicIssueResponse maps a domain issue to the public field subset.
func NewPublicIssueResponse(issue *domain.Issue) PublicIssueResponse {
	return PublicIssueResponse{
		ID:              issue.ID,
		Title:           issue.Title,
		Type:            string(issue.Type),
		Description:     issue.Description,
		Impact:          string(issue.Impact),
		Status:          string(issue.Status),
		ExpectedFixDate: issue.ExpectedFixDate,
		CreatedAt:       issue.CreatedAt,
		UpdatedAt:       issue.UpdatedAt,
	}
}
