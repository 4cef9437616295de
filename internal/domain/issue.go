package domain

import "time"

// IssueType differentiates bugs from feature requests.
type IssueType string

const (
	IssueTypeIssue          IssueType = "issue"
	IssueTypeFeatureRequest IssueType = "feature-request"
)

// IssueImpact enumerates reported severity.
type IssueImpact string

const (
	IssueImpactLow      IssueImpact = "Low"
	IssueImpactMedium   IssueImpact = "Medium"
	IssueImpactHigh     IssueImpact = "High"
	IssueImpactCritical IssueImpact = "Critical"
)

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusOpen     IssueStatus = "open"
	IssueStatusAssigned IssueStatus = "assigned"
	IssueStatusClosed   IssueStatus = "closed"
)

// Issue is the tracked unit of work. Title is not unique; the spreadsheet
// mirror keys rows by it anyway.
type Issue struct {
	ID              string
	Title           string
	Type            IssueType
	Description     string
	Impact          IssueImpact
	Status          IssueStatus
	ExpectedFixDate *time.Time
	CreatedBy       *string
	UpdatedBy       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
