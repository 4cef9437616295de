package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated EventType = "issue_created"
	EventIssueUpdated EventType = "issue_updated"
	EventIssueDeleted EventType = "issue_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title  string             `json:"title"`
	Type   domain.IssueType   `json:"issue_type"`
	Impact domain.IssueImpact `json:"impact"`
	Status domain.IssueStatus `json:"status"`
}

// IssueUpdatedPayload payload.
type IssueUpdatedPayload struct {
	Title  string             `json:"title"`
	Status domain.IssueStatus `json:"status"`
}

// IssueDeletedPayload payload.
type IssueDeletedPayload struct {
	Title string `json:"title"`
}
