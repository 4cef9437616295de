package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/observability"
)

// Action identifies the mutation being mirrored.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// headerRow is the fixed 8-column layout of the mirror tab.
var headerRow = []string{
	"Title",
	"Type",
	"Description",
	"Impact",
	"Status",
	"Expected Fix Date",
	"Created By",
	"Updated By",
}

// ValuesAPI is the narrow slice of the spreadsheet API the mirror needs.
// The production implementation wraps the Google Sheets service.
type ValuesAPI interface {
	Get(ctx context.Context, readRange string) ([][]string, error)
	Append(ctx context.Context, writeRange string, row []string) error
	Update(ctx context.Context, writeRange string, row []string) error
	DeleteRows(ctx context.Context, startIndex, endIndex int64) error
}

// Mirror replicates issue mutations into an external spreadsheet, one way
// and best effort. Rows are keyed by title, which is not unique in the
// store; with duplicate titles the first matching row wins the scan.
type Mirror struct {
	api     ValuesAPI
	sheet   string
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewMirror builds a mirror over the given values API. A nil api produces a
// disabled mirror whose calls log and no-op; that is the deliberate degrade
// path when credentials are not configured.
func NewMirror(api ValuesAPI, sheetName string, logger *zap.Logger, metrics *observability.Metrics) *Mirror {
	if sheetName == "" {
		sheetName = "Issues"
	}
	return &Mirror{api: api, sheet: sheetName, logger: logger, metrics: metrics}
}

// Enabled reports whether the mirror has a backing spreadsheet.
func (m *Mirror) Enabled() bool {
	return m != nil && m.api != nil
}

// Init writes the fixed header row once if the tab has none yet. The
// check-then-write is not transactional; initialization runs once at process
// start so concurrent racers are not a practical concern.
func (m *Mirror) Init(ctx context.Context) error {
	if !m.Enabled() {
		m.logger.Info("sheets initialization skipped, credentials not configured")
		return nil
	}

	headerRange := fmt.Sprintf("%s!A1:H1", m.sheet)
	rows, err := m.api.Get(ctx, headerRange)
	if err != nil {
		m.logger.Error("sheets header check failed", zap.Error(err))
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	if err := m.api.Update(ctx, headerRange, headerRow); err != nil {
		m.logger.Error("sheets header write failed", zap.Error(err))
		return err
	}
	m.logger.Info("sheets header initialized")
	return nil
}

// SyncIssue replicates a single mutation. Errors are logged and returned to
// the caller; the primary store write is never rolled back on mirror failure.
func (m *Mirror) SyncIssue(ctx context.Context, issue *domain.Issue, action Action) error {
	if !m.Enabled() {
		m.logger.Info("sheets sync skipped, credentials not configured",
			zap.String("action", string(action)))
		return nil
	}

	err := m.sync(ctx, issue, action)
	m.metrics.RecordMirrorSync(string(action), err == nil)
	if err != nil {
		m.logger.Error("sheets sync failed",
			zap.String("action", string(action)),
			zap.String("issue_id", issue.ID),
			zap.Error(err))
	}
	return err
}

func (m *Mirror) sync(ctx context.Context, issue *domain.Issue, action Action) error {
	fullRange := fmt.Sprintf("%s!A:H", m.sheet)

	switch action {
	case ActionCreate:
		return m.api.Append(ctx, fullRange, issueRow(issue))

	case ActionUpdate:
		rows, err := m.api.Get(ctx, fullRange)
		if err != nil {
			return err
		}
		idx := matchRowByTitle(rows, issue.Title)
		if idx < 0 {
			// No row to overwrite; the update is dropped rather than
			// appended as a new row.
			m.logger.Warn("sheets update dropped, no row matches title",
				zap.String("title", issue.Title))
			return nil
		}
		rowRange := fmt.Sprintf("%s!A%d:H%d", m.sheet, idx+1, idx+1)
		return m.api.Update(ctx, rowRange, issueRow(issue))

	case ActionDelete:
		rows, err := m.api.Get(ctx, fullRange)
		if err != nil {
			return err
		}
		idx := matchRowByTitle(rows, issue.Title)
		if idx < 0 {
			return nil
		}
		return m.api.DeleteRows(ctx, int64(idx), int64(idx)+1)

	default:
		return fmt.Errorf("unknown mirror action %q", action)
	}
}

// matchRowByTitle scans top to bottom, skipping the header row, and returns
// the zero-based index of the first row whose title column exactly equals
// title, or -1.
func matchRowByTitle(rows [][]string, title string) int {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && rows[i][0] == title {
			return i
		}
	}
	return -1
}

// issueRow renders the 8 mirrored columns for an issue.
func issueRow(issue *domain.Issue) []string {
	fixDate := ""
	if issue.ExpectedFixDate != nil {
		fixDate = issue.ExpectedFixDate.Format("2006-01-02")
	}
	return []string{
		issue.Title,
		string(issue.Type),
		issue.Description,
		string(issue.Impact),
		string(issue.Status),
		fixDate,
		deref(issue.CreatedBy),
		deref(issue.UpdatedBy),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
