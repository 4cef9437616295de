package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/persistence"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/service"
	"github.com/spec-kit/issue-tracker/internal/sheets"
)

type apiTestEnv struct {
	app   *fiber.App
	sheet *sheets.MemoryValuesAPI
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	issueRepo := repository.NewMemoryIssueRepository()
	userRepo := repository.NewMemoryUserRepository()

	sheet := sheets.NewMemoryValuesAPI()
	mirror := sheets.NewMirror(sheet, "Issues", logger, metrics)
	require.NoError(t, mirror.Init(context.Background()))

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:    "test-secret",
		TokenTTLDays: 7,
		BcryptCost:   4,
	}, userRepo, logger)

	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo: issueRepo,
		Mirror:    mirror,
		Logger:    logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("issue-tracker", "test", &persistence.Postgres{}, &persistence.Redis{}, mirror),
		Auth:           handlers.NewAuthHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})

	return &apiTestEnv{app: app, sheet: sheet}
}

func (e *apiTestEnv) request(t *testing.T, method, path string, body any, token string) *nethttp.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeJSONList(t *testing.T, resp *nethttp.Response) []map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *apiTestEnv) registerAdmin(t *testing.T, email string) string {
	t.Helper()

	resp := e.request(t, nethttp.MethodPost, "/api/auth/register", fiber.Map{
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	body := decodeJSON(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func validIssuePayload(title string) fiber.Map {
	return fiber.Map{
		"title":       title,
		"type":        "issue",
		"description": "crashes every time",
		"impact":      "High",
		"status":      "open",
	}
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	env := newAPITestEnv(t)
	token := env.registerAdmin(t, "ada@example.com")

	resp := env.request(t, nethttp.MethodGet, "/api/auth/user", nil, token)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	profile := decodeJSON(t, resp)
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.Equal(t, "admin", profile["role"])

	resp = env.request(t, nethttp.MethodGet, "/api/auth/user", nil, "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, nethttp.MethodGet, "/api/auth/user", nil, "garbage")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestLoginErrorsAreGeneric(t *testing.T) {
	env := newAPITestEnv(t)
	env.registerAdmin(t, "ada@example.com")

	wrongPwd := env.request(t, nethttp.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "wrong",
	}, "")
	require.Equal(t, nethttp.StatusUnauthorized, wrongPwd.StatusCode)

	noAccount := env.request(t, nethttp.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "nobody@example.com",
		"password": "whatever",
	}, "")
	require.Equal(t, nethttp.StatusUnauthorized, noAccount.StatusCode)

	assert.Equal(t, decodeJSON(t, wrongPwd), decodeJSON(t, noAccount))
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	env := newAPITestEnv(t)
	env.registerAdmin(t, "ada@example.com")

	resp := env.request(t, nethttp.MethodPost, "/api/auth/register", fiber.Map{
		"email":    "ada@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestIssueCrudFlow(t *testing.T) {
	env := newAPITestEnv(t)
	token := env.registerAdmin(t, "ada@example.com")

	resp := env.request(t, nethttp.MethodPost, "/api/issues", validIssuePayload("Crash on save"), token)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	created := decodeJSON(t, resp)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotEmpty(t, created["createdBy"])

	resp = env.request(t, nethttp.MethodPut, "/api/issues/"+id, fiber.Map{
		"status":          "assigned",
		"expectedFixDate": "2025-01-01",
	}, token)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	updated := decodeJSON(t, resp)
	assert.Equal(t, "assigned", updated["status"])
	assert.Equal(t, "Crash on save", updated["title"])

	rows := env.sheet.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "assigned", rows[1][4])
	assert.Equal(t, "2025-01-01", rows[1][5])

	resp = env.request(t, nethttp.MethodDelete, "/api/issues/"+id, nil, token)
	require.Equal(t, nethttp.StatusNoContent, resp.StatusCode)
	assert.Len(t, env.sheet.Rows(), 1)

	resp = env.request(t, nethttp.MethodGet, "/api/issues/"+id, nil, "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestPublicEndpointsStripActorFields(t *testing.T) {
	env := newAPITestEnv(t)
	token := env.registerAdmin(t, "ada@example.com")

	resp := env.request(t, nethttp.MethodPost, "/api/issues", validIssuePayload("Crash on save"), token)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	created := decodeJSON(t, resp)
	id, _ := created["id"].(string)

	resp = env.request(t, nethttp.MethodGet, "/api/issues", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	list := decodeJSONList(t, resp)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "createdBy")
	assert.NotContains(t, list[0], "updatedBy")

	resp = env.request(t, nethttp.MethodGet, "/api/issues/"+id, nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	single := decodeJSON(t, resp)
	assert.NotContains(t, single, "createdBy")
	assert.NotContains(t, single, "updatedBy")
}

func TestIssueListQueryFilters(t *testing.T) {
	env := newAPITestEnv(t)
	token := env.registerAdmin(t, "ada@example.com")

	resp := env.request(t, nethttp.MethodPost, "/api/issues", validIssuePayload("Login bug"), token)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	feature := validIssuePayload("Dark mode")
	feature["type"] = "feature-request"
	feature["status"] = "closed"
	resp = env.request(t, nethttp.MethodPost, "/api/issues", feature, token)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, nethttp.MethodGet, "/api/issues?status=open", nil, "")
	list := decodeJSONList(t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Login bug", list[0]["title"])

	resp = env.request(t, nethttp.MethodGet, "/api/issues?type=feature-request", nil, "")
	list = decodeJSONList(t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Dark mode", list[0]["title"])

	resp = env.request(t, nethttp.MethodGet, "/api/issues?search=BUG", nil, "")
	list = decodeJSONList(t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Login bug", list[0]["title"])
}

func TestMutationsRequireBearerToken(t *testing.T) {
	env := newAPITestEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/issues", validIssuePayload("Crash on save"), "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, nethttp.MethodPost, "/api/issues", validIssuePayload("Crash on save"), "garbage")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestCreateIssueValidationEnumeratesFields(t *testing.T) {
	env := newAPITestEnv(t)
	token := env.registerAdmin(t, "ada@example.com")

	resp := env.request(t, nethttp.MethodPost, "/api/issues", fiber.Map{
		"title": "Missing the rest",
	}, token)
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	body := decodeJSON(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	details, ok := errObj["details"].(map[string]any)
	require.True(t, ok)
	fields, ok := details["fields"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"type", "description", "impact", "status"}, fields)
}

func TestUpdateUnknownIssueReturns404(t *testing.T) {
	env := newAPITestEnv(t)
	token := env.registerAdmin(t, "ada@example.com")

	resp := env.request(t, nethttp.MethodPut, "/api/issues/does-not-exist", fiber.Map{
		"status": "closed",
	}, token)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestHealthLive(t *testing.T) {
	env := newAPITestEnv(t)

	resp := env.request(t, nethttp.MethodGet, "/health/live", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, "alive", body["status"])
}
