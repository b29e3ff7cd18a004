package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stacksquest-api/models"
	"stacksquest-api/services"
	"stacksquest-api/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *services.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "handler-test-secret")

	db := testutil.SetupTestDB(t)
	tokens, err := services.NewTokenService()
	require.NoError(t, err)

	app := fiber.New()
	SetupAuthRoutes(app, services.NewUserService(db), tokens)
	SetupQuestRoutes(app, services.NewQuestService(db), services.NewQuestEngine(db), tokens)
	SetupBadgeRoutes(app, services.NewBadgeService(db), tokens)

	return &testServer{app: app, db: db, tokens: tokens}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
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

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (ts *testServer) seedQuest(t *testing.T, title string, steps int) *models.Quest {
	t.Helper()
	quest := &models.Quest{
		ID:         uuid.NewString(),
		Title:      title,
		Slug:       uuid.NewString(),
		Category:   models.QuestCategoryBasics,
		Difficulty: models.QuestDifficultyBeginner,
		IsActive:   true,
	}
	require.NoError(t, ts.db.Create(quest).Error)
	for i := 1; i <= steps; i++ {
		step := &models.QuestStep{
			ID:         uuid.NewString(),
			QuestID:    quest.ID,
			StepNumber: i,
			Title:      fmt.Sprintf("Step %d", i),
			Type:       models.StepTypeTutorial,
		}
		require.NoError(t, ts.db.Create(step).Error)
	}
	return quest
}

func (ts *testServer) loginToken(t *testing.T, address string) string {
	t.Helper()
	resp, body := ts.request(t, "POST", "/api/auth/login", "", map[string]string{"stacksAddress": address})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

func TestLoginThenStartAndCompleteQuest(t *testing.T) {
	ts := newTestServer(t)
	quest := ts.seedQuest(t, "HTTP Quest", 2)
	token := ts.loginToken(t, "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")

	resp, body := ts.request(t, "POST", "/api/quests/"+quest.ID+"/start", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Quest started successfully", body["message"])

	resp, body = ts.request(t, "POST", "/api/quests/"+quest.ID+"/steps/1/complete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Step completed successfully", body["message"])

	resp, body = ts.request(t, "POST", "/api/quests/"+quest.ID+"/steps/2/complete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Quest completed!", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])

	resp, body = ts.request(t, "GET", "/api/quests/progress", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	progress := body["data"].([]interface{})
	require.Len(t, progress, 1)
}

func TestQuestRoutes_ErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	quest := ts.seedQuest(t, "Error Quest", 2)
	token := ts.loginToken(t, "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")

	// Unknown quest → 404
	resp, body := ts.request(t, "POST", "/api/quests/"+uuid.NewString()+"/start", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])

	// Completing before starting → 400 NOT_STARTED
	resp, body = ts.request(t, "POST", "/api/quests/"+quest.ID+"/steps/1/complete", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NOT_STARTED", body["code"])

	resp, _ = ts.request(t, "POST", "/api/quests/"+quest.ID+"/start", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Duplicate start → 400 ALREADY_STARTED
	resp, body = ts.request(t, "POST", "/api/quests/"+quest.ID+"/start", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ALREADY_STARTED", body["code"])

	// Skipping ahead → 400 PREVIOUS_STEPS_REQUIRED
	resp, body = ts.request(t, "POST", "/api/quests/"+quest.ID+"/steps/2/complete", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "PREVIOUS_STEPS_REQUIRED", body["code"])

	// Nonexistent step → 404 STEP_NOT_FOUND
	resp, body = ts.request(t, "POST", "/api/quests/"+quest.ID+"/steps/9/complete", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "STEP_NOT_FOUND", body["code"])

	// Bad step number in path → 400
	resp, _ = ts.request(t, "POST", "/api/quests/"+quest.ID+"/steps/zero/complete", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuestRoutes_RequireAuth(t *testing.T) {
	ts := newTestServer(t)
	quest := ts.seedQuest(t, "Private Quest", 1)

	resp, _ := ts.request(t, "POST", "/api/quests/"+quest.ID+"/start", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.request(t, "GET", "/api/quests/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.request(t, "POST", "/api/quests/"+quest.ID+"/start", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestQuestListing_AttachesProgressWhenAuthenticated(t *testing.T) {
	ts := newTestServer(t)
	quest := ts.seedQuest(t, "Listed Quest", 1)
	token := ts.loginToken(t, "ST3AM1A56AK2C1XAFJ4K80QBF6JAS4FE2BDJ92G0F")

	resp, _ := ts.request(t, "POST", "/api/quests/"+quest.ID+"/start", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Anonymous listing has no progress field
	resp, body := ts.request(t, "GET", "/api/quests/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["data"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	_, hasProgress := entry["user_progress"]
	assert.False(t, hasProgress)

	// Authenticated listing carries it
	resp, body = ts.request(t, "GET", "/api/quests/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries = body["data"].([]interface{})
	entry = entries[0].(map[string]interface{})
	progress, hasProgress := entry["user_progress"]
	require.True(t, hasProgress)
	require.NotNil(t, progress)
	assert.Equal(t, "in_progress", progress.(map[string]interface{})["status"])
}

func TestAdminCreateQuest(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginToken(t, "ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5")

	resp, body := ts.request(t, "POST", "/api/admin/quests/", token, map[string]interface{}{
		"title":      "Created Over HTTP",
		"category":   "wallet",
		"difficulty": "beginner",
		"steps": []map[string]interface{}{
			{"title": "Connect your wallet", "type": "practical"},
			{"title": "Confirm the address"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "created-over-http", data["slug"])
	assert.Len(t, data["steps"].([]interface{}), 2)
}
