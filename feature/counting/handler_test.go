package counting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"stocktake/feature/counting/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *Service) {
	app := fiber.New()
	svc := newTestService(t)
	handler := NewHandler(svc)
	handler.RegisterRoutes(app)
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, method, target string, payload any) (int, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestHandleCreateSession(t *testing.T) {
	app, _ := setupTestApp(t)

	t.Run("Created", func(t *testing.T) {
		status, body := postJSON(t, app, "POST", "/sessions", fiber.Map{
			"name": "warehouse count", "host_id": "host-1",
		})
		assert.Equal(t, fiber.StatusCreated, status)
		assert.NotEmpty(t, body["id"])
		assert.Equal(t, string(models.StatusActive), body["status"])
	})

	t.Run("MissingName", func(t *testing.T) {
		status, body := postJSON(t, app, "POST", "/sessions", fiber.Map{"host_id": "host-1"})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("DanglingBaseline", func(t *testing.T) {
		status, body := postJSON(t, app, "POST", "/sessions", fiber.Map{
			"name": "x", "host_id": "host-1", "baseline_session_id": "missing",
		})
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", body["code"])
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/sessions", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestHandleListSessions(t *testing.T) {
	app, svc := setupTestApp(t)
	_, err := svc.CreateSession(context.Background(), "first", "host-1", "host-1", "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/sessions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sessions []models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "first", sessions[0].Name)
}

func TestHandleGetSessionState(t *testing.T) {
	app, svc := setupTestApp(t)
	session, err := svc.CreateSession(context.Background(), "count", "host-1", "host-1", "")
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sessions/"+session.ID, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var state models.SessionState
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
		assert.Equal(t, session.ID, state.Session.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sessions/unknown", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestHandleSubmitEvents(t *testing.T) {
	app, svc := setupTestApp(t)
	ctx := context.Background()
	session, err := svc.CreateSession(ctx, "count", "host-1", "host-1", "")
	require.NoError(t, err)

	payload := fiber.Map{
		"actor_id":   "A",
		"actor_name": "Ana",
		"events": []fiber.Map{
			{"event_id": "e1", "item_key": "widget", "delta": 2, "timestamp": "2026-08-31T10:00:00Z"},
		},
	}

	t.Run("Accepted", func(t *testing.T) {
		status, body := postJSON(t, app, "POST", fmt.Sprintf("/sessions/%s/events", session.ID), payload)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(1), body["accepted_count"])
	})

	t.Run("UnknownSession", func(t *testing.T) {
		status, _ := postJSON(t, app, "POST", "/sessions/unknown/events", payload)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("ConflictAfterFinalize", func(t *testing.T) {
		_, err := svc.Finalize(ctx, session.ID, "auditor-1", false)
		require.NoError(t, err)

		status, body := postJSON(t, app, "POST", fmt.Sprintf("/sessions/%s/events", session.ID), payload)
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, "CONFLICT", body["code"])
	})
}

func TestHandleOverrides(t *testing.T) {
	app, svc := setupTestApp(t)
	ctx := context.Background()
	session, err := svc.CreateSession(ctx, "count", "host-1", "host-1", "")
	require.NoError(t, err)

	target := fmt.Sprintf("/sessions/%s/overrides/widget", session.ID)

	t.Run("Set", func(t *testing.T) {
		status, body := postJSON(t, app, "PUT", target, fiber.Map{"quantity": 12, "set_by": "auditor-1"})
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "WIDGET", body["item_key"])
		assert.Equal(t, float64(12), body["quantity"])
	})

	t.Run("Clear", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", target, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("ClearMissing", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", target, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("LockedConflict", func(t *testing.T) {
		_, err := svc.Finalize(ctx, session.ID, "auditor-1", true)
		require.NoError(t, err)

		status, _ := postJSON(t, app, "PUT", target, fiber.Map{"quantity": 1, "set_by": "auditor-1"})
		assert.Equal(t, fiber.StatusConflict, status)
	})
}

func TestHandleFinalize(t *testing.T) {
	app, svc := setupTestApp(t)
	ctx := context.Background()
	session, err := svc.CreateSession(ctx, "count", "host-1", "host-1", "")
	require.NoError(t, err)
	_, err = svc.SubmitEvents(ctx, session.ID, "A", "Ana", []models.EventInput{
		event(t, "e1", "widget", 4),
	})
	require.NoError(t, err)

	t.Run("Finalize", func(t *testing.T) {
		status, body := postJSON(t, app, "POST", fmt.Sprintf("/sessions/%s/finalize", session.ID), fiber.Map{
			"finalized_by": "auditor-1",
		})
		assert.Equal(t, fiber.StatusOK, status)
		totals, ok := body["totals"].([]any)
		require.True(t, ok)
		require.Len(t, totals, 1)
	})

	t.Run("Lock", func(t *testing.T) {
		status, _ := postJSON(t, app, "POST", fmt.Sprintf("/sessions/%s/finalize", session.ID), fiber.Map{
			"finalized_by": "auditor-1", "lock": true,
		})
		assert.Equal(t, fiber.StatusOK, status)
	})

	t.Run("AlreadyLocked", func(t *testing.T) {
		status, body := postJSON(t, app, "POST", fmt.Sprintf("/sessions/%s/finalize", session.ID), fiber.Map{
			"finalized_by": "auditor-1", "lock": true,
		})
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, "CONFLICT", body["code"])
	})

	t.Run("NotFound", func(t *testing.T) {
		status, _ := postJSON(t, app, "POST", "/sessions/unknown/finalize", fiber.Map{
			"finalized_by": "auditor-1",
		})
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}
