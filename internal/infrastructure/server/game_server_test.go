package server

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ecsworld/internal/domain/ecs"
)

type testPosition struct{ X, Y float64 }

func (testPosition) ComponentType() ecs.ComponentTypeKey { return "test.Position" }

func newTestWorldServer(t *testing.T) (*WorldServer, *ecs.World) {
	t.Helper()
	w := ecs.NewWorld(ecs.DefaultConfig(), nil)
	ws := NewWorldServer(w, ":0")
	return ws, w
}

func TestWorldServer_HandleHealth(t *testing.T) {
	ws, w := newTestWorldServer(t)
	e := ecs.NewEntity("")
	require.NoError(t, w.AddEntity(e))

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	ws.handleHealth(rec, req)

	assert.Equal(t, 200, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Entities)
}

func TestWorldServer_HandleStats(t *testing.T) {
	ws, _ := newTestWorldServer(t)

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	ws.handleStats(rec, req)

	assert.Equal(t, 200, rec.Code)
	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Entities)
}

func TestWorldServer_HandleQuery_FiltersByComponent(t *testing.T) {
	ws, w := newTestWorldServer(t)

	withPos := ecs.NewEntity("")
	withPos.AddComponent(&testPosition{X: 1})
	require.NoError(t, w.AddEntity(withPos))

	without := ecs.NewEntity("")
	require.NoError(t, w.AddEntity(without))

	body, err := json.Marshal(queryRequest{All: []string{"test.Position"}})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	ws.handleQuery(rec, req)

	assert.Equal(t, 200, rec.Code)
	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{string(withPos.ID())}, resp.EntityIDs)
}

func TestWorldServer_HandleQuery_RejectsNonPost(t *testing.T) {
	ws, _ := newTestWorldServer(t)

	req := httptest.NewRequest("GET", "/query", nil)
	rec := httptest.NewRecorder()
	ws.handleQuery(rec, req)

	assert.Equal(t, 405, rec.Code)
}

func TestWorldServer_HandleQuery_RejectsInvalidBody(t *testing.T) {
	ws, _ := newTestWorldServer(t)

	req := httptest.NewRequest("POST", "/query", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	ws.handleQuery(rec, req)

	assert.Equal(t, 400, rec.Code)
}
