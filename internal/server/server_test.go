package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogsguard-agent/internal/engine"
)

type fakeInspector struct {
	view engine.EpisodeView
	ok   bool
}

func (f fakeInspector) Describe() (engine.EpisodeView, bool) { return f.view, f.ok }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Routes(t *testing.T) {
	view := engine.EpisodeView{
		ID:    "e1",
		Steps: 12,
		Agents: []engine.AgentView{
			{ID: 0, Role: "miner", Pose: "(0,1)"},
			{ID: 1, Role: "scout", Pose: "(2,2)"},
		},
	}
	h := New(fakeInspector{view: view, ok: true}, ":0").Handler()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"health", "/health", http.StatusOK},
		{"version", "/version", http.StatusOK},
		{"episode", "/debug/episode", http.StatusOK},
		{"all agents", "/debug/agents", http.StatusOK},
		{"one agent", "/debug/agents?id=1", http.StatusOK},
		{"missing agent", "/debug/agents?id=7", http.StatusNotFound},
		{"bad id", "/debug/agents?id=x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantStatus, get(t, h, tt.path).Code)
		})
	}

	var agent engine.AgentView
	require.NoError(t, json.Unmarshal(get(t, h, "/debug/agents?id=1").Body.Bytes(), &agent))
	assert.Equal(t, "scout", agent.Role)

	var ep engine.EpisodeView
	require.NoError(t, json.Unmarshal(get(t, h, "/debug/episode").Body.Bytes(), &ep))
	assert.Equal(t, 12, ep.Steps)
	assert.Empty(t, ep.Agents)
}

func TestServer_NoEpisode(t *testing.T) {
	h := New(fakeInspector{}, ":0").Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/debug/episode").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/debug/agents").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
}
