package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/perceptlab/staircase/pkg/adapters/http"
	"github.com/perceptlab/staircase/pkg/session"
)

type stateResponse struct {
	ID        string   `json:"id"`
	Finished  bool     `json:"finished"`
	Label     *string  `json:"label"`
	Intensity *float64 `json:"intensity"`
	Trials    int      `json:"trials"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := httpadapter.NewHandler(session.NewManager())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func createSession(t *testing.T, srv *httptest.Server, body string) stateResponse {
	t.Helper()
	resp, err := http.Post(srv.URL+"/sessions", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var state stateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

const validCreate = `{
	"varName": "contrast",
	"stairType": "quest",
	"method": "sequential",
	"nTrials": 6,
	"seed": 42,
	"conditions": [
		{"label": "low", "startVal": 0.3, "startValSd": 0.1, "nTrials": 3},
		{"label": "high", "startVal": 0.7, "startValSd": 0.1, "nTrials": 3}
	]
}`

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_CreateAndReadSession(t *testing.T) {
	srv := newTestServer(t)
	state := createSession(t, srv, validCreate)

	assert.NotEmpty(t, state.ID)
	assert.False(t, state.Finished)
	require.NotNil(t, state.Label)
	assert.Equal(t, "low", *state.Label)
	require.NotNil(t, state.Intensity)
	assert.Equal(t, 0.3, *state.Intensity)
	assert.Equal(t, 1, state.Trials)

	resp, err := http.Get(srv.URL + "/sessions/" + state.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_CreateRejectsBadConfig(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"unknown stair type": `{"varName": "c", "stairType": "psi", "conditions": [{"label": "a", "startVal": 0.5, "startValSd": 0.1}]}`,
		"simple stair type":  `{"varName": "c", "stairType": "simple", "conditions": [{"label": "a", "startVal": 0.5}]}`,
		"no conditions":      `{"varName": "c", "stairType": "quest", "conditions": []}`,
		"missing startValSd": `{"varName": "c", "stairType": "quest", "conditions": [{"label": "a", "startVal": 0.5}]}`,
		"bad json":           `{"varName": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/sessions", "application/json", bytes.NewBufferString(body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServer_ResponseFlow(t *testing.T) {
	srv := newTestServer(t)
	state := createSession(t, srv, validCreate)

	// Drive the run to completion through the API.
	for i := 0; i < 6; i++ {
		resp, err := http.Post(srv.URL+"/sessions/"+state.ID+"/responses",
			"application/json", bytes.NewBufferString(`{"response": 1}`))
		require.NoError(t, err)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.True(t, state.Finished)
	assert.Nil(t, state.Label)
	assert.Nil(t, state.Intensity)
	assert.Equal(t, 6, state.Trials)

	// Recorded data is retrievable.
	resp, err := http.Get(srv.URL + "/sessions/" + state.ID + "/data")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Records []struct {
			Key   string `json:"key"`
			Value any    `json:"value"`
		} `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.Records, 6)
	assert.Equal(t, "contrast.response", payload.Records[0].Key)
}

func TestServer_InvalidResponse(t *testing.T) {
	srv := newTestServer(t)
	state := createSession(t, srv, validCreate)

	resp, err := http.Post(srv.URL+"/sessions/"+state.ID+"/responses",
		"application/json", bytes.NewBufferString(`{"response": 7}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_UnknownSession(t *testing.T) {
	srv := newTestServer(t)

	for _, req := range []struct{ method, path, body string }{
		{http.MethodGet, "/sessions/nope", ""},
		{http.MethodPost, "/sessions/nope/responses", `{"response": 1}`},
		{http.MethodGet, "/sessions/nope/data", ""},
		{http.MethodDelete, "/sessions/nope", ""},
	} {
		r, err := http.NewRequest(req.method, srv.URL+req.path, bytes.NewBufferString(req.body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, fmt.Sprintf("%s %s", req.method, req.path))
	}
}

func TestServer_ListAndDelete(t *testing.T) {
	srv := newTestServer(t)
	state := createSession(t, srv, validCreate)

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	var listing struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	assert.Contains(t, listing.Sessions, state.ID)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+state.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	getResp, err := http.Get(srv.URL + "/sessions/" + state.ID)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}
