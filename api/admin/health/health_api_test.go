// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h *Health, query string) (*Status, int) {
	router := mux.NewRouter()
	NewAPI(h).Mount(router, "/health")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health"+query, nil))

	var status Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return &status, rr.Code
}

func TestHealth(t *testing.T) {
	h := New(10 * time.Second)

	status, code := get(t, h, "")
	assert.False(t, status.Healthy)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	h.NewBestBlock(3)
	status, code = get(t, h, "")
	assert.True(t, status.Healthy)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(3), status.BlockIngestion.Number)

	// stale once the last block is older than allowed
	h.lock.Lock()
	h.newBestBlock = time.Now().Add(-time.Minute)
	h.lock.Unlock()
	status, code = get(t, h, "")
	assert.False(t, status.Healthy)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	status, _ = get(t, h, "?maxTimeBetweenBlocks=2m")
	assert.True(t, status.Healthy)
}

func TestHealthOnDemand(t *testing.T) {
	h := New(0)
	h.NewBestBlock(0)

	h.lock.Lock()
	h.newBestBlock = time.Now().Add(-time.Hour)
	h.lock.Unlock()

	status, code := get(t, h, "")
	assert.True(t, status.Healthy)
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthBadQuery(t *testing.T) {
	router := mux.NewRouter()
	NewAPI(New(0)).Mount(router, "/health")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health?maxTimeBetweenBlocks=soon", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
