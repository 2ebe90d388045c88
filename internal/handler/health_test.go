package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthEnvelope struct {
	Success bool         `json:"success"`
	Data    HealthStatus `json:"data"`
}

func TestHealthHandler_Ready(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := NewHealthHandler(db, client, time.Second)

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var body healthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Data.Checks["database"])
	assert.Equal(t, "ok", body.Data.Checks["redis"])

	mr.Close()

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", body.Data.Status)
	assert.Contains(t, body.Data.Checks["redis"], "failed")
}

func TestHealthHandler_ReadyWithoutRedis(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	rec := httptest.NewRecorder()
	NewHealthHandler(db, nil, 0).Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var body healthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disabled", body.Data.Checks["redis"])
}

func TestHealthHandler_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil, 0).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
