package handler_test

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devisflow/internal/handler"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(nil, nil)

	c, w := newContext(http.MethodGet, "/healthz", nil, "", "")
	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_ReadinessWithoutStores(t *testing.T) {
	h := handler.NewHealthHandler(nil, nil)

	c, w := newContext(http.MethodGet, "/readyz", nil, "", "")
	h.Readiness(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_ReadinessPingsStores(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	dbMock.ExpectPing()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	h := handler.NewHealthHandler(db, rdb)
	c, w := newContext(http.MethodGet, "/readyz", nil, "", "")
	h.Readiness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestHealthHandler_ReadinessRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	h := handler.NewHealthHandler(nil, rdb)
	c, w := newContext(http.MethodGet, "/readyz", nil, "", "")
	h.Readiness(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis")
}
