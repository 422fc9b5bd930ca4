package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createdBody = `{"ok":true,"data":{"empId":"E1"}}`

func setupIdempotencyRouter(t *testing.T, status int, calls *int) (*gin.Engine, redismock.ClientMock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rdb, mock := redismock.NewClientMock()
	r := gin.New()
	r.POST("/employees", Idempotency(rdb, nil), func(c *gin.Context) {
		*calls++
		c.Data(status, "application/json; charset=utf-8", []byte(createdBody))
	})
	r.GET("/employees", Idempotency(rdb, nil), func(c *gin.Context) {
		*calls++
		c.Status(http.StatusOK)
	})
	return r, mock
}

func storedPayload(t *testing.T, status int, body string) string {
	t.Helper()
	b, err := json.Marshal(cachedResponse{Status: status, Body: []byte(body)})
	require.NoError(t, err)
	return string(b)
}

func postWithKey(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/employees", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	return req
}

func TestIdempotency_FirstRequestStoresResponse(t *testing.T) {
	calls := 0
	r, mock := setupIdempotencyRouter(t, http.StatusCreated, &calls)

	cacheKey := IdempotencyCacheKey("/employees", "k1")
	lockKey := IdempotencyLockKey("/employees", "k1")

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, idempotencyLockValue, idempotencyLockTTL).SetVal(true)
	mock.ExpectSet(cacheKey, storedPayload(t, http.StatusCreated, createdBody), idempotencyResponseTTL).SetVal("OK")
	mock.ExpectDel(lockKey).SetVal(1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postWithKey("k1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, createdBody, w.Body.String())
	assert.Empty(t, w.Header().Get(IdempotentReplayHeader))
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	calls := 0
	r, mock := setupIdempotencyRouter(t, http.StatusCreated, &calls)

	cacheKey := IdempotencyCacheKey("/employees", "k1")
	mock.ExpectGet(cacheKey).SetVal(storedPayload(t, http.StatusCreated, createdBody))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postWithKey("k1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, createdBody, w.Body.String())
	assert.Equal(t, "true", w.Header().Get(IdempotentReplayHeader))
	assert.Equal(t, 0, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightDuplicateIsConflict(t *testing.T) {
	calls := 0
	r, mock := setupIdempotencyRouter(t, http.StatusCreated, &calls)

	cacheKey := IdempotencyCacheKey("/employees", "k1")
	lockKey := IdempotencyLockKey("/employees", "k1")

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, idempotencyLockValue, idempotencyLockTTL).SetVal(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postWithKey("k1"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
	assert.Equal(t, 0, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_FailedResponseIsNotStored(t *testing.T) {
	calls := 0
	r, mock := setupIdempotencyRouter(t, http.StatusInternalServerError, &calls)

	cacheKey := IdempotencyCacheKey("/employees", "k2")
	lockKey := IdempotencyLockKey("/employees", "k2")

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, idempotencyLockValue, idempotencyLockTTL).SetVal(true)
	mock.ExpectDel(lockKey).SetVal(1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postWithKey("k2"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_RedisFailureServesRequest(t *testing.T) {
	calls := 0
	r, mock := setupIdempotencyRouter(t, http.StatusCreated, &calls)

	mock.ExpectGet(IdempotencyCacheKey("/employees", "k3")).SetErr(errors.New("connection refused"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postWithKey("k3"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_Bypass(t *testing.T) {
	t.Run("post without key", func(t *testing.T) {
		calls := 0
		r, mock := setupIdempotencyRouter(t, http.StatusCreated, &calls)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, postWithKey(""))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get with key", func(t *testing.T) {
		calls := 0
		r, mock := setupIdempotencyRouter(t, http.StatusCreated, &calls)

		req := httptest.NewRequest(http.MethodGet, "/employees", nil)
		req.Header.Set(IdempotencyHeader, "k1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
