package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-openapi/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, method string, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	ServeError(rec, httptest.NewRequest(method, "/", nil), err)
	if method == http.MethodHead {
		return rec, nil
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestServeError(t *testing.T) {
	rec, body := serve(t, http.MethodGet, errors.Required("count", "query", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, body["detail"], "count")
	assert.Equal(t, float64(-1), body["count"])

	rec, body = serve(t, http.MethodGet, errors.NotFound("cluster %s not found", "hpc9"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "cluster hpc9 not found", body["detail"])

	rec, _ = serve(t, http.MethodGet, errors.New(http.StatusBadGateway, "squeue failed"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, body = serve(t, http.MethodGet, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Unknown error", body["detail"])

	rec, _ = serve(t, http.MethodHead, errors.NotFound("gone"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestServeCompositeError(t *testing.T) {
	err := errors.CompositeValidationError(
		errors.CompositeValidationError(errors.ExceedsMinimumInt("count", "query", 1, false, 0)),
		errors.Required("cluster", "path", nil),
	)
	rec, body := serve(t, http.MethodGet, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "count")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestMethodNotAllowed(t *testing.T) {
	rec, _ := serve(t, http.MethodPost, errors.MethodNotAllowed(http.MethodPost, []string{http.MethodGet}))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}
