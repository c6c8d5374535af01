package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/openHPI/customers/internal/config"
	"github.com/openHPI/customers/internal/customer"
	"github.com/openHPI/customers/pkg/storage"
	"github.com/openHPI/customers/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *mux.Router {
	return NewRouter(customer.NewService(storage.NewLocalStorage[*customer.Customer](storage.IDPolicyReuse)))
}

func TestNewRouterV1(t *testing.T) {
	router := newTestRouter()

	t.Run("health route is accessible", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("customers route is accessible", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/customers", http.NoBody)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("unknown route is not found", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v2/customers", http.NoBody)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestRoutesAreNamed(t *testing.T) {
	router := newTestRouter()
	for _, name := range []string{HealthPath, VersionPath, listCustomersRouteName, getCustomerRouteName,
		findCustomersByNameRouteName, createCustomerRouteName, deleteCustomerRouteName} {
		assert.NotNil(t, router.Get(name), name)
	}
}

func TestVersionRoute(t *testing.T) {
	oldRelease := config.Config.Sentry.Release
	defer func() { config.Config.Sentry.Release = oldRelease }()
	router := newTestRouter()

	t.Run("without release", func(t *testing.T) {
		config.Config.Sentry.Release = ""
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/version", http.NoBody))
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("with release", func(t *testing.T) {
		config.Config.Sentry.Release = "v1.0.0"
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/version", http.NoBody))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `"v1.0.0"`, recorder.Body.String())
	})
}

func TestMetricsRoute(t *testing.T) {
	oldEnabled := config.Config.Prometheus.Enabled
	defer func() { config.Config.Prometheus.Enabled = oldEnabled }()

	t.Run("enabled", func(t *testing.T) {
		config.Config.Prometheus.Enabled = true
		router := newTestRouter()

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/customers", http.NoBody))
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, MetricsPath, http.NoBody))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "customers_http_requests_total")
	})

	t.Run("disabled", func(t *testing.T) {
		config.Config.Prometheus.Enabled = false
		router := newTestRouter()

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, MetricsPath, http.NoBody))
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter()

	t.Run("generates request id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody))
		assert.NotEmpty(t, recorder.Header().Get(RequestIDHeader))
	})

	t.Run("keeps passed request id", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
		request.Header.Set(RequestIDHeader, tests.DefaultRequestID)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, tests.DefaultRequestID, recorder.Header().Get(RequestIDHeader))
	})
}
