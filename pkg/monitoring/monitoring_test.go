package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/openHPI/customers/pkg/dto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRouteName = "testRoute"

func TestInfluxDB2MiddlewareProvidesDataPoint(t *testing.T) {
	var point *write.Point
	router := mux.NewRouter()
	router.HandleFunc("/test", func(writer http.ResponseWriter, request *http.Request) {
		AddCustomerID(request, "42")
		AddCustomerNameLength(request, "Alice")
		point = dataPointFromRequest(request)
		writer.WriteHeader(http.StatusTeapot)
	}).Name(testRouteName)
	router.Use(InfluxDB2Middleware)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	assert.Equal(t, http.StatusTeapot, recorder.Code)

	require.NotNil(t, point)
	assert.Equal(t, measurementPrefix+testRouteName, point.Name())
	tags := map[string]string{}
	for _, tag := range point.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "42", tags[dto.KeyCustomerID])
	assert.Equal(t, "418", tags["status"])
}

func TestAddCustomerIDWithoutDataPointDoesNotPanic(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	assert.NotPanics(t, func() {
		AddCustomerID(request, "42")
	})
}

func TestPrometheusMiddlewareCountsRequests(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/test", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}).Name(testRouteName)
	router.Use(PrometheusMiddleware)

	counter := Requests.WithLabelValues(testRouteName, http.MethodGet, "204")
	before := testutil.ToFloat64(counter)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0)
}
