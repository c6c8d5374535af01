package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2API "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/openHPI/customers/internal/config"
	"github.com/openHPI/customers/pkg/dto"
	"github.com/openHPI/customers/pkg/logging"
)

const (
	// influxdbContextKey is a key (dto.ContextKey) to reference the influxdb data point in the request context.
	influxdbContextKey dto.ContextKey = "influxdb data point"
	// measurementPrefix allows easier filtering in influxdb.
	measurementPrefix    = "customers_"
	MeasurementCustomers = measurementPrefix + "stored"

	// The keys for the monitored tags and fields.
	InfluxKeyCustomerID = dto.KeyCustomerID
	InfluxKeyRequestID  = dto.KeyRequestID
	influxKeyName       = "name_length"
)

var (
	log          = logging.GetLogger("monitoring")
	influxClient influxdb2API.WriteAPI
)

func InitializeInfluxDB(db *config.InfluxDB) (cancel func()) {
	if db.URL == "" {
		return func() {}
	}

	client := influxdb2.NewClient(db.URL, db.Token)
	influxClient = client.WriteAPI(db.Organization, db.Bucket)
	cancel = func() {
		influxClient.Flush()
		client.Close()
	}
	return cancel
}

// InfluxDB2Middleware is a middleware to send events to an influx database.
func InfluxDB2Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeName(r)
		p := influxdb2.NewPointWithMeasurement(measurementPrefix + route)

		start := time.Now().UTC()
		p.SetTime(time.Now())

		ctx := context.WithValue(r.Context(), influxdbContextKey, p)
		requestWithPoint := r.WithContext(ctx)
		lrw := logging.NewLoggingResponseWriter(w)
		next.ServeHTTP(lrw, requestWithPoint)

		p.AddField("duration", time.Now().UTC().Sub(start).Nanoseconds())
		p.AddTag("status", strconv.Itoa(lrw.StatusCode))
		if requestID, ok := r.Context().Value(dto.ContextKey(dto.KeyRequestID)).(string); ok {
			p.AddTag(InfluxKeyRequestID, requestID)
		}

		WriteInfluxPoint(p)
	})
}

// AddCustomerID adds the customer id to the influx data point for the current request.
func AddCustomerID(r *http.Request, id string) {
	addInfluxDBTag(r, InfluxKeyCustomerID, id)
}

// AddCustomerNameLength adds the length of a searched customer name to the data point of the current request.
// The name itself is personal data and is not monitored.
func AddCustomerNameLength(r *http.Request, name string) {
	addInfluxDBField(r, influxKeyName, len(name))
}

// WriteInfluxPoint schedules the influx data point to be sent.
func WriteInfluxPoint(p *write.Point) {
	if influxClient != nil {
		p.AddTag("stage", config.Config.InfluxDB.Stage)
		influxClient.WritePoint(p)
	}
}

// addInfluxDBTag adds a tag to the influxdb data point in the request.
func addInfluxDBTag(r *http.Request, key, value string) {
	if p := dataPointFromRequest(r); p != nil {
		p.AddTag(key, value)
	}
}

// addInfluxDBField adds a field to the influxdb data point in the request.
func addInfluxDBField(r *http.Request, key string, value interface{}) {
	if p := dataPointFromRequest(r); p != nil {
		p.AddField(key, value)
	}
}

// dataPointFromRequest returns the data point in the passed request.
func dataPointFromRequest(r *http.Request) *write.Point {
	p, ok := r.Context().Value(influxdbContextKey).(*write.Point)
	if !ok {
		log.WithContext(r.Context()).Error("All http request must contain an influxdb data point!")
	}
	return p
}

// routeName returns the name of the matched mux route or "unknown" for unmatched requests.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return "unknown"
}
