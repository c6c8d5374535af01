package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/openHPI/customers/internal/config"
	"github.com/openHPI/customers/internal/customer"
	"github.com/openHPI/customers/pkg/logging"
	"github.com/openHPI/customers/pkg/monitoring"
)

var log = logging.GetLogger("api")

const (
	BasePath      = "/api/v1"
	HealthPath    = "/health"
	VersionPath   = "/version"
	CustomersPath = "/customers"
	MetricsPath   = "/metrics"
)

// NewRouter returns a *mux.Router which can be
// used by the net/http package to serve the routes of our API. It
// always returns a router for the newest version of our API. We
// use gorilla/mux because it is more convenient than net/http, e.g.
// when extracting path parameters or building links to named routes.
func NewRouter(manager customer.Manager) *mux.Router {
	router := mux.NewRouter()
	// this can later be restricted to a specific host with
	// `router.Host(...)` and to HTTPS with `router.Schemes("https")`
	configureV1Router(router, manager)
	if config.Config.Prometheus.Enabled {
		router.Handle(MetricsPath, monitoring.PrometheusHandler()).Methods(http.MethodGet).Name(MetricsPath)
	}
	router.Use(RequestIDMiddleware)
	router.Use(logging.HTTPLoggingMiddleware)
	router.Use(monitoring.InfluxDB2Middleware)
	router.Use(monitoring.PrometheusMiddleware)
	return router
}

// configureV1Router configures a given router with the routes of version 1 of the customers API.
func configureV1Router(router *mux.Router, manager customer.Manager) {
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithContext(r.Context()).
			WithField("path", logging.RemoveNewlineSymbol(r.URL.Path)).
			Debug("Not Found Handler")
		w.WriteHeader(http.StatusNotFound)
	})
	v1 := router.PathPrefix(BasePath).Subrouter()
	v1.HandleFunc(HealthPath, Health).Methods(http.MethodGet).Name(HealthPath)
	v1.HandleFunc(VersionPath, Version).Methods(http.MethodGet).Name(VersionPath)

	customerController := &CustomerController{manager: manager}
	customerController.ConfigureRoutes(v1)
}

// Version handles the version route.
// It responds the release information stored in the configuration.
func Version(writer http.ResponseWriter, request *http.Request) {
	release := config.Config.Sentry.Release
	if len(release) > 0 {
		sendJSON(request.Context(), writer, release, http.StatusOK)
	} else {
		writer.WriteHeader(http.StatusNotFound)
	}
}
