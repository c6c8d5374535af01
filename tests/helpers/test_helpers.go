// Package helpers contains functions that help executing tests.
// The helper functions generally look from the client side - a user of the customers API.
package helpers

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/openHPI/customers/internal/config"
	"github.com/openHPI/customers/pkg/dto"
)

// BaseURL is the address BuildURL prefixes paths with.
// If empty, the configured server address is used.
var BaseURL string

// BuildURL joins multiple route paths.
func BuildURL(parts ...string) string {
	url := BaseURL
	if url == "" {
		url = config.Config.Server.URL().String()
	}

	for _, part := range parts {
		if !strings.HasPrefix(part, "/") {
			url += "/"
		}

		url += part
	}

	return url
}

// StartTLSServer runs a httptest.Server with the passed mux.Router and TLS enabled.
func StartTLSServer(t *testing.T, router *mux.Router) (*httptest.Server, error) {
	t.Helper()
	dir := t.TempDir()
	keyOut := filepath.Join(dir, "customers-test.key")
	certOut := filepath.Join(dir, "customers-test.crt")

	err := exec.Command("openssl", "req", "-x509", "-nodes", "-newkey", "rsa:2048",
		"-keyout", keyOut, "-out", certOut, "-days", "1",
		"-subj", "/CN=Customers test", "-addext", "subjectAltName=IP:127.0.0.1,DNS:localhost").Run()
	if err != nil {
		return nil, fmt.Errorf("error creating self-signed cert: %w", err)
	}

	cert, err := tls.LoadX509KeyPair(certOut, keyOut)
	if err != nil {
		return nil, fmt.Errorf("error loading x509 key pair: %w", err)
	}

	server := httptest.NewUnstartedServer(router)
	server.TLS = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS13}
	server.StartTLS()

	return server, nil
}

// httpRequest deduplicates the comment and error message wrapping the http.NewRequest call.
func httpRequest(method, url string, body io.Reader) (*http.Request, error) {
	//nolint:noctx // we don't need a http.NewRequestWithContext in our tests
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	return req, nil
}

// HTTPGet sends a Get Http Request to the passed url using the passed client.
func HTTPGet(client *http.Client, url string) (response *http.Response, err error) {
	req, err := httpRequest(http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err = client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}

	return response, nil
}

// HTTPDelete sends a "Delete" Http Request to the passed url.
func HTTPDelete(url string) (response *http.Response, err error) {
	req, err := httpRequest(http.MethodDelete, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	client := &http.Client{}

	response, err = client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}

	return response, nil
}

func HTTPPostJSON(url string, body interface{}) (response *http.Response, err error) {
	requestByteString, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal passed http post body: %w", err)
	}

	bodyReader := bytes.NewReader(requestByteString)

	req, err := httpRequest(http.MethodPost, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}

	return resp, nil
}

// DecodeCustomer reads a single customer resource from the response and closes its body.
func DecodeCustomer(response *http.Response) (*dto.CustomerResource, error) {
	defer response.Body.Close()
	resource := new(dto.CustomerResource)
	if err := json.NewDecoder(response.Body).Decode(resource); err != nil {
		return nil, fmt.Errorf("error decoding customer: %w", err)
	}
	return resource, nil
}

// DecodeCustomers reads a customer collection from the response and closes its body.
func DecodeCustomers(response *http.Response) (*dto.CustomerCollection, error) {
	defer response.Body.Close()
	collection := new(dto.CustomerCollection)
	if err := json.NewDecoder(response.Body).Decode(collection); err != nil {
		return nil, fmt.Errorf("error decoding customers: %w", err)
	}
	return collection, nil
}
